package backend

import (
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/relabs-tech/kumande/core"
	"github.com/relabs-tech/kumande/core/access"
	"github.com/relabs-tech/kumande/core/logger"
	"github.com/relabs-tech/kumande/core/sqlq"
)

func (b *Backend) handleUsers(router *mux.Router) {
	logger.Default().Debugln("handle user routes: /users/register POST, /users/login POST")
	router.HandleFunc("/users/register", b.registerUser).Methods(http.MethodPost)
	router.HandleFunc("/users/login", b.loginUser).Methods(http.MethodPost)
}

// registerUser creates a user account. The password is stored as a
// bcrypt hash; neither hash nor plaintext ever appear in a response or
// a notification.
func (b *Backend) registerUser(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "cannot read request body")
		return
	}
	if err := b.validator.ValidateBytes(body, "register"); err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		ProfilePicture *string `json:"profile_picture"`
		Username       string  `json:"username"`
		Email          string  `json:"email"`
		Password       string  `json:"password"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	hash, err := access.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	fields := []sqlq.Field{
		{Column: "id", Value: core.NewID()},
		{Column: "profile_picture", Value: req.ProfilePicture},
		{Column: "username", Value: req.Username},
		{Column: "email", Value: req.Email},
		{Column: "password", Value: hash},
	}
	query, args := sqlq.Insert(usersTable.name(), fields, usersTable.columnNames())
	user, err := b.exec.mutateOne(r.Context(), query, args, usersTable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, r, &Error{Kind: KindUnknown, Detail: "internal error"})
		return
	}

	data := object{"username": user["username"], "email": user["email"]}
	id, _ := user["id"].(string)
	b.notify(r.Context(), usersTable.resource, core.OperationCreate, id, data)
	writeJSON(w, http.StatusCreated, messageResponse{
		Message: "user is registered",
		Data:    data,
	})
}

// loginUser verifies a username/password pair. A failed login is a
// regular outcome, not an error: the response is 200 with a null token,
// identical for unknown username and wrong password.
func (b *Backend) loginUser(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "cannot read request body")
		return
	}
	if err := b.validator.ValidateBytes(body, "login"); err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	query, args := sqlq.SelectBy(usersTable.name(), usersTable.columnNames(), "username", req.Username)
	user, err := b.exec.readOne(r.Context(), query, args, usersTable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, object{"token": nil})
		return
	}
	hash, _ := user["password"].(string)
	if !access.VerifyPassword(hash, req.Password) {
		writeJSON(w, http.StatusOK, object{"token": nil})
		return
	}

	id, _ := user["id"].(string)
	token, err := b.verifier.Issue(id, time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, object{"token": token})
}
