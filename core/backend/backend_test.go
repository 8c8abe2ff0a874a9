package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/kumande/core/access"
)

// fakeExecutor records every statement and answers from canned data, so
// handler tests can assert both the response and exactly what reached
// the store.
type call struct {
	query string
	args  []interface{}
}

type fakeExecutor struct {
	calls   []call
	object  object
	objects []object
	err     error
}

func (f *fakeExecutor) readOne(ctx context.Context, query string, args []interface{}, t table) (object, error) {
	f.calls = append(f.calls, call{query, args})
	return f.object, f.err
}

func (f *fakeExecutor) readAll(ctx context.Context, query string, args []interface{}, t table) ([]object, error) {
	f.calls = append(f.calls, call{query, args})
	return f.objects, f.err
}

func (f *fakeExecutor) mutateOne(ctx context.Context, query string, args []interface{}, t table) (object, error) {
	f.calls = append(f.calls, call{query, args})
	return f.object, f.err
}

func newTestBackend(t *testing.T, exec executor) (*Backend, *mux.Router, *access.Verifier) {
	t.Helper()
	verifier, err := access.NewVerifier("test secret", "HS256")
	require.NoError(t, err)

	router := mux.NewRouter()
	b := &Backend{
		router:    router,
		exec:      exec,
		verifier:  verifier,
		validator: mustValidator(),
	}
	router.Use(access.NewJwtMiddleware(verifier))
	b.handleRoutes(router)
	return b, router, verifier
}

func doRequest(router *mux.Router, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func issueToken(t *testing.T, verifier *access.Verifier, subject string) string {
	t.Helper()
	token, err := verifier.Issue(subject, time.Now())
	require.NoError(t, err)
	return token
}

func TestRegister(t *testing.T) {
	exec := &fakeExecutor{object: object{
		"id": "01USER", "profile_picture": nil, "username": "budi",
		"email": "budi@example.com", "password": "$2a$10$hash",
		"created_at": time.Now(), "updated_at": nil,
	}}
	_, router, _ := newTestBackend(t, exec)

	rec := doRequest(router, http.MethodPost, "/users/register", "",
		`{"username":"budi","email":"budi@example.com","password":"rahasia","profile_picture":null}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var response struct {
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "user is registered", response.Message)
	assert.Equal(t, map[string]interface{}{
		"username": "budi",
		"email":    "budi@example.com",
	}, response.Data)

	require.Len(t, exec.calls, 1)
	assert.True(t, strings.HasPrefix(exec.calls[0].query, "INSERT INTO users "))

	// the stored password is a hash of the plaintext, never the plaintext
	require.Len(t, exec.calls[0].args, 5)
	stored, ok := exec.calls[0].args[4].(string)
	require.True(t, ok)
	assert.NotEqual(t, "rahasia", stored)
	assert.True(t, access.VerifyPassword(stored, "rahasia"))
}

func TestRegisterValidation(t *testing.T) {
	exec := &fakeExecutor{}
	_, router, _ := newTestBackend(t, exec)

	rec := doRequest(router, http.MethodPost, "/users/register", "",
		`{"username":"budi","email":"budi@example.com"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "password")

	// a body that is not even JSON is a bad request, not a validation failure
	rec = doRequest(router, http.MethodPost, "/users/register", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// a rejected request never touches the store
	assert.Empty(t, exec.calls)
}

func TestLogin(t *testing.T) {
	hash, err := access.HashPassword("rahasia")
	require.NoError(t, err)
	row := object{
		"id": "01USER", "profile_picture": nil, "username": "budi",
		"email": "budi@example.com", "password": hash,
		"created_at": time.Now(), "updated_at": nil,
	}

	decodeToken := func(rec *httptest.ResponseRecorder) (string, bool) {
		var response map[string]*string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		token, ok := response["token"]
		require.True(t, ok, "response must carry a token key")
		if token == nil {
			return "", false
		}
		return *token, true
	}

	t.Run("success", func(t *testing.T) {
		exec := &fakeExecutor{object: row}
		_, router, verifier := newTestBackend(t, exec)
		rec := doRequest(router, http.MethodPost, "/users/login", "",
			`{"username":"budi","password":"rahasia"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		token, ok := decodeToken(rec)
		require.True(t, ok)
		claims, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "01USER", claims.Subject)

		require.Len(t, exec.calls, 1)
		assert.True(t, strings.HasPrefix(exec.calls[0].query, "SELECT "))
		assert.Equal(t, []interface{}{"budi"}, exec.calls[0].args)
	})

	t.Run("wrong password", func(t *testing.T) {
		exec := &fakeExecutor{object: row}
		_, router, _ := newTestBackend(t, exec)
		rec := doRequest(router, http.MethodPost, "/users/login", "",
			`{"username":"budi","password":"wrong"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		_, ok := decodeToken(rec)
		assert.False(t, ok)
	})

	t.Run("unknown username", func(t *testing.T) {
		exec := &fakeExecutor{}
		_, router, _ := newTestBackend(t, exec)
		rec := doRequest(router, http.MethodPost, "/users/login", "",
			`{"username":"nobody","password":"rahasia"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		_, ok := decodeToken(rec)
		assert.False(t, ok)
	})
}

func foodRow() object {
	return object{
		"id": "01FOOD", "user_id": "01USER", "owner_id": "01OWNER",
		"location_id": "01LOC", "image": "soto.png", "name": "soto ayam",
		"description": "chicken soup", "price": int64(15000), "review": "good",
		"created_at": time.Now(), "updated_at": nil,
	}
}

func TestFoodCreate(t *testing.T) {
	exec := &fakeExecutor{object: foodRow()}
	_, router, verifier := newTestBackend(t, exec)
	token := issueToken(t, verifier, "01USER")

	body := `{"owner_id":"01OWNER","location_id":"01LOC","image":"soto.png",
		"name":"soto ayam","description":"chicken soup","price":15000,"review":"good"}`
	rec := doRequest(router, http.MethodPost, "/foods", token, body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "food is created")

	require.Len(t, exec.calls, 1)
	assert.True(t, strings.HasPrefix(exec.calls[0].query, "INSERT INTO foods "))
	// the creator comes from the token, not the body
	require.GreaterOrEqual(t, len(exec.calls[0].args), 2)
	assert.Equal(t, "01USER", exec.calls[0].args[1])
}

// mutations without a token and with a garbage token fail identically
func TestFoodMutationsRequireToken(t *testing.T) {
	exec := &fakeExecutor{object: foodRow()}
	_, router, _ := newTestBackend(t, exec)

	requests := []struct {
		method, target, body string
	}{
		{http.MethodPost, "/foods", `{"owner_id":"x"}`},
		{http.MethodPatch, "/foods/01FOOD", `{"price":1}`},
		{http.MethodDelete, "/foods/01FOOD", ""},
	}
	for _, rq := range requests {
		noToken := doRequest(router, rq.method, rq.target, "", rq.body)
		assert.Equal(t, http.StatusUnauthorized, noToken.Code, rq.method)

		garbage := doRequest(router, rq.method, rq.target, "garbage", rq.body)
		assert.Equal(t, http.StatusUnauthorized, garbage.Code, rq.method)
		assert.Equal(t, noToken.Body.String(), garbage.Body.String(), rq.method)
	}
	assert.Empty(t, exec.calls)
}

func TestFoodPartialUpdate(t *testing.T) {
	exec := &fakeExecutor{object: foodRow()}
	_, router, verifier := newTestBackend(t, exec)
	token := issueToken(t, verifier, "01USER")

	rec := doRequest(router, http.MethodPatch, "/foods/01FOOD", token,
		`{"review":"excellent","price":18000}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "food is updated")

	// only the named columns plus updated_at are written, in the fixed
	// column order regardless of body order
	require.Len(t, exec.calls, 1)
	assert.Equal(t,
		"UPDATE foods SET price = $1, review = $2, updated_at = $3 WHERE id = $4"+
			" RETURNING id, user_id, owner_id, location_id, image, name, description,"+
			" price, review, created_at, updated_at;",
		exec.calls[0].query)
	args := exec.calls[0].args
	require.Len(t, args, 4)
	assert.Equal(t, float64(18000), args[0])
	assert.Equal(t, "excellent", args[1])
	assert.IsType(t, time.Time{}, args[2])
	assert.Equal(t, "01FOOD", args[3])
}

func TestFoodUpdateNoFields(t *testing.T) {
	exec := &fakeExecutor{object: foodRow()}
	_, router, verifier := newTestBackend(t, exec)
	token := issueToken(t, verifier, "01USER")

	for _, body := range []string{`{}`, `{"price":null}`, `{"bogus":"x"}`} {
		rec := doRequest(router, http.MethodPatch, "/foods/01FOOD", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), "no fields to update", body)
	}
	// rejected before any statement is built
	assert.Empty(t, exec.calls)
}

func TestFoodUpdateNotFound(t *testing.T) {
	exec := &fakeExecutor{}
	_, router, verifier := newTestBackend(t, exec)
	token := issueToken(t, verifier, "01USER")

	rec := doRequest(router, http.MethodPatch, "/foods/missing", token, `{"price":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "food not found")
	assert.Len(t, exec.calls, 1)
}

func TestFoodDelete(t *testing.T) {
	exec := &fakeExecutor{object: foodRow()}
	_, router, verifier := newTestBackend(t, exec)
	token := issueToken(t, verifier, "01USER")

	rec := doRequest(router, http.MethodDelete, "/foods/01FOOD", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "food with id=01FOOD is deleted")

	// deleting again finds nothing and changes nothing
	exec.object = nil
	rec = doRequest(router, http.MethodDelete, "/foods/01FOOD", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "food not found")
}

func TestFoodList(t *testing.T) {
	exec := &fakeExecutor{objects: []object{foodRow(), foodRow()}}
	_, router, _ := newTestBackend(t, exec)

	rec := doRequest(router, http.MethodGet, "/foods", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Count int                      `json:"count"`
		Data  []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	assert.Len(t, response.Data, 2)
}

func TestFoodRead(t *testing.T) {
	exec := &fakeExecutor{object: foodRow()}
	_, router, _ := newTestBackend(t, exec)

	rec := doRequest(router, http.MethodGet, "/foods/01FOOD", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var food map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &food))
	assert.Equal(t, "soto ayam", food["name"])

	exec.object = nil
	rec = doRequest(router, http.MethodGet, "/foods/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"food not found"}`, rec.Body.String())
}

func TestCreateConstraintViolation(t *testing.T) {
	exec := &fakeExecutor{err: &Error{
		Kind:   KindConstraintViolation,
		Detail: "constraint violation: foods_owner_id_fkey",
	}}
	_, router, verifier := newTestBackend(t, exec)
	token := issueToken(t, verifier, "01USER")

	body := `{"owner_id":"missing","location_id":"01LOC","image":"x","name":"x",
		"description":"x","price":1,"review":"x"}`
	rec := doRequest(router, http.MethodPost, "/foods", token, body)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "foods_owner_id_fkey")
}

func TestOwnerImages(t *testing.T) {
	row := object{
		"id": "01IMG", "owner_id": "01OWNER", "image": "front.png",
		"created_at": time.Now(), "updated_at": nil,
	}
	exec := &fakeExecutor{object: row, objects: []object{row}}
	_, router, verifier := newTestBackend(t, exec)
	token := issueToken(t, verifier, "01USER")

	rec := doRequest(router, http.MethodPost, "/owners/01OWNER/images", token,
		`{"image":"front.png"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "owner_image is created")
	require.Len(t, exec.calls, 1)
	assert.True(t, strings.HasPrefix(exec.calls[0].query, "INSERT INTO owner_images "))
	// the parent id comes from the route
	assert.Equal(t, "01OWNER", exec.calls[0].args[1])

	rec = doRequest(router, http.MethodGet, "/owners/01OWNER/images", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, exec.calls, 2)
	assert.Equal(t, []interface{}{"01OWNER"}, exec.calls[1].args)
}

func TestLocationCreateAndUpdate(t *testing.T) {
	row := object{
		"id": "01LOC", "district": "tebet", "city": "jakarta",
		"province": "dki", "postal_code": "12810", "details": "near station",
		"created_at": time.Now(), "updated_at": nil,
	}
	exec := &fakeExecutor{object: row}
	_, router, verifier := newTestBackend(t, exec)
	token := issueToken(t, verifier, "01USER")

	rec := doRequest(router, http.MethodPost, "/locations", token,
		`{"district":"tebet","city":"jakarta","province":"dki","postal_code":"12810","details":"near station"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "location is created")

	rec = doRequest(router, http.MethodPatch, "/locations/01LOC", token,
		`{"city":"bandung"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, exec.calls, 2)
	assert.True(t, strings.HasPrefix(exec.calls[1].query,
		"UPDATE locations SET city = $1, updated_at = $2 WHERE id = $3"))
}
