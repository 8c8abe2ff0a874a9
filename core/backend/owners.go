package backend

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/relabs-tech/kumande/core"
	"github.com/relabs-tech/kumande/core/access"
	"github.com/relabs-tech/kumande/core/logger"
	"github.com/relabs-tech/kumande/core/sqlq"
)

func (b *Backend) handleOwners(router *mux.Router) {
	logger.Default().Debugln("handle owner routes: /owners GET,POST /owners/{id} GET,PATCH,DELETE /owners/{id}/images GET,POST")
	router.HandleFunc("/owners", b.listHandler(ownersTable)).Methods(http.MethodGet)
	router.HandleFunc("/owners/{id}", b.readHandler(ownersTable)).Methods(http.MethodGet)
	router.HandleFunc("/owners", access.Required(
		b.createHandler(ownersTable, "owner", ownerCreateFields))).Methods(http.MethodPost)
	router.HandleFunc("/owners/{id}", access.Required(
		b.updateHandler(ownersTable, "owner_update"))).Methods(http.MethodPatch)
	router.HandleFunc("/owners/{id}", access.Required(
		b.deleteHandler(ownersTable))).Methods(http.MethodDelete)

	router.HandleFunc("/owners/{id}/images", b.listImagesHandler(ownerImagesTable, "owner_id")).Methods(http.MethodGet)
	router.HandleFunc("/owners/{id}/images", access.Required(
		b.createImageHandler(ownerImagesTable, "owner_id"))).Methods(http.MethodPost)
}

func ownerCreateFields(r *http.Request, body []byte) []sqlq.Field {
	var req struct {
		Image string `json:"image"`
		Name  string `json:"name"`
	}
	json.Unmarshal(body, &req)
	return []sqlq.Field{
		{Column: "id", Value: core.NewID()},
		{Column: "image", Value: req.Image},
		{Column: "name", Value: req.Name},
	}
}
