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

func (b *Backend) handleLocations(router *mux.Router) {
	logger.Default().Debugln("handle location routes: /locations GET,POST /locations/{id} GET,PATCH,DELETE")
	router.HandleFunc("/locations", b.listHandler(locationsTable)).Methods(http.MethodGet)
	router.HandleFunc("/locations/{id}", b.readHandler(locationsTable)).Methods(http.MethodGet)
	router.HandleFunc("/locations", access.Required(
		b.createHandler(locationsTable, "location", locationCreateFields))).Methods(http.MethodPost)
	router.HandleFunc("/locations/{id}", access.Required(
		b.updateHandler(locationsTable, "location_update"))).Methods(http.MethodPatch)
	router.HandleFunc("/locations/{id}", access.Required(
		b.deleteHandler(locationsTable))).Methods(http.MethodDelete)
}

func locationCreateFields(r *http.Request, body []byte) []sqlq.Field {
	var req struct {
		District   string `json:"district"`
		City       string `json:"city"`
		Province   string `json:"province"`
		PostalCode string `json:"postal_code"`
		Details    string `json:"details"`
	}
	json.Unmarshal(body, &req)
	return []sqlq.Field{
		{Column: "id", Value: core.NewID()},
		{Column: "district", Value: req.District},
		{Column: "city", Value: req.City},
		{Column: "province", Value: req.Province},
		{Column: "postal_code", Value: req.PostalCode},
		{Column: "details", Value: req.Details},
	}
}
