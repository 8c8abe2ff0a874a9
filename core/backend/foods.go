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

func (b *Backend) handleFoods(router *mux.Router) {
	logger.Default().Debugln("handle food routes: /foods GET,POST /foods/{id} GET,PATCH,DELETE /foods/{id}/images GET,POST")
	router.HandleFunc("/foods", b.listHandler(foodsTable)).Methods(http.MethodGet)
	router.HandleFunc("/foods/{id}", b.readHandler(foodsTable)).Methods(http.MethodGet)
	router.HandleFunc("/foods", access.Required(
		b.createHandler(foodsTable, "food", foodCreateFields))).Methods(http.MethodPost)
	router.HandleFunc("/foods/{id}", access.Required(
		b.updateHandler(foodsTable, "food_update"))).Methods(http.MethodPatch)
	router.HandleFunc("/foods/{id}", access.Required(
		b.deleteHandler(foodsTable))).Methods(http.MethodDelete)

	router.HandleFunc("/foods/{id}/images", b.listImagesHandler(foodImagesTable, "food_id")).Methods(http.MethodGet)
	router.HandleFunc("/foods/{id}/images", access.Required(
		b.createImageHandler(foodImagesTable, "food_id"))).Methods(http.MethodPost)
}

// foodCreateFields builds the insert assignments for a new food
// listing. The creator's id comes from the verified claims, never from
// the request body.
func foodCreateFields(r *http.Request, body []byte) []sqlq.Field {
	claims := access.ClaimsFromContext(r.Context())
	var req struct {
		OwnerID     string `json:"owner_id"`
		LocationID  string `json:"location_id"`
		Image       string `json:"image"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       int64  `json:"price"`
		Review      string `json:"review"`
	}
	json.Unmarshal(body, &req)
	return []sqlq.Field{
		{Column: "id", Value: core.NewID()},
		{Column: "user_id", Value: claims.Subject},
		{Column: "owner_id", Value: req.OwnerID},
		{Column: "location_id", Value: req.LocationID},
		{Column: "image", Value: req.Image},
		{Column: "name", Value: req.Name},
		{Column: "description", Value: req.Description},
		{Column: "price", Value: req.Price},
		{Column: "review", Value: req.Review},
	}
}
