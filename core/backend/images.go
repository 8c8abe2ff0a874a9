package backend

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/relabs-tech/kumande/core"
	"github.com/relabs-tech/kumande/core/sqlq"
)

// Image sub-collections. An image row belongs to exactly one parent
// entity via parentColumn; a parent id that does not exist surfaces as
// a foreign-key violation on create.

func (b *Backend) listImagesHandler(t table, parentColumn string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID := mux.Vars(r)["id"]
		query, args := sqlq.SelectBy(t.name(), t.columnNames(), parentColumn, parentID)
		objects, err := b.exec.readAll(r.Context(), query, args, t)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Count: len(objects), Data: objects})
	}
}

func (b *Backend) createImageHandler(t table, parentColumn string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID := mux.Vars(r)["id"]
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "cannot read request body")
			return
		}
		if err := b.validator.ValidateBytes(body, "image"); err != nil {
			writeError(w, r, err)
			return
		}
		var req struct {
			Image string `json:"image"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, "cannot read request body")
			return
		}

		fields := []sqlq.Field{
			{Column: "id", Value: core.NewID()},
			{Column: parentColumn, Value: parentID},
			{Column: "image", Value: req.Image},
		}
		query, args := sqlq.Insert(t.name(), fields, t.columnNames())
		obj, err := b.exec.mutateOne(r.Context(), query, args, t)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if obj == nil {
			writeError(w, r, &Error{Kind: KindUnknown, Detail: "internal error"})
			return
		}

		id, _ := obj["id"].(string)
		b.notify(r.Context(), t.resource, core.OperationCreate, id, obj)
		writeJSON(w, http.StatusCreated, messageResponse{
			Message: t.resource + " is created",
			Data:    obj,
		})
	}
}
