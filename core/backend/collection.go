package backend

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/relabs-tech/kumande/core"
	"github.com/relabs-tech/kumande/core/sqlq"
)

// The generic collection handlers. Each entity router composes these
// per resource; the pipeline for mutating requests is always
// validation, diff, build, transactional execution, response.

// listHandler returns a handler for GET on the collection route.
func (b *Backend) listHandler(t table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := sqlq.SelectAll(t.name(), t.columnNames())
		objects, err := b.exec.readAll(r.Context(), query, nil, t)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Count: len(objects), Data: objects})
	}
}

// readHandler returns a handler for GET on the item route.
func (b *Backend) readHandler(t table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		query, args := sqlq.SelectBy(t.name(), t.columnNames(), "id", id)
		obj, err := b.exec.readOne(r.Context(), query, args, t)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if obj == nil {
			writeNotFound(w, t.resource)
			return
		}
		writeJSON(w, http.StatusOK, obj)
	}
}

// createHandler returns a handler for POST on the collection route.
// fields turns the validated body into the insert assignments,
// including the freshly generated primary key.
func (b *Backend) createHandler(t table, schemaID string, fields func(r *http.Request, body []byte) []sqlq.Field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "cannot read request body")
			return
		}
		if err := b.validator.ValidateBytes(body, schemaID); err != nil {
			writeError(w, r, err)
			return
		}

		query, args := sqlq.Insert(t.name(), fields(r, body), t.columnNames())
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

// updateHandler returns a handler for PATCH on the item route. Only
// columns explicitly present in the body are written; a request with
// zero recognized fields is rejected before any statement is issued.
func (b *Backend) updateHandler(t table, schemaID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "cannot read request body")
			return
		}
		if err := b.validator.ValidateBytes(body, schemaID); err != nil {
			writeError(w, r, err)
			return
		}

		raw := map[string]json.RawMessage{}
		if err := json.Unmarshal(body, &raw); err != nil {
			writeDetail(w, http.StatusBadRequest, "cannot read request body")
			return
		}
		set := sqlq.Diff(raw, t.patchable)
		if len(set) == 0 {
			writeError(w, r, sqlq.ErrNoFieldsToUpdate)
			return
		}
		set = append(set, sqlq.Field{Column: "updated_at", Value: time.Now().UTC()})

		query, args, err := sqlq.Update(t.name(), set, "id", id, t.columnNames())
		if err != nil {
			writeError(w, r, err)
			return
		}
		obj, err := b.exec.mutateOne(r.Context(), query, args, t)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if obj == nil {
			writeNotFound(w, t.resource)
			return
		}

		b.notify(r.Context(), t.resource, core.OperationUpdate, id, obj)
		writeJSON(w, http.StatusOK, messageResponse{
			Message: t.resource + " is updated",
			Data:    obj,
		})
	}
}

// deleteHandler returns a handler for DELETE on the item route. The
// deleted row comes back for confirmation. Deleting an id that no
// longer exists is a not-found outcome and causes no state change.
func (b *Backend) deleteHandler(t table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		query, args := sqlq.Delete(t.name(), "id", id, t.columnNames())
		obj, err := b.exec.mutateOne(r.Context(), query, args, t)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if obj == nil {
			writeNotFound(w, t.resource)
			return
		}

		b.notify(r.Context(), t.resource, core.OperationDelete, id, obj)
		writeJSON(w, http.StatusOK, messageResponse{
			Message: fmt.Sprintf("%s with id=%s is deleted", t.resource, id),
			Data:    obj,
		})
	}
}
