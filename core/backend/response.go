package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/relabs-tech/kumande/core/logger"
	"github.com/relabs-tech/kumande/core/schema"
	"github.com/relabs-tech/kumande/core/sqlq"
)

// messageResponse is the envelope for successful mutations.
type messageResponse struct {
	Message string `json:"message"`
	Data    object `json:"data"`
}

// listResponse is the envelope for collection reads.
type listResponse struct {
	Count int      `json:"count"`
	Data  []object `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	jsonData, _ := json.MarshalWithOption(body, json.DisableHTMLEscape())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(jsonData)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeNotFound(w http.ResponseWriter, resource string) {
	writeDetail(w, http.StatusNotFound, resource+" not found")
}

// writeError recovers every classified failure into exactly one
// response. Nothing escapes unhandled and nothing internal leaks: the
// status comes from the error kind, the detail is the classified text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	rlog := logger.FromContext(r.Context())

	if errors.Is(err, schema.ErrMalformedBody) {
		writeDetail(w, http.StatusBadRequest, schema.ErrMalformedBody.Error())
		return
	}
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		rlog.WithError(verr).Debugln("request body rejected")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"detail": "validation failed for field(s): " + strings.Join(verr.Fields, ", "),
		})
		return
	}
	if errors.Is(err, sqlq.ErrNoFieldsToUpdate) {
		writeDetail(w, http.StatusBadRequest, sqlq.ErrNoFieldsToUpdate.Error())
		return
	}

	var berr *Error
	if errors.As(err, &berr) {
		switch berr.Kind {
		case KindSyntaxOrBinding, KindUnknown:
			rlog.WithError(berr).Errorf("store failure on %s %s", r.Method, r.URL.Path)
		case KindConnectionUnavailable:
			rlog.WithError(berr).Warnf("store unavailable on %s %s", r.Method, r.URL.Path)
		default:
			rlog.WithError(berr).Infof("request rejected on %s %s", r.Method, r.URL.Path)
		}
		writeDetail(w, berr.Kind.status(), berr.Detail)
		return
	}

	rlog.WithError(err).Errorf("unclassified failure on %s %s", r.Method, r.URL.Path)
	writeDetail(w, http.StatusInternalServerError, "internal error")
}
