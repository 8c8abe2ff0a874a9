package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/xeipuuv/gojsonschema"
)

// Validator is a utility to validate JSON request bodies against a
// fixed set of schemas compiled once at startup.
type Validator struct {
	schemaValidators map[string]*gojsonschema.Schema
}

// ErrMalformedBody is returned when a document is not parseable JSON
// at all, as opposed to valid JSON that fails schema constraints.
var ErrMalformedBody = errors.New("cannot parse request body")

// ValidationError reports which fields of a request body failed
// validation. It is a client error; the offending fields are safe to
// return to the caller.
type ValidationError struct {
	Fields  []string
	Details []string
}

func (e *ValidationError) Error() string {
	return "invalid request body: " + strings.Join(e.Details, "; ")
}

// NewValidatorFromFS creates a new Validator using all *.json schemas
// from the root of schemaFS. Every schema must carry an $id; the $id is
// the key to validate against.
func NewValidatorFromFS(schemaFS fs.FS) (*Validator, error) {
	type schemaID struct {
		ID string `json:"$id"`
	}

	validator := Validator{schemaValidators: make(map[string]*gojsonschema.Schema)}
	files, err := fs.ReadDir(schemaFS, ".")
	if err != nil {
		return nil, fmt.Errorf("cannot read schema dir: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		str, err := fs.ReadFile(schemaFS, f.Name())
		if err != nil {
			return nil, fmt.Errorf("cannot read schema '%s': %w", f.Name(), err)
		}
		s := schemaID{}
		err = json.Unmarshal(str, &s)
		if err != nil {
			return nil, fmt.Errorf("parse error '%v' in schema: '%s'", err, f.Name())
		}
		if s.ID == "" {
			return nil, fmt.Errorf("schema %s does not contain $id", f.Name())
		}
		schema, err := gojsonschema.NewSchemaLoader().Compile(gojsonschema.NewBytesLoader(str))
		if err != nil {
			return nil, fmt.Errorf("cannot compile schema %s: %s", s.ID, err)
		}
		validator.schemaValidators[s.ID] = schema
	}
	return &validator, nil
}

// HasSchema returns true if schemaID is known
func (v *Validator) HasSchema(schemaID string) bool {
	_, ok := v.schemaValidators[schemaID]
	return ok
}

// ValidateBytes validates the given json document against schemaID. If
// no error is returned, the document is valid. Validation failures are
// returned as *ValidationError naming the offending fields.
func (v *Validator) ValidateBytes(document []byte, schemaID string) error {
	schema, ok := v.schemaValidators[schemaID]
	if !ok {
		return fmt.Errorf("there is no schema %s", schemaID)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		// not even parseable JSON
		return ErrMalformedBody
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	seen := map[string]bool{}
	for _, e := range result.Errors() {
		field := e.Field()
		if property, ok := e.Details()["property"].(string); ok && field == "(root)" {
			field = property
		}
		if !seen[field] {
			seen[field] = true
			verr.Fields = append(verr.Fields, field)
		}
		verr.Details = append(verr.Details, fmt.Sprintf("%s: %s", field, e.Description()))
	}
	sort.Strings(verr.Fields)
	return verr
}
