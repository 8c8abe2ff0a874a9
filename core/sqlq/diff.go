/*Package sqlq builds parameterized SQL statements for row-returning
mutations.

Statement text is assembled exclusively from identifiers that come out
of the backend's fixed table descriptors; request data only ever enters
a statement as a bound $n parameter. This closed column vocabulary is
the injection-safety boundary of the whole backend.
*/
package sqlq

import (
	"github.com/goccy/go-json"
)

// Field is one (column, value) assignment emitted by Diff and consumed
// by the statement builders.
type Field struct {
	Column string
	Value  interface{}
}

// Diff iterates the recognized columns in their fixed declaration order
// and emits a Field for every column present in the request body.
// Absent columns are skipped entirely: they must not be touched by the
// resulting mutation and are never coerced to null. An explicit JSON
// null counts as absent. Unrecognized body keys are ignored.
func Diff(body map[string]json.RawMessage, recognized []string) []Field {
	var fields []Field
	for _, column := range recognized {
		raw, ok := body[column]
		if !ok {
			continue
		}
		var value interface{}
		if err := json.Unmarshal(raw, &value); err != nil || value == nil {
			continue
		}
		fields = append(fields, Field{Column: column, Value: value})
	}
	return fields
}
