package core

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// Operation represents a backend storage operation, one of Create, Read, Update, Delete, List
type Operation string

// all supported database operations
const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationList   Operation = "list"
)

// Plural returns the plural form of the passed singular string.
//
// This is the algorithm used to create idiomatic REST routes and table names
func Plural(singular string) string {
	if strings.HasSuffix(singular, "y") {
		return strings.TrimSuffix(singular, "y") + "ies"
	}
	return singular + "s"
}

// NewID returns a freshly generated 26-character identifier. Identifiers
// are lexicographically sortable and time-ordered; they are generated by
// the application, never by the database.
func NewID() string {
	return ulid.Make().String()
}
