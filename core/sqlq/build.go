package sqlq

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoFieldsToUpdate is returned by Update when the set list is empty.
// An empty SET clause is invalid SQL; the builder rejects it before
// anything reaches the store.
var ErrNoFieldsToUpdate = errors.New("no fields to update")

// returns $1,...,$n
func parameterString(n int) string {
	result := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			result += ","
		}
		result += "$" + strconv.Itoa(i+1)
	}
	return result
}

// Insert builds an INSERT statement for the given fields with a
// RETURNING clause over returning. The caller supplies a freshly
// generated primary-key value as the first field.
func Insert(table string, fields []Field, returning []string) (string, []interface{}) {
	columns := make([]string, len(fields))
	args := make([]interface{}, len(fields))
	for i, f := range fields {
		columns[i] = f.Column
		args[i] = f.Value
	}
	query := "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ")" +
		" VALUES(" + parameterString(len(fields)) + ")" +
		" RETURNING " + strings.Join(returning, ", ") + ";"
	return query, args
}

// Update builds a partial UPDATE statement: each field in set becomes a
// placeholder assignment in set order, filtered by keyColumn, with a
// RETURNING clause over returning. An empty set is a caller error.
func Update(table string, set []Field, keyColumn string, keyValue interface{}, returning []string) (string, []interface{}, error) {
	if len(set) == 0 {
		return "", nil, ErrNoFieldsToUpdate
	}
	sets := make([]string, len(set))
	args := make([]interface{}, len(set), len(set)+1)
	for i, f := range set {
		sets[i] = f.Column + " = $" + strconv.Itoa(i+1)
		args[i] = f.Value
	}
	query := "UPDATE " + table + " SET " + strings.Join(sets, ", ") +
		" WHERE " + keyColumn + " = $" + strconv.Itoa(len(set)+1) +
		" RETURNING " + strings.Join(returning, ", ") + ";"
	return query, append(args, keyValue), nil
}

// Delete builds a DELETE statement filtered by keyColumn with a
// RETURNING clause over returning, so the caller gets the removed row
// back for confirmation in a single round trip.
func Delete(table string, keyColumn string, keyValue interface{}, returning []string) (string, []interface{}) {
	query := "DELETE FROM " + table +
		" WHERE " + keyColumn + " = $1" +
		" RETURNING " + strings.Join(returning, ", ") + ";"
	return query, []interface{}{keyValue}
}

// SelectAll builds a SELECT over all rows of table.
func SelectAll(table string, columns []string) string {
	return "SELECT " + strings.Join(columns, ", ") + " FROM " + table + ";"
}

// SelectBy builds a SELECT filtered by keyColumn. Whether one row or
// many are fetched is the executor's concern, not the statement's.
func SelectBy(table string, columns []string, keyColumn string, keyValue interface{}) (string, []interface{}) {
	query := "SELECT " + strings.Join(columns, ", ") + " FROM " + table +
		" WHERE " + keyColumn + " = $1;"
	return query, []interface{}{keyValue}
}
