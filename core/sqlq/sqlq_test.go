package sqlq

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	body := map[string]json.RawMessage{
		"price":   json.RawMessage(`15000`),
		"name":    json.RawMessage(`"soto ayam"`),
		"image":   json.RawMessage(`null`),
		"unknown": json.RawMessage(`"ignored"`),
	}
	recognized := []string{"image", "name", "description", "price", "review"}

	fields := Diff(body, recognized)

	// declaration order of the recognized columns, not body order;
	// explicit null counts as absent, unknown keys are dropped
	require.Len(t, fields, 2)
	assert.Equal(t, "name", fields[0].Column)
	assert.Equal(t, "soto ayam", fields[0].Value)
	assert.Equal(t, "price", fields[1].Column)
	assert.Equal(t, float64(15000), fields[1].Value)
}

func TestDiffEmpty(t *testing.T) {
	assert.Empty(t, Diff(map[string]json.RawMessage{}, []string{"name"}))
	assert.Empty(t, Diff(map[string]json.RawMessage{
		"name": json.RawMessage(`null`),
	}, []string{"name"}))
	assert.Empty(t, Diff(map[string]json.RawMessage{
		"bogus": json.RawMessage(`"x"`),
	}, []string{"name"}))
}

func TestInsert(t *testing.T) {
	query, args := Insert("owners",
		[]Field{
			{Column: "id", Value: "01ARZ"},
			{Column: "image", Value: "o.png"},
			{Column: "name", Value: "warung"},
		},
		[]string{"id", "image", "name", "created_at", "updated_at"})

	assert.Equal(t,
		"INSERT INTO owners (id, image, name) VALUES($1,$2,$3)"+
			" RETURNING id, image, name, created_at, updated_at;",
		query)
	assert.Equal(t, []interface{}{"01ARZ", "o.png", "warung"}, args)
}

func TestUpdate(t *testing.T) {
	query, args, err := Update("foods",
		[]Field{
			{Column: "price", Value: 15000},
			{Column: "review", Value: "good"},
		},
		"id", "01ARZ",
		[]string{"id", "price", "review"})

	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE foods SET price = $1, review = $2 WHERE id = $3"+
			" RETURNING id, price, review;",
		query)
	assert.Equal(t, []interface{}{15000, "good", "01ARZ"}, args)
}

func TestUpdateNoFields(t *testing.T) {
	_, _, err := Update("foods", nil, "id", "01ARZ", []string{"id"})
	assert.Equal(t, ErrNoFieldsToUpdate, err)
}

func TestDelete(t *testing.T) {
	query, args := Delete("foods", "id", "01ARZ", []string{"id", "name"})
	assert.Equal(t, "DELETE FROM foods WHERE id = $1 RETURNING id, name;", query)
	assert.Equal(t, []interface{}{"01ARZ"}, args)
}

func TestSelect(t *testing.T) {
	assert.Equal(t, "SELECT id, name FROM owners;",
		SelectAll("owners", []string{"id", "name"}))

	query, args := SelectBy("users", []string{"id", "username"}, "username", "budi")
	assert.Equal(t, "SELECT id, username FROM users WHERE username = $1;", query)
	assert.Equal(t, []interface{}{"budi"}, args)
}
