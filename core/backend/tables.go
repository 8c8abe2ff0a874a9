package backend

import (
	"database/sql"
	"time"

	"github.com/relabs-tech/kumande/core"
)

// columnKind selects the scan destination for a column. The kinds cover
// the whole schema: 26-character key strings, required and nullable
// text, integer amounts, and the created_at/updated_at timestamps.
type columnKind int

const (
	kindKey columnKind = iota
	kindText
	kindNullText
	kindInt
	kindTime
	kindNullTime
)

type column struct {
	name string
	kind columnKind
}

// table describes one entity relation: its closed, declaration-ordered
// column vocabulary and the subset of columns a partial update may
// touch. All statement identifiers originate here and nowhere else.
type table struct {
	resource  string // singular resource name, e.g. "food"
	columns   []column
	patchable []string
}

// name returns the relation name, the plural of the resource.
func (t table) name() string {
	return core.Plural(t.resource)
}

func (t table) columnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// object is one database row keyed by column name, ready for JSON
// encoding. Nullable columns that hold NULL are present with a nil
// value.
type object map[string]interface{}

// scanValues returns scan destinations for one row in column order,
// plus a finish function that converts the scanned values into an
// object.
func (t table) scanValues() ([]interface{}, func() object) {
	values := make([]interface{}, len(t.columns))
	for i, c := range t.columns {
		switch c.kind {
		case kindKey, kindText:
			values[i] = new(string)
		case kindNullText:
			values[i] = new(sql.NullString)
		case kindInt:
			values[i] = new(int64)
		case kindTime:
			values[i] = new(time.Time)
		case kindNullTime:
			values[i] = new(sql.NullTime)
		}
	}
	finish := func() object {
		obj := object{}
		for i, c := range t.columns {
			switch v := values[i].(type) {
			case *string:
				obj[c.name] = *v
			case *int64:
				obj[c.name] = *v
			case *time.Time:
				obj[c.name] = *v
			case *sql.NullString:
				if v.Valid {
					obj[c.name] = v.String
				} else {
					obj[c.name] = nil
				}
			case *sql.NullTime:
				if v.Valid {
					obj[c.name] = v.Time
				} else {
					obj[c.name] = nil
				}
			}
		}
		return obj
	}
	return values, finish
}

// the fixed entity relations. Declaration order of the columns is the
// iteration order of the field differ and the column order of every
// generated statement.
var (
	locationsTable = table{
		resource: "location",
		columns: []column{
			{"id", kindKey},
			{"district", kindNullText},
			{"city", kindNullText},
			{"province", kindNullText},
			{"postal_code", kindNullText},
			{"details", kindNullText},
			{"created_at", kindTime},
			{"updated_at", kindNullTime},
		},
		patchable: []string{"district", "city", "province", "postal_code", "details"},
	}

	usersTable = table{
		resource: "user",
		columns: []column{
			{"id", kindKey},
			{"profile_picture", kindNullText},
			{"username", kindText},
			{"email", kindText},
			{"password", kindText},
			{"created_at", kindTime},
			{"updated_at", kindNullTime},
		},
		// identity is immutable; the credential-rotation path does not
		// exist yet
		patchable: nil,
	}

	ownersTable = table{
		resource: "owner",
		columns: []column{
			{"id", kindKey},
			{"image", kindNullText},
			{"name", kindText},
			{"created_at", kindTime},
			{"updated_at", kindNullTime},
		},
		patchable: []string{"image", "name"},
	}

	ownerImagesTable = table{
		resource: "owner_image",
		columns: []column{
			{"id", kindKey},
			{"owner_id", kindKey},
			{"image", kindNullText},
			{"created_at", kindTime},
			{"updated_at", kindNullTime},
		},
	}

	foodsTable = table{
		resource: "food",
		columns: []column{
			{"id", kindKey},
			{"user_id", kindKey},
			{"owner_id", kindKey},
			{"location_id", kindKey},
			{"image", kindNullText},
			{"name", kindText},
			{"description", kindText},
			{"price", kindInt},
			{"review", kindText},
			{"created_at", kindTime},
			{"updated_at", kindNullTime},
		},
		patchable: []string{"user_id", "owner_id", "location_id", "image", "name", "description", "price", "review"},
	}

	foodImagesTable = table{
		resource: "food_image",
		columns: []column{
			{"id", kindKey},
			{"food_id", kindKey},
			{"image", kindNullText},
			{"created_at", kindTime},
			{"updated_at", kindNullTime},
		},
	}
)
