package backend

import (
	"github.com/relabs-tech/kumande/core/logger"
)

// ddl creates the entity relations in dependency order: referenced
// relations must exist before the foreign keys that point at them.
// Deletion of referenced rows is not cascaded; the store rejects it
// with a foreign-key violation.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS locations (
	id VARCHAR(26) UNIQUE NOT NULL PRIMARY KEY,
	district VARCHAR(255) DEFAULT NULL,
	city VARCHAR(255) DEFAULT NULL,
	province VARCHAR(255) DEFAULT NULL,
	postal_code VARCHAR(255) DEFAULT NULL,
	details VARCHAR(255) DEFAULT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NULL
);`,
	`CREATE TABLE IF NOT EXISTS users (
	id VARCHAR(26) UNIQUE NOT NULL PRIMARY KEY,
	profile_picture VARCHAR(255) DEFAULT NULL,
	username VARCHAR(255) NOT NULL UNIQUE,
	email VARCHAR(255) NOT NULL UNIQUE,
	password VARCHAR(255) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NULL
);`,
	`CREATE TABLE IF NOT EXISTS owners (
	id VARCHAR(26) UNIQUE NOT NULL PRIMARY KEY,
	image VARCHAR(255) DEFAULT NULL,
	name VARCHAR(255) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NULL
);`,
	`CREATE TABLE IF NOT EXISTS owner_images (
	id VARCHAR(26) UNIQUE NOT NULL PRIMARY KEY,
	owner_id VARCHAR(26) NOT NULL REFERENCES owners(id),
	image VARCHAR(255) DEFAULT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NULL
);`,
	`CREATE TABLE IF NOT EXISTS foods (
	id VARCHAR(26) UNIQUE NOT NULL PRIMARY KEY,
	user_id VARCHAR(26) NOT NULL REFERENCES users(id),
	owner_id VARCHAR(26) NOT NULL REFERENCES owners(id),
	location_id VARCHAR(26) NOT NULL REFERENCES locations(id),
	image VARCHAR(255) DEFAULT NULL,
	name VARCHAR(255) NOT NULL,
	description VARCHAR(255) NOT NULL,
	price INTEGER NOT NULL,
	review VARCHAR(255) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NULL
);`,
	`CREATE TABLE IF NOT EXISTS food_images (
	id VARCHAR(26) UNIQUE NOT NULL PRIMARY KEY,
	food_id VARCHAR(26) NOT NULL REFERENCES foods(id),
	image VARCHAR(255) DEFAULT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NULL
);`,
}

// updateSchema creates the relations at startup. An unusable schema is
// a startup failure, not a request-time one.
func (b *Backend) updateSchema() {
	nillog := logger.FromContext(nil)
	for _, query := range ddl {
		if _, err := b.db.Exec(query); err != nil {
			nillog.WithError(err).Errorf("error while updating schema when running: %s", query)
			panic(err)
		}
	}
}
