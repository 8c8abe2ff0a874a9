/*Package backend implements the kumande rest backend: users, owners,
locations and food listings over postgres, with bearer-gated mutations.

Every mutating request runs through the same pipeline: auth check, body
validation, field diff, statement build, transactional execution,
response. Any failure short-circuits to exactly one error response.
*/
package backend

import (
	"embed"
	"io/fs"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/kumande/core"
	"github.com/relabs-tech/kumande/core/access"
	"github.com/relabs-tech/kumande/core/csql"
	"github.com/relabs-tech/kumande/core/logger"
	"github.com/relabs-tech/kumande/core/schema"
)

//go:embed schemas/*.json
var schemasFS embed.FS

// Backend is the kumande rest backend
type Backend struct {
	db        *csql.DB
	router    *mux.Router
	exec      executor
	verifier  *access.Verifier
	notifier  core.Notifier
	validator *schema.Validator
}

// Builder is a builder helper for the Backend
type Builder struct {
	// DB is a postgres database. This is mandatory.
	DB *csql.DB
	// Router is a mux router. This is mandatory.
	Router *mux.Router
	// Verifier validates and issues bearer tokens. This is mandatory.
	Verifier *access.Verifier
	// Notifier receives entity change notifications after committed
	// mutations. This is optional.
	Notifier core.Notifier
}

// New realizes the actual backend. It creates the sql relations (if
// they do not exist) and adds the entity routes to the router.
func New(bb *Builder) *Backend {
	if bb.DB == nil {
		panic("DB is missing")
	}
	if bb.Router == nil {
		panic("Router is missing")
	}
	if bb.Verifier == nil {
		panic("Verifier is missing")
	}

	validator := mustValidator()

	b := &Backend{
		db:        bb.DB,
		router:    bb.Router,
		exec:      sqlExecutor{db: bb.DB},
		verifier:  bb.Verifier,
		notifier:  bb.Notifier,
		validator: validator,
	}
	b.updateSchema()

	logger.AddRequestID(bb.Router)
	bb.Router.Use(access.NewJwtMiddleware(bb.Verifier))
	b.handleCompression()
	b.handleRoutes(bb.Router)
	return b
}

func mustValidator() *schema.Validator {
	sub, err := fs.Sub(schemasFS, "schemas")
	if err != nil {
		panic(err)
	}
	validator, err := schema.NewValidatorFromFS(sub)
	if err != nil {
		panic(err)
	}
	return validator
}

// handleRoutes adds all entity routes. Dependencies first, matching the
// order the sql relations are created in.
func (b *Backend) handleRoutes(router *mux.Router) {
	b.handleUsers(router)
	b.handleLocations(router)
	b.handleOwners(router)
	b.handleFoods(router)
}
