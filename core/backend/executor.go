package backend

import (
	"context"

	"github.com/relabs-tech/kumande/core/csql"
)

// executor runs parameterized statements against the store. It is an
// interface so router tests can inject a double and assert that a
// rejected request never touches the store.
type executor interface {
	// readOne fetches at most one row. A predicate that matches nothing
	// returns (nil, nil): "no row" is an outcome, not an error.
	readOne(ctx context.Context, query string, args []interface{}, t table) (object, error)
	// readAll fetches all matching rows.
	readAll(ctx context.Context, query string, args []interface{}, t table) ([]object, error)
	// mutateOne executes a row-returning INSERT, UPDATE or DELETE inside
	// a transaction: begin, execute, fetch one, commit. Every failure
	// path rolls back. Like readOne it returns (nil, nil) when the
	// predicate matched no row.
	mutateOne(ctx context.Context, query string, args []interface{}, t table) (object, error)
}

// sqlExecutor is the production executor on top of the shared pool.
type sqlExecutor struct {
	db *csql.DB
}

func (e sqlExecutor) readOne(ctx context.Context, query string, args []interface{}, t table) (object, error) {
	values, finish := t.scanValues()
	err := e.db.QueryRowContext(ctx, query, args...).Scan(values...)
	if err == csql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return finish(), nil
}

func (e sqlExecutor) readAll(ctx context.Context, query string, args []interface{}, t table) ([]object, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	objects := []object{}
	for rows.Next() {
		values, finish := t.scanValues()
		if err := rows.Scan(values...); err != nil {
			return nil, classify(err)
		}
		objects = append(objects, finish())
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return objects, nil
}

func (e sqlExecutor) mutateOne(ctx context.Context, query string, args []interface{}, t table) (object, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(err)
	}

	values, finish := t.scanValues()
	err = tx.QueryRowContext(ctx, query, args...).Scan(values...)
	if err == csql.ErrNoRows {
		tx.Rollback()
		return nil, nil
	}
	if err != nil {
		tx.Rollback()
		return nil, classify(err)
	}
	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return nil, classify(err)
	}
	return finish(), nil
}
