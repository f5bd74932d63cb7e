// Package repository implements the storage collaborator over PostgreSQL.
// Every method is bounded by the caller's context; deadline errors surface
// as apperr.ErrTimeout and missing rows as apperr.ErrNotFound.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/formflow/formflow-api/internal/apperr"
)

type scanner interface {
	Scan(dest ...any) error
}

// wrapErr maps driver errors into the shared taxonomy and annotates the
// rest with the failing operation.
func wrapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundf("%s", op)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", apperr.ErrTimeout, op, err)
	}
	return pkgerrors.Wrap(err, op)
}

func marshalJSON(v any, op string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, pkgerrors.Wrap(err, op)
	}
	return raw, nil
}
