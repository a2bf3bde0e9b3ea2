package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"editorial_catalog/internal/domain"
)

const uniqueViolation = "23505"

// translateUnique turns a unique-index violation into the matching domain
// error. Slug indexes become SlugConflictError, any other unique column a
// ValidationError on that column.
func translateUnique(err error, entity domain.Entity, slug string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}

	if strings.HasSuffix(pqErr.Constraint, "_slug_key") {
		return domain.SlugConflictError{Entity: entity, Slug: slug}
	}

	column := strings.TrimSuffix(pqErr.Constraint, "_key")
	if _, after, ok := strings.Cut(column, "_"); ok {
		column = after
	}
	var verr domain.ValidationError
	verr.Add(column, "already exists")
	return verr
}

// expectAffected returns a NotFoundError when res touched no rows.
func expectAffected(res sql.Result, entity domain.Entity, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFound(entity, id)
	}
	return nil
}
