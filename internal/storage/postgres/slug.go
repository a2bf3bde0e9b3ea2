package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"editorial_catalog/internal/domain"
)

// SlugIndex answers slug uniqueness questions for every entity type.
type SlugIndex struct {
	db *sqlx.DB
}

func NewSlugIndex(db *sqlx.DB) *SlugIndex {
	return &SlugIndex{db: db}
}

var slugTables = map[domain.Entity]string{
	domain.EntityArticle:  "articles",
	domain.EntityCategory: "categories",
	domain.EntityAuthor:   "authors",
	domain.EntityTag:      "tags",
}

// SlugTaken reports whether slug is used by a row of entity other than
// excludeID. An excludeID of 0 excludes nothing.
func (s *SlugIndex) SlugTaken(ctx context.Context, entity domain.Entity, slug string, excludeID int64) (bool, error) {
	table, ok := slugTables[entity]
	if !ok {
		return false, fmt.Errorf("slug index: unknown entity %q", entity)
	}

	var taken bool
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE slug = $1 AND id <> $2)`
	if err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &taken, query, slug, excludeID); err != nil {
		return false, fmt.Errorf("check %s slug: %w", entity, err)
	}
	return taken, nil
}
