package service

import (
	"context"
	"fmt"

	"editorial_catalog/internal/domain"
	"editorial_catalog/internal/slug"
)

// resolveSlug picks the slug for an entity: the explicit one when it
// survives normalisation, the slugified fallback text otherwise.
func resolveSlug(explicit, fallback string) (string, error) {
	if s := slug.Generate(explicit); s != "" {
		return s, nil
	}
	if s := slug.Generate(fallback); s != "" {
		return s, nil
	}

	var verr domain.ValidationError
	verr.Add("slug", "must contain at least one letter or digit")
	return "", verr
}

// claimSlug fails with SlugConflictError when s is already used by another
// row of entity. excludeID is the row being updated, or 0 on create.
func claimSlug(ctx context.Context, index SlugIndex, entity domain.Entity, s string, excludeID int64) error {
	taken, err := index.SlugTaken(ctx, entity, s, excludeID)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return domain.SlugConflictError{Entity: entity, Slug: s}
	}
	return nil
}
