package service

import (
	"context"
	"fmt"

	"editorial_catalog/internal/domain"
)

// featuredToClear returns the ids of the articles in featured that have to
// lose their flag once target is saved. Only a published, featured target
// displaces anything.
func featuredToClear(target *domain.Article, featured []domain.Article) []int64 {
	if !target.IsVisibleFeatured() {
		return nil
	}

	var ids []int64
	for _, a := range featured {
		if a.ID != target.ID && a.IsVisibleFeatured() {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// CheckFeaturedInvariant fails when more than one article in featured is
// both published and featured.
func CheckFeaturedInvariant(featured []domain.Article) error {
	var ids []int64
	for _, a := range featured {
		if a.IsVisibleFeatured() {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) > 1 {
		return fmt.Errorf("%w: articles %v", domain.ErrFeaturedInvariant, ids)
	}
	return nil
}

// enforceFeatured unfeatures every other published featured article when
// target is published and featured. It must run inside the write
// transaction that saves target.
func (s *ArticleService) enforceFeatured(ctx context.Context, target *domain.Article) error {
	if !target.IsVisibleFeatured() {
		return nil
	}

	current, err := s.articles.ListPublishedFeatured(ctx)
	if err != nil {
		return err
	}

	for _, id := range featuredToClear(target, current) {
		if err := s.articles.SetFeatured(ctx, id, false); err != nil {
			return fmt.Errorf("clear featured %d: %w", id, err)
		}
		s.logger.Info("cleared featured flag", "article_id", id, "replaced_by", target.ID)
	}
	return nil
}

// AuditFeatured checks the stored catalog against the featured singleton.
// Concurrent toggles can leave two published articles featured; this only
// reports it.
func (s *ArticleService) AuditFeatured(ctx context.Context) error {
	current, err := s.articles.ListPublishedFeatured(ctx)
	if err != nil {
		return fmt.Errorf("list featured: %w", err)
	}
	return CheckFeaturedInvariant(current)
}
