package service

import (
	"context"
	"fmt"
	"log/slog"

	"editorial_catalog/internal/domain"
)

type TagService struct {
	tags      TagStore
	slugs     SlugIndex
	txManager TransactionManager
	notifier  *Notifier
	logger    *slog.Logger
}

func NewTagService(
	tags TagStore,
	slugs SlugIndex,
	txManager TransactionManager,
	notifier *Notifier,
	logger *slog.Logger,
) *TagService {
	return &TagService{
		tags:      tags,
		slugs:     slugs,
		txManager: txManager,
		notifier:  notifier,
		logger:    logger.With("component", "tags"),
	}
}

func (s *TagService) Create(ctx context.Context, name string) (*domain.TagView, error) {
	tagSlug, err := tagSlugFor(name)
	if err != nil {
		return nil, err
	}

	tag := &domain.Tag{Name: name, Slug: tagSlug}
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := claimSlug(txCtx, s.slugs, domain.EntityTag, tagSlug, 0); err != nil {
			return err
		}
		_, err := s.tags.Create(txCtx, tag)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag created", "id", tag.ID, "slug", tag.Slug)
	s.notifier.Notify(ctx, domain.EntityTag, domain.ActionCreated, tag.ID, tag.Slug)

	view := tag.View()
	return &view, nil
}

// Rename changes the name and regenerates the slug. Existing edges are
// untouched.
func (s *TagService) Rename(ctx context.Context, id int64, name string) (*domain.TagView, error) {
	tagSlug, err := tagSlugFor(name)
	if err != nil {
		return nil, err
	}

	var tag *domain.Tag
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if tag, err = s.mustGet(txCtx, id); err != nil {
			return err
		}

		if tagSlug != tag.Slug {
			if err := claimSlug(txCtx, s.slugs, domain.EntityTag, tagSlug, id); err != nil {
				return err
			}
		}

		tag.Name = name
		tag.Slug = tagSlug
		return s.tags.Update(txCtx, tag)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag renamed", "id", id, "slug", tag.Slug)
	s.notifier.Notify(ctx, domain.EntityTag, domain.ActionUpdated, id, tag.Slug)

	view := tag.View()
	return &view, nil
}

// Delete detaches the tag from every article, then removes it.
func (s *TagService) Delete(ctx context.Context, id int64) error {
	var tag *domain.Tag
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if tag, err = s.mustGet(txCtx, id); err != nil {
			return err
		}

		articleIDs, err := s.tags.ArticleIDs(txCtx, id)
		if err != nil {
			return err
		}
		for _, articleID := range articleIDs {
			if err := s.tags.Detach(txCtx, articleID, id); err != nil {
				return err
			}
		}

		return s.tags.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tag deleted", "id", id, "slug", tag.Slug)
	s.notifier.Notify(ctx, domain.EntityTag, domain.ActionDeleted, id, tag.Slug)

	return nil
}

// Merge moves every edge of source onto target and deletes source. An
// article already carrying both keeps a single target edge.
func (s *TagService) Merge(ctx context.Context, sourceID, targetID int64) (*domain.TagView, error) {
	if sourceID == targetID {
		var verr domain.ValidationError
		verr.Add("targetId", "must differ from the source tag")
		return nil, verr
	}

	var target *domain.Tag
	var moved int
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.mustGet(txCtx, sourceID); err != nil {
			return err
		}
		if _, err := s.mustGet(txCtx, targetID); err != nil {
			return err
		}

		articleIDs, err := s.tags.ArticleIDs(txCtx, sourceID)
		if err != nil {
			return err
		}
		for _, articleID := range articleIDs {
			if err := s.tags.Detach(txCtx, articleID, sourceID); err != nil {
				return err
			}
			if err := s.tags.Attach(txCtx, articleID, targetID); err != nil {
				return err
			}
		}
		moved = len(articleIDs)

		if err := s.tags.Delete(txCtx, sourceID); err != nil {
			return fmt.Errorf("delete merged tag: %w", err)
		}

		// reload for the updated article count
		target, err = s.mustGet(txCtx, targetID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tags merged", "source_id", sourceID, "target_id", targetID, "articles", moved)
	s.notifier.Notify(ctx, domain.EntityTag, domain.ActionMerged, targetID, target.Slug)

	view := target.View()
	return &view, nil
}

func (s *TagService) List(ctx context.Context) ([]domain.TagView, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	return tagViews(tags), nil
}

func (s *TagService) GetByID(ctx context.Context, id int64) (*domain.TagView, error) {
	tag, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	view := tag.View()
	return &view, nil
}

func (s *TagService) mustGet(ctx context.Context, id int64) (*domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, domain.NewNotFound(domain.EntityTag, id)
	}
	return tag, nil
}

func tagSlugFor(name string) (string, error) {
	var verr domain.ValidationError
	verr.Required(map[string]string{"name": name})
	if verr.HasAny() {
		return "", verr
	}
	return resolveSlug("", name)
}
