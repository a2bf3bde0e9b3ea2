package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"editorial_catalog/internal/domain"
)

func TestFeaturedToClear(t *testing.T) {
	published := func(id int64, featured bool) domain.Article {
		return domain.Article{ID: id, Status: domain.StatusPublished, Featured: featured}
	}

	tests := []struct {
		name     string
		target   domain.Article
		featured []domain.Article
		want     []int64
	}{
		{
			name:     "published featured target clears others",
			target:   published(1, true),
			featured: []domain.Article{published(2, true), published(3, true)},
			want:     []int64{2, 3},
		},
		{
			name:     "target itself is never cleared",
			target:   published(1, true),
			featured: []domain.Article{published(1, true)},
			want:     nil,
		},
		{
			name:     "draft target clears nothing",
			target:   domain.Article{ID: 1, Status: domain.StatusDraft, Featured: true},
			featured: []domain.Article{published(2, true)},
			want:     nil,
		},
		{
			name:     "unfeatured target clears nothing",
			target:   published(1, false),
			featured: []domain.Article{published(2, true)},
			want:     nil,
		},
		{
			name:   "archived featured articles are not touched",
			target: published(1, true),
			featured: []domain.Article{
				{ID: 4, Status: domain.StatusArchived, Featured: true},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, featuredToClear(&tt.target, tt.featured))
		})
	}
}

func TestCheckFeaturedInvariant(t *testing.T) {
	one := domain.Article{ID: 1, Status: domain.StatusPublished, Featured: true}
	two := domain.Article{ID: 2, Status: domain.StatusPublished, Featured: true}
	draft := domain.Article{ID: 3, Status: domain.StatusDraft, Featured: true}

	assert.NoError(t, CheckFeaturedInvariant(nil))
	assert.NoError(t, CheckFeaturedInvariant([]domain.Article{one, draft}))
	assert.ErrorIs(t, CheckFeaturedInvariant([]domain.Article{one, two}), domain.ErrFeaturedInvariant)
}

func TestResolveSlug(t *testing.T) {
	got, err := resolveSlug("", "Über Uns")
	assert.NoError(t, err)
	assert.Equal(t, "ueber-uns", got)

	got, err = resolveSlug("already-clean", "Ignored")
	assert.NoError(t, err)
	assert.Equal(t, "already-clean", got)

	got, err = resolveSlug("!!!", "Fallback Title")
	assert.NoError(t, err)
	assert.Equal(t, "fallback-title", got)

	_, err = resolveSlug("", "???")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
