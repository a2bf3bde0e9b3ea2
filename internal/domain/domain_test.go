package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingTimeMinutes(t *testing.T) {
	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("wort ", n))
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "single word", body: "Hallo", want: 1},
		{name: "empty body", body: "", want: 1},
		{name: "exactly 200 words", body: words(200), want: 1},
		{name: "201 words round up", body: words(201), want: 2},
		{name: "exactly 400 words", body: words(400), want: 2},
		{name: "markup stripped", body: "<p>" + strings.Repeat("<b>wort</b> ", 400) + "</p>", want: 2},
		{name: "adjacent paragraphs are separate words", body: strings.Repeat("<p>wort</p>", 401), want: 3},
		{name: "irregular whitespace", body: "eins\n\tzwei   drei", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadingTimeMinutes(tt.body))
		})
	}
}

func TestApplyPublishDate(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	t.Run("sets date when publishing without one", func(t *testing.T) {
		a := &Article{Status: StatusPublished}
		a.ApplyPublishDate(now)
		require.NotNil(t, a.PublishedDate)
		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), *a.PublishedDate)
	})

	t.Run("keeps existing date", func(t *testing.T) {
		earlier := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		a := &Article{Status: StatusPublished, PublishedDate: &earlier}
		a.ApplyPublishDate(now)
		assert.Equal(t, earlier, *a.PublishedDate)
	})

	t.Run("ignores drafts", func(t *testing.T) {
		a := &Article{Status: StatusDraft}
		a.ApplyPublishDate(now)
		assert.Nil(t, a.PublishedDate)
	})

	t.Run("never clears on archive", func(t *testing.T) {
		earlier := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		a := &Article{Status: StatusArchived, PublishedDate: &earlier}
		a.ApplyPublishDate(now)
		assert.NotNil(t, a.PublishedDate)
	})
}

func TestParseArticleStatus(t *testing.T) {
	s, err := ParseArticleStatus("PUBLISHED")
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, s)

	_, err = ParseArticleStatus("published")
	assert.ErrorIs(t, err, ErrInvalidEnum)

	var enumErr InvalidEnumError
	require.True(t, errors.As(err, &enumErr))
	assert.Equal(t, "status", enumErr.Field)
	assert.Len(t, enumErr.Allowed, 3)
}

func TestParseCategoryType(t *testing.T) {
	ct, err := ParseCategoryType("QUERSCHNITTSAUFGABE")
	require.NoError(t, err)
	assert.Equal(t, CategoryTypeCrossCutting, ct)

	_, err = ParseCategoryType("TOPIC")
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Sort
	}{
		{name: "empty uses default desc", raw: "", want: Sort{Field: SortPublishedDate}},
		{name: "field only is desc", raw: "title", want: Sort{Field: SortTitle}},
		{name: "asc", raw: "title,asc", want: Sort{Field: SortTitle, Ascending: true}},
		{name: "asc any case", raw: "createdAt,ASC", want: Sort{Field: SortCreatedAt, Ascending: true}},
		{name: "unknown direction is desc", raw: "createdAt,sideways", want: Sort{Field: SortCreatedAt}},
		{name: "blank field with direction", raw: ",asc", want: Sort{Field: SortPublishedDate, Ascending: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSort(tt.raw, SortPublishedDate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseSort("password,asc", SortPublishedDate)
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestNewPageRequest(t *testing.T) {
	assert.Equal(t, 50, NewPageRequest(0, 500, 12, Sort{}).Size)
	assert.Equal(t, 12, NewPageRequest(0, 0, 12, Sort{}).Size)
	assert.Equal(t, 0, NewPageRequest(-3, 10, 12, Sort{}).Page)
	assert.Equal(t, 20, NewPageRequest(2, 10, 12, Sort{}).Offset())
}

func TestNewPage(t *testing.T) {
	req := NewPageRequest(1, 10, 10, Sort{})

	p := NewPage([]int{1, 2, 3}, req, 23)
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.First)
	assert.False(t, p.Last)

	last := NewPage([]int{1}, NewPageRequest(2, 10, 10, Sort{}), 21)
	assert.True(t, last.Last)

	empty := NewPage[int](nil, NewPageRequest(0, 10, 10, Sort{}), 0)
	assert.NotNil(t, empty.Content)
	assert.Equal(t, 0, empty.TotalPages)
	assert.True(t, empty.First)
	assert.True(t, empty.Last)
}

func TestArticleInputValidate(t *testing.T) {
	err := ArticleInput{Title: " ", Excerpt: "e", Body: "b", AuthorID: 1}.Validate()
	require.ErrorIs(t, err, ErrValidation)

	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	fields := verr.Fields()
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "categoryId")
	assert.NotContains(t, fields, "authorId")

	assert.NoError(t, ArticleInput{Title: "t", Excerpt: "e", Body: "b", CategoryID: 1, AuthorID: 1}.Validate())
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	assert.ErrorIs(t, NewNotFound(EntityTag, 7), ErrNotFound)
	assert.ErrorIs(t, SlugConflictError{Entity: EntityArticle, Slug: "x"}, ErrSlugConflict)
	assert.ErrorIs(t, ReferentialConflictError{Entity: EntityCategory, ID: 1, Count: 2}, ErrReferentialConflict)
	assert.Equal(t, "tag not found: 7", NewNotFound(EntityTag, 7).Error())
	assert.NotErrorIs(t, NewNotFound(EntityTag, 7), ErrSlugConflict)
}
