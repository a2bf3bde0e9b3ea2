package domain

import (
	"math"
	"regexp"
	"strings"
	"time"
)

type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "DRAFT"
	StatusPublished ArticleStatus = "PUBLISHED"
	StatusArchived  ArticleStatus = "ARCHIVED"
)

var articleStatuses = []string{string(StatusDraft), string(StatusPublished), string(StatusArchived)}

func ParseArticleStatus(s string) (ArticleStatus, error) {
	switch ArticleStatus(s) {
	case StatusDraft, StatusPublished, StatusArchived:
		return ArticleStatus(s), nil
	}
	return "", InvalidEnumError{Field: "status", Value: s, Allowed: articleStatuses}
}

// Article is the stored form of an article. It references its category,
// author and tags by id only; the article_tags association is the source of
// truth for TagIDs.
type Article struct {
	ID                 int64         `db:"id"`
	Slug               string        `db:"slug"`
	Title              string        `db:"title"`
	Excerpt            string        `db:"excerpt"`
	Body               string        `db:"body"`
	CategoryID         int64         `db:"category_id"`
	AuthorID           int64         `db:"author_id"`
	TagIDs             []int64       `db:"-"`
	CardEmoji          string        `db:"card_emoji"`
	CoverImageURL      string        `db:"cover_image_url"`
	CoverImageCredit   string        `db:"cover_image_credit"`
	Status             ArticleStatus `db:"status"`
	Academic           bool          `db:"academic"`
	Featured           bool          `db:"featured"`
	PublishedDate      *time.Time    `db:"published_date"`
	ReadingTimeMinutes int           `db:"reading_time_minutes"`
	MetaTitle          string        `db:"meta_title"`
	MetaDescription    string        `db:"meta_description"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

func (a *Article) IsPublished() bool {
	return a.Status == StatusPublished
}

// IsVisibleFeatured reports whether a is the kind of article the featured
// singleton constrains.
func (a *Article) IsVisibleFeatured() bool {
	return a.Featured && a.IsPublished()
}

// ApplyPublishDate sets PublishedDate to the date of now when the article is
// published without one. It never clears an existing date.
func (a *Article) ApplyPublishDate(now time.Time) {
	if a.Status == StatusPublished && a.PublishedDate == nil {
		d := DateOf(now)
		a.PublishedDate = &d
	}
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const wordsPerMinute = 200

var markup = regexp.MustCompile(`<[^>]*>`)

// ReadingTimeMinutes estimates how long body takes to read. Tags are
// stripped before counting and the result is never below one minute.
func ReadingTimeMinutes(body string) int {
	words := len(strings.Fields(markup.ReplaceAllString(body, " ")))
	return max(1, int(math.Ceil(float64(words)/wordsPerMinute)))
}

// ArticleInput is the create/update payload for an article.
//
// Title, Excerpt, Body, CategoryID and AuthorID are required on every call.
// Display and meta strings are always overwritten. Pointer fields follow one
// convention on update: nil keeps the stored value. TagIDs uses the same
// rule, so a nil TagIDs keeps the current tags while a pointer to an empty
// slice clears them.
type ArticleInput struct {
	Title            string
	Slug             string
	Excerpt          string
	Body             string
	CategoryID       int64
	AuthorID         int64
	TagIDs           *[]int64
	CardEmoji        string
	CoverImageURL    string
	CoverImageCredit string
	Status           *ArticleStatus
	Academic         *bool
	Featured         *bool
	PublishedDate    *time.Time
	MetaTitle        string
	MetaDescription  string
}

func (in ArticleInput) Validate() error {
	var verr ValidationError
	verr.Required(map[string]string{
		"title":   in.Title,
		"excerpt": in.Excerpt,
		"body":    in.Body,
	})
	if in.CategoryID <= 0 {
		verr.Add("categoryId", "must not be null")
	}
	if in.AuthorID <= 0 {
		verr.Add("authorId", "must not be null")
	}
	if verr.HasAny() {
		return verr
	}
	return nil
}

// ArticleFilter narrows an article listing. Zero values mean "no filter".
type ArticleFilter struct {
	Status       *ArticleStatus
	CategoryID   int64
	CategorySlug string
	CategoryType CategoryType
	AuthorSlug   string
	TagSlug      string
	AcademicOnly bool
	Query        string
	ExcludeID    int64
}

type ArticleSummary struct {
	ID                 int64         `json:"id"`
	Title              string        `json:"title"`
	Slug               string        `json:"slug"`
	Excerpt            string        `json:"excerpt"`
	Category           *CategoryView `json:"category"`
	Author             *AuthorView   `json:"author"`
	Tags               []TagView     `json:"tags"`
	CardEmoji          string        `json:"cardEmoji,omitempty"`
	CoverImageURL      string        `json:"coverImageUrl,omitempty"`
	Status             ArticleStatus `json:"status"`
	Academic           bool          `json:"academic"`
	Featured           bool          `json:"featured"`
	PublishedDate      *time.Time    `json:"publishedDate"`
	ReadingTimeMinutes int           `json:"readingTimeMinutes"`
}

type ArticleDetail struct {
	ArticleSummary
	Body             string    `json:"body"`
	CoverImageCredit string    `json:"coverImageCredit,omitempty"`
	MetaTitle        string    `json:"metaTitle,omitempty"`
	MetaDescription  string    `json:"metaDescription,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (a *Article) Summary(category *CategoryView, author *AuthorView, tags []TagView) ArticleSummary {
	if tags == nil {
		tags = []TagView{}
	}
	return ArticleSummary{
		ID:                 a.ID,
		Title:              a.Title,
		Slug:               a.Slug,
		Excerpt:            a.Excerpt,
		Category:           category,
		Author:             author,
		Tags:               tags,
		CardEmoji:          a.CardEmoji,
		CoverImageURL:      a.CoverImageURL,
		Status:             a.Status,
		Academic:           a.Academic,
		Featured:           a.Featured,
		PublishedDate:      a.PublishedDate,
		ReadingTimeMinutes: a.ReadingTimeMinutes,
	}
}

func (a *Article) Detail(category *CategoryView, author *AuthorView, tags []TagView) ArticleDetail {
	return ArticleDetail{
		ArticleSummary:   a.Summary(category, author, tags),
		Body:             a.Body,
		CoverImageCredit: a.CoverImageCredit,
		MetaTitle:        a.MetaTitle,
		MetaDescription:  a.MetaDescription,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}
