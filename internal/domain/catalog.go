package domain

import "time"

// Entity names a slug uniqueness domain. Each entity type has its own.
type Entity string

const (
	EntityArticle  Entity = "article"
	EntityCategory Entity = "category"
	EntityAuthor   Entity = "author"
	EntityTag      Entity = "tag"
)

type CategoryType string

const (
	// CategoryTypeEducationArea marks a pedagogical area.
	CategoryTypeEducationArea CategoryType = "BILDUNGSBEREICH"
	// CategoryTypeCrossCutting marks a cross-cutting topic.
	CategoryTypeCrossCutting CategoryType = "QUERSCHNITTSAUFGABE"
)

var categoryTypes = []string{string(CategoryTypeEducationArea), string(CategoryTypeCrossCutting)}

func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(s) {
	case CategoryTypeEducationArea, CategoryTypeCrossCutting:
		return CategoryType(s), nil
	}
	return "", InvalidEnumError{Field: "type", Value: s, Allowed: categoryTypes}
}

type Category struct {
	ID          int64        `db:"id"`
	Name        string       `db:"name"`
	Slug        string       `db:"slug"`
	DisplayName string       `db:"display_name"`
	Description string       `db:"description"`
	Emoji       string       `db:"emoji"`
	Color       string       `db:"color"`
	BgColor     string       `db:"bg_color"`
	Type        CategoryType `db:"type"`
	SortOrder   int          `db:"sort_order"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`

	// ArticleCount is filled by listing queries only.
	ArticleCount int `db:"article_count"`
}

type CategoryInput struct {
	Name        string
	Slug        string
	DisplayName string
	Description string
	Emoji       string
	Color       string
	BgColor     string
	Type        string
	// SortOrder is kept unchanged on update when nil.
	SortOrder *int
}

func (in CategoryInput) Validate() error {
	var verr ValidationError
	verr.Required(map[string]string{
		"name":        in.Name,
		"displayName": in.DisplayName,
		"type":        in.Type,
	})
	if verr.HasAny() {
		return verr
	}
	return nil
}

type CategoryView struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	DisplayName  string       `json:"displayName"`
	Description  string       `json:"description,omitempty"`
	Emoji        string       `json:"emoji,omitempty"`
	Color        string       `json:"color,omitempty"`
	BgColor      string       `json:"bgColor,omitempty"`
	Type         CategoryType `json:"type"`
	SortOrder    int          `json:"sortOrder"`
	ArticleCount int          `json:"articleCount"`
}

func (c *Category) View() *CategoryView {
	return &CategoryView{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		DisplayName:  c.DisplayName,
		Description:  c.Description,
		Emoji:        c.Emoji,
		Color:        c.Color,
		BgColor:      c.BgColor,
		Type:         c.Type,
		SortOrder:    c.SortOrder,
		ArticleCount: c.ArticleCount,
	}
}

type Author struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	Bio       string    `db:"bio"`
	Email     string    `db:"email"`
	AvatarURL string    `db:"avatar_url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	ArticleCount int `db:"article_count"`
}

type AuthorInput struct {
	Name      string
	Slug      string
	Bio       string
	Email     string
	AvatarURL string
}

func (in AuthorInput) Validate() error {
	var verr ValidationError
	verr.Required(map[string]string{"name": in.Name})
	if verr.HasAny() {
		return verr
	}
	return nil
}

type AuthorView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Bio          string `json:"bio,omitempty"`
	Email        string `json:"email,omitempty"`
	AvatarURL    string `json:"avatarUrl,omitempty"`
	ArticleCount int    `json:"articleCount"`
}

func (a *Author) View() *AuthorView {
	return &AuthorView{
		ID:           a.ID,
		Name:         a.Name,
		Slug:         a.Slug,
		Bio:          a.Bio,
		Email:        a.Email,
		AvatarURL:    a.AvatarURL,
		ArticleCount: a.ArticleCount,
	}
}

type Tag struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`

	ArticleCount int `db:"article_count"`
}

type TagView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ArticleCount int    `json:"articleCount"`
}

func (t *Tag) View() TagView {
	return TagView{ID: t.ID, Name: t.Name, Slug: t.Slug, ArticleCount: t.ArticleCount}
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalArticles     int64 `json:"totalArticles"`
	PublishedArticles int64 `json:"publishedArticles"`
	DraftArticles     int64 `json:"draftArticles"`
	ArchivedArticles  int64 `json:"archivedArticles"`
	Categories        int64 `json:"categories"`
	Authors           int64 `json:"authors"`
	Tags              int64 `json:"tags"`
}
