package httpapi

import (
	"strings"
	"time"

	"editorial_catalog/internal/domain"
)

type articleRequest struct {
	Title            string   `json:"title"`
	Slug             string   `json:"slug"`
	Excerpt          string   `json:"excerpt"`
	Body             string   `json:"body"`
	CategoryID       int64    `json:"categoryId"`
	AuthorID         int64    `json:"authorId"`
	TagIDs           *[]int64 `json:"tagIds"`
	CardEmoji        string   `json:"cardEmoji"`
	CoverImageURL    string   `json:"coverImageUrl"`
	CoverImageCredit string   `json:"coverImageCredit"`
	Status           *string  `json:"status"`
	Academic         *bool    `json:"academic"`
	Featured         *bool    `json:"featured"`
	PublishedDate    *string  `json:"publishedDate"`
	MetaTitle        string   `json:"metaTitle"`
	MetaDescription  string   `json:"metaDescription"`
}

func (req articleRequest) input() (domain.ArticleInput, error) {
	in := domain.ArticleInput{
		Title:            req.Title,
		Slug:             req.Slug,
		Excerpt:          req.Excerpt,
		Body:             req.Body,
		CategoryID:       req.CategoryID,
		AuthorID:         req.AuthorID,
		TagIDs:           req.TagIDs,
		CardEmoji:        req.CardEmoji,
		CoverImageURL:    req.CoverImageURL,
		CoverImageCredit: req.CoverImageCredit,
		Academic:         req.Academic,
		Featured:         req.Featured,
		MetaTitle:        req.MetaTitle,
		MetaDescription:  req.MetaDescription,
	}

	if req.Status != nil {
		status, err := domain.ParseArticleStatus(*req.Status)
		if err != nil {
			return in, err
		}
		in.Status = &status
	}

	if req.PublishedDate != nil && strings.TrimSpace(*req.PublishedDate) != "" {
		date, err := parseDate(*req.PublishedDate)
		if err != nil {
			var verr domain.ValidationError
			verr.Add("publishedDate", "must be a date (YYYY-MM-DD)")
			return in, verr
		}
		in.PublishedDate = &date
	}

	return in, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp and keeps
// only the date.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return domain.DateOf(t), nil
}

type statusRequest struct {
	Status string `json:"status"`
}

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	Color       string `json:"color"`
	BgColor     string `json:"bgColor"`
	Type        string `json:"type"`
	SortOrder   *int   `json:"sortOrder"`
}

func (req categoryRequest) input() domain.CategoryInput {
	return domain.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Emoji:       req.Emoji,
		Color:       req.Color,
		BgColor:     req.BgColor,
		Type:        req.Type,
		SortOrder:   req.SortOrder,
	}
}

type authorRequest struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Bio       string `json:"bio"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

func (req authorRequest) input() domain.AuthorInput {
	return domain.AuthorInput{
		Name:      req.Name,
		Slug:      req.Slug,
		Bio:       req.Bio,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
	}
}

type tagRequest struct {
	Name string `json:"name"`
}

type mergeRequest struct {
	SourceID int64 `json:"sourceId"`
	TargetID int64 `json:"targetId"`
}
