package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"editorial_catalog/internal/domain"
)

func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	filter, err := listingFilter(r, false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.pageRequest(r, false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.queries.ListPublished(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) SearchArticles(w http.ResponseWriter, r *http.Request) {
	page, err := h.pageRequest(r, false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.queries.Search(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) FeaturedArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.GetFeatured(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *Handler) ArticleBySlug(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *Handler) RelatedArticles(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	size, err := queryInt(r, "size")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req := domain.NewPageRequest(page, size, h.opts.RelatedLimit, domain.Sort{Field: domain.SortPublishedDate})
	related, err := h.queries.Related(r.Context(), chi.URLParam(r, "slug"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, related)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) CategoryBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Handler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.authors.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authors)
}

func (h *Handler) AuthorBySlug(w http.ResponseWriter, r *http.Request) {
	author, err := h.authors.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, author)
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *Handler) pageRequest(r *http.Request, admin bool) (domain.PageRequest, error) {
	q := r.URL.Query()

	page, err := queryInt(r, "page")
	if err != nil {
		return domain.PageRequest{}, err
	}
	size, err := queryInt(r, "size")
	if err != nil {
		return domain.PageRequest{}, err
	}
	if admin && size <= 0 {
		size = h.opts.AdminPageSize
	}

	return h.queries.PageRequest(page, size, q.Get("sort"), admin)
}

// listingFilter reads the listing query parameters. The status parameter is
// only honoured on admin listings.
func listingFilter(r *http.Request, admin bool) (domain.ArticleFilter, error) {
	q := r.URL.Query()

	filter := domain.ArticleFilter{
		CategorySlug: q.Get("category"),
		AuthorSlug:   q.Get("author"),
		TagSlug:      q.Get("tag"),
		AcademicOnly: strings.EqualFold(q.Get("academic"), "true"),
		Query:        strings.TrimSpace(q.Get("q")),
	}

	if raw := q.Get("type"); raw != "" {
		t, err := domain.ParseCategoryType(raw)
		if err != nil {
			return filter, err
		}
		filter.CategoryType = t
	}

	if raw := q.Get("status"); admin && raw != "" {
		status, err := domain.ParseArticleStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}
