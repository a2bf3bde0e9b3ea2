package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter mounts the public and admin surfaces. Admin routes require the
// bearer token.
func NewRouter(h *Handler, adminToken string) chi.Router {
	r := chi.NewRouter()

	r.Use(recoverer(h.logger))
	r.Use(requestLogger(h.logger))

	r.Get("/health", healthHandler)

	r.Route("/api/public", func(r chi.Router) {
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", h.ListArticles)
			r.Get("/featured", h.FeaturedArticle)
			r.Get("/search", h.SearchArticles)
			r.Get("/{slug}", h.ArticleBySlug)
			r.Get("/{slug}/related", h.RelatedArticles)
		})
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{slug}", h.CategoryBySlug)
		r.Get("/authors", h.ListAuthors)
		r.Get("/authors/{slug}", h.AuthorBySlug)
		r.Get("/tags", h.ListTags)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(requireToken(adminToken))

		r.Get("/dashboard/stats", h.AdminStats)

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", h.AdminListArticles)
			r.Post("/", h.AdminCreateArticle)
			r.Get("/{id}", h.AdminGetArticle)
			r.Put("/{id}", h.AdminUpdateArticle)
			r.Delete("/{id}", h.AdminDeleteArticle)
			r.Patch("/{id}/status", h.AdminChangeStatus)
			r.Patch("/{id}/featured", h.AdminToggleFeatured)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.AdminCreateCategory)
			r.Patch("/reorder", h.AdminReorderCategories)
			r.Get("/{id}", h.AdminGetCategory)
			r.Put("/{id}", h.AdminUpdateCategory)
			r.Delete("/{id}", h.AdminDeleteCategory)
		})

		r.Route("/authors", func(r chi.Router) {
			r.Get("/", h.ListAuthors)
			r.Post("/", h.AdminCreateAuthor)
			r.Get("/{id}", h.AdminGetAuthor)
			r.Put("/{id}", h.AdminUpdateAuthor)
			r.Delete("/{id}", h.AdminDeleteAuthor)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.ListTags)
			r.Post("/", h.AdminCreateTag)
			r.Post("/merge", h.AdminMergeTags)
			r.Get("/{id}", h.AdminGetTag)
			r.Put("/{id}", h.AdminRenameTag)
			r.Delete("/{id}", h.AdminDeleteTag)
		})
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
