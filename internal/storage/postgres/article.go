package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"editorial_catalog/internal/domain"
)

type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `
	a.id, a.slug, a.title, a.excerpt, a.body, a.category_id, a.author_id,
	a.card_emoji, a.cover_image_url, a.cover_image_credit, a.status, a.academic,
	a.featured, a.published_date, a.reading_time_minutes, a.meta_title,
	a.meta_description, a.created_at, a.updated_at`

// sortColumns maps the public sort field names onto SQL expressions.
var sortColumns = map[string]string{
	domain.SortPublishedDate: "a.published_date",
	domain.SortCreatedAt:     "a.created_at",
	domain.SortUpdatedAt:     "a.updated_at",
	domain.SortTitle:         "a.title",
	domain.SortReadingTime:   "a.reading_time_minutes",
	domain.SortSlug:          "a.slug",
	domain.SortID:            "a.id",
}

func (s *ArticleStore) Create(ctx context.Context, article *domain.Article) (int64, error) {
	query := `
		INSERT INTO articles (
			slug, title, excerpt, body, category_id, author_id, card_emoji,
			cover_image_url, cover_image_credit, status, academic, featured,
			published_date, reading_time_minutes, meta_title, meta_description
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING id, created_at, updated_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		article.Slug,
		article.Title,
		article.Excerpt,
		article.Body,
		article.CategoryID,
		article.AuthorID,
		article.CardEmoji,
		article.CoverImageURL,
		article.CoverImageCredit,
		article.Status,
		article.Academic,
		article.Featured,
		article.PublishedDate,
		article.ReadingTimeMinutes,
		article.MetaTitle,
		article.MetaDescription,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert article: %w", translateUnique(err, domain.EntityArticle, article.Slug))
	}

	return article.ID, nil
}

func (s *ArticleStore) Update(ctx context.Context, article *domain.Article) error {
	query := `
		UPDATE articles SET
			slug = $1, title = $2, excerpt = $3, body = $4, category_id = $5,
			author_id = $6, card_emoji = $7, cover_image_url = $8,
			cover_image_credit = $9, status = $10, academic = $11, featured = $12,
			published_date = $13, reading_time_minutes = $14, meta_title = $15,
			meta_description = $16, updated_at = NOW()
		WHERE id = $17
		RETURNING updated_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		article.Slug,
		article.Title,
		article.Excerpt,
		article.Body,
		article.CategoryID,
		article.AuthorID,
		article.CardEmoji,
		article.CoverImageURL,
		article.CoverImageCredit,
		article.Status,
		article.Academic,
		article.Featured,
		article.PublishedDate,
		article.ReadingTimeMinutes,
		article.MetaTitle,
		article.MetaDescription,
		article.ID,
	).Scan(&article.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFound(domain.EntityArticle, article.ID)
	}
	if err != nil {
		return fmt.Errorf("update article: %w", translateUnique(err, domain.EntityArticle, article.Slug))
	}
	return nil
}

func (s *ArticleStore) Delete(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return expectAffected(res, domain.EntityArticle, id)
}

// GetByID returns the article with its tag ids, or nil if it does not exist.
func (s *ArticleStore) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	return s.getOne(ctx, `SELECT `+articleColumns+` FROM articles a WHERE a.id = $1`, id)
}

// GetBySlug returns the article with its tag ids, or nil if it does not exist.
func (s *ArticleStore) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	return s.getOne(ctx, `SELECT `+articleColumns+` FROM articles a WHERE a.slug = $1`, slug)
}

func (s *ArticleStore) getOne(ctx context.Context, query string, arg any) (*domain.Article, error) {
	exec := GetExecutor(ctx, s.db)

	var article domain.Article
	err := sqlx.GetContext(ctx, exec, &article, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}

	article.TagIDs = []int64{}
	err = sqlx.SelectContext(ctx, exec, &article.TagIDs,
		`SELECT tag_id FROM article_tags WHERE article_id = $1 ORDER BY tag_id`, article.ID)
	if err != nil {
		return nil, fmt.Errorf("get article tag ids: %w", err)
	}

	return &article, nil
}

// ListPublishedFeatured returns every article that is both published and
// featured. More than one row means the featured invariant is broken.
func (s *ArticleStore) ListPublishedFeatured(ctx context.Context) ([]domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles a
		WHERE a.featured AND a.status = $1
		ORDER BY a.updated_at DESC, a.id DESC`

	var articles []domain.Article
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &articles, query, domain.StatusPublished); err != nil {
		return nil, fmt.Errorf("list featured articles: %w", err)
	}
	return articles, nil
}

func (s *ArticleStore) SetFeatured(ctx context.Context, id int64, featured bool) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE articles SET featured = $1, updated_at = NOW() WHERE id = $2`, featured, id)
	if err != nil {
		return fmt.Errorf("set featured: %w", err)
	}
	return expectAffected(res, domain.EntityArticle, id)
}

func (s *ArticleStore) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &n,
		`SELECT COUNT(*) FROM articles WHERE category_id = $1`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("count articles by category: %w", err)
	}
	return n, nil
}

func (s *ArticleStore) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &n,
		`SELECT COUNT(*) FROM articles WHERE author_id = $1`, authorID)
	if err != nil {
		return 0, fmt.Errorf("count articles by author: %w", err)
	}
	return n, nil
}

func (s *ArticleStore) CountByStatus(ctx context.Context) (map[domain.ArticleStatus]int64, error) {
	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx,
		`SELECT status, COUNT(*) FROM articles GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count articles by status: %w", err)
	}
	defer rows.Close()

	result := make(map[domain.ArticleStatus]int64)
	for rows.Next() {
		var status domain.ArticleStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		result[status] = n
	}
	return result, rows.Err()
}

// Find returns one page of articles matching filter plus the total number of
// matches. Tag ids are not loaded.
func (s *ArticleStore) Find(ctx context.Context, filter domain.ArticleFilter, page domain.PageRequest) ([]domain.Article, int64, error) {
	exec := GetExecutor(ctx, s.db)
	where := buildArticleWhere(filter)

	from := `FROM articles a
		JOIN categories c ON c.id = a.category_id
		JOIN authors au ON au.id = a.author_id` + where.sql()

	var total int64
	if err := sqlx.GetContext(ctx, exec, &total, `SELECT COUNT(*) `+from, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}
	if total == 0 {
		return []domain.Article{}, 0, nil
	}

	column, ok := sortColumns[page.Sort.Field]
	if !ok {
		column = sortColumns[domain.SortPublishedDate]
	}
	direction := "DESC"
	if page.Sort.Ascending {
		direction = "ASC"
	}

	args := append(where.args, page.Size, page.Offset())
	query := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s NULLS LAST, a.id DESC LIMIT $%d OFFSET $%d`,
		articleColumns, from, column, direction, len(args)-1, len(args))

	articles := []domain.Article{}
	if err := sqlx.SelectContext(ctx, exec, &articles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("find articles: %w", err)
	}
	return articles, total, nil
}

type conditions struct {
	clauses []string
	args    []any
}

// add appends a clause whose "?" placeholders all bind to arg.
func (c *conditions) add(clause string, arg any) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(c.args))))
}

func (c *conditions) sql() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func buildArticleWhere(f domain.ArticleFilter) *conditions {
	c := &conditions{}
	if f.Status != nil {
		c.add("a.status = ?", *f.Status)
	}
	if f.CategoryID != 0 {
		c.add("a.category_id = ?", f.CategoryID)
	}
	if f.CategorySlug != "" {
		c.add("c.slug = ?", f.CategorySlug)
	}
	if f.CategoryType != "" {
		c.add("c.type = ?", f.CategoryType)
	}
	if f.AuthorSlug != "" {
		c.add("au.slug = ?", f.AuthorSlug)
	}
	if f.TagSlug != "" {
		c.add(`EXISTS (
			SELECT 1 FROM article_tags x JOIN tags t ON t.id = x.tag_id
			WHERE x.article_id = a.id AND t.slug = ?)`, f.TagSlug)
	}
	if f.AcademicOnly {
		c.add("a.academic = ?", true)
	}
	if f.Query != "" {
		c.add("(a.title ILIKE ? OR a.excerpt ILIKE ? OR a.body ILIKE ?)", containsPattern(f.Query))
	}
	if f.ExcludeID != 0 {
		c.add("a.id <> ?", f.ExcludeID)
	}
	return c
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching q as a literal substring.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
