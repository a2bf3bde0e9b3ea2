package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"editorial_catalog/internal/domain"
)

type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

const tagWithCount = `
	SELECT t.id, t.name, t.slug,
		(SELECT COUNT(*) FROM article_tags x WHERE x.tag_id = t.id) AS article_count
	FROM tags t`

func (s *TagStore) Create(ctx context.Context, tag *domain.Tag) (int64, error) {
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx,
		`INSERT INTO tags (name, slug) VALUES ($1, $2) RETURNING id`,
		tag.Name, tag.Slug,
	).Scan(&tag.ID)
	if err != nil {
		return 0, fmt.Errorf("insert tag: %w", translateUnique(err, domain.EntityTag, tag.Slug))
	}
	return tag.ID, nil
}

func (s *TagStore) Update(ctx context.Context, tag *domain.Tag) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE tags SET name = $1, slug = $2 WHERE id = $3`,
		tag.Name, tag.Slug, tag.ID,
	)
	if err != nil {
		return fmt.Errorf("update tag: %w", translateUnique(err, domain.EntityTag, tag.Slug))
	}
	return expectAffected(res, domain.EntityTag, tag.ID)
}

// Delete removes the tag row. Edges still pointing at it are removed by the
// foreign key cascade; callers detach explicitly first.
func (s *TagStore) Delete(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return expectAffected(res, domain.EntityTag, id)
}

func (s *TagStore) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	return s.getOne(ctx, tagWithCount+` WHERE t.id = $1`, id)
}

func (s *TagStore) GetBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	return s.getOne(ctx, tagWithCount+` WHERE t.slug = $1`, slug)
}

func (s *TagStore) getOne(ctx context.Context, query string, arg any) (*domain.Tag, error) {
	var tag domain.Tag
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &tag, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &tag, nil
}

// List returns every tag ordered by name, with article counts.
func (s *TagStore) List(ctx context.Context) ([]domain.Tag, error) {
	tags := []domain.Tag{}
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &tags, tagWithCount+` ORDER BY t.name, t.id`); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// FindByIDs returns the tags among ids that exist. Unknown ids are skipped.
func (s *TagStore) FindByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return []domain.Tag{}, nil
	}

	tags := []domain.Tag{}
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &tags,
		tagWithCount+` WHERE t.id = ANY($1) ORDER BY t.name, t.id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find tags: %w", err)
	}
	return tags, nil
}

// ArticleIDs lists the articles currently carrying the tag.
func (s *TagStore) ArticleIDs(ctx context.Context, tagID int64) ([]int64, error) {
	ids := []int64{}
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &ids,
		`SELECT article_id FROM article_tags WHERE tag_id = $1 ORDER BY article_id`, tagID)
	if err != nil {
		return nil, fmt.Errorf("list tagged articles: %w", err)
	}
	return ids, nil
}

// Attach adds an edge. Attaching an existing edge is a no-op.
func (s *TagStore) Attach(ctx context.Context, articleID, tagID int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		articleID, tagID,
	)
	if err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

func (s *TagStore) Detach(ctx context.Context, articleID, tagID int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM article_tags WHERE article_id = $1 AND tag_id = $2`,
		articleID, tagID,
	)
	if err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}
	return nil
}

// ReplaceAll makes tagIDs the complete tag set of the article.
func (s *TagStore) ReplaceAll(ctx context.Context, articleID int64, tagIDs []int64) error {
	exec := GetExecutor(ctx, s.db)

	_, err := exec.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID)
	if err != nil {
		return fmt.Errorf("clear article tags: %w", err)
	}

	if len(tagIDs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO article_tags (article_id, tag_id) VALUES ")
	valueArgs := make([]any, 0, len(tagIDs)+1)
	valueArgs = append(valueArgs, articleID)

	for i, tagID := range tagIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($1, $")
		sb.WriteString(strconv.Itoa(i + 2))
		sb.WriteString(")")
		valueArgs = append(valueArgs, tagID)
	}
	sb.WriteString(" ON CONFLICT DO NOTHING")

	if _, err := exec.ExecContext(ctx, sb.String(), valueArgs...); err != nil {
		return fmt.Errorf("link article tags: %w", err)
	}
	return nil
}

// GetByArticleIDs returns the tags of each article, keyed by article id.
func (s *TagStore) GetByArticleIDs(ctx context.Context, articleIDs []int64) (map[int64][]domain.Tag, error) {
	result := make(map[int64][]domain.Tag, len(articleIDs))
	if len(articleIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT x.article_id, t.id, t.name, t.slug
		FROM article_tags x
		JOIN tags t ON t.id = x.tag_id
		WHERE x.article_id = ANY($1)
		ORDER BY t.name, t.id`

	var rows []struct {
		ArticleID int64 `db:"article_id"`
		domain.Tag
	}
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, pq.Array(articleIDs)); err != nil {
		return nil, fmt.Errorf("get tags by articles: %w", err)
	}

	for _, row := range rows {
		result[row.ArticleID] = append(result[row.ArticleID], row.Tag)
	}
	return result, nil
}

func (s *TagStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &n, `SELECT COUNT(*) FROM tags`); err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return n, nil
}
