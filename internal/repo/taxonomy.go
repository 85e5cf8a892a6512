package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crucial707/blog/internal/models"
	"github.com/lib/pq"
)

// ========================
// CategoryRepo
// ========================

type CategoryRepo struct {
	DB *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{DB: db}
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, slug, description, color, icon, created_at, updated_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color, &c.Icon, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Create inserts c and fills in its ID and timestamps.
func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO categories (name, slug, description, color, icon)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Slug, c.Description, c.Color, c.Icon,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", mapError(err))
	}
	return nil
}

// ========================
// TagRepo
// ========================

type TagRepo struct {
	DB *sql.DB
}

func NewTagRepo(db *sql.DB) *TagRepo {
	return &TagRepo{DB: db}
}

// List returns all tags ordered by name.
func (r *TagRepo) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, slug, color, created_at, updated_at FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Color, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Create inserts t and fills in its ID and timestamps.
func (r *TagRepo) Create(ctx context.Context, t *models.Tag) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO tags (name, slug, color)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		t.Name, t.Slug, t.Color,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create tag: %w", mapError(err))
	}
	return nil
}

// ListForArticles returns the tags of each given article, keyed by article ID.
func (r *TagRepo) ListForArticles(ctx context.Context, articleIDs []int) (map[int][]models.Tag, error) {
	out := make(map[int][]models.Tag, len(articleIDs))
	if len(articleIDs) == 0 {
		return out, nil
	}
	ids := make([]int64, len(articleIDs))
	for i, id := range articleIDs {
		ids[i] = int64(id)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT atg.article_id, t.id, t.name, t.slug, t.color, t.created_at, t.updated_at
		FROM article_tags atg
		JOIN tags t ON t.id = atg.tag_id
		WHERE atg.article_id = ANY($1)
		ORDER BY t.name ASC
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var articleID int
		var t models.Tag
		if err := rows.Scan(&articleID, &t.ID, &t.Name, &t.Slug, &t.Color, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out[articleID] = append(out[articleID], t)
	}
	return out, rows.Err()
}
