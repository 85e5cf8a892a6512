package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crucial707/blog/internal/models"
)

// CommentRepo persists article comments.
type CommentRepo struct {
	DB *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{DB: db}
}

// ListByArticle returns every comment of the article, oldest first, with a
// trimmed author attached. Callers nest them with models.BuildCommentTree.
func (r *CommentRepo) ListByArticle(ctx context.Context, articleID int) ([]models.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT cm.id, cm.content, cm.article_id, cm.author_id, cm.parent_id, cm.likes, cm.created_at, cm.updated_at,
		       u.username, u.first_name, u.last_name, u.avatar
		FROM comments cm
		JOIN users u ON u.id = cm.author_id
		WHERE cm.article_id = $1
		ORDER BY cm.created_at ASC, cm.id ASC
	`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		u := &models.User{}
		if err := rows.Scan(&c.ID, &c.Content, &c.ArticleID, &c.AuthorID, &c.ParentID, &c.Likes, &c.CreatedAt, &c.UpdatedAt,
			&u.Username, &u.FirstName, &u.LastName, &u.Avatar); err != nil {
			return nil, err
		}
		u.ID = c.AuthorID
		c.Author = u
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// GetByID returns the comment without its author.
func (r *CommentRepo) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	c := &models.Comment{Replies: []*models.Comment{}}
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, content, article_id, author_id, parent_id, likes, created_at, updated_at
		FROM comments
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Content, &c.ArticleID, &c.AuthorID, &c.ParentID, &c.Likes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get comment %d: %w", id, mapError(err))
	}
	return c, nil
}

// Create inserts c and fills in its ID, likes and timestamps.
func (r *CommentRepo) Create(ctx context.Context, c *models.Comment) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO comments (content, article_id, author_id, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, likes, created_at, updated_at
	`, c.Content, c.ArticleID, c.AuthorID, c.ParentID,
	).Scan(&c.ID, &c.Likes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create comment: %w", mapError(err))
	}
	if c.Replies == nil {
		c.Replies = []*models.Comment{}
	}
	return nil
}

// Delete removes the comment and, through the foreign key, its replies.
func (r *CommentRepo) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	return nil
}

// Like adds one like and returns the new total.
func (r *CommentRepo) Like(ctx context.Context, id int) (int, error) {
	var likes int
	err := r.DB.QueryRowContext(ctx, `UPDATE comments SET likes = likes + 1 WHERE id = $1 RETURNING likes`, id).Scan(&likes)
	if err != nil {
		return 0, fmt.Errorf("like comment %d: %w", id, mapError(err))
	}
	return likes, nil
}
