package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/crucial707/blog/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

type ArticleRepo struct {
	DB   *sql.DB
	tags *TagRepo
}

func NewArticleRepo(db *sql.DB) *ArticleRepo {
	return &ArticleRepo{DB: db, tags: NewTagRepo(db)}
}

const articleSelect = `
	SELECT a.id, a.title, a.slug, a.content, a.excerpt, a.cover_image, a.status,
	       a.author_id, a.category_id, a.views, a.likes, a.published_at, a.scheduled_for,
	       a.created_at, a.updated_at,
	       u.id, u.username, u.email, u.first_name, u.last_name, u.avatar, u.bio, u.created_at, u.updated_at,
	       c.id, c.name, c.slug, c.description, c.color, c.icon, c.created_at, c.updated_at
	FROM articles a
	JOIN users u ON u.id = a.author_id
	LEFT JOIN categories c ON c.id = a.category_id
`

// sortColumns whitelists the sortable fields of the public listing.
var sortColumns = map[string]string{
	"publishedAt": "a.published_at",
	"createdAt":   "a.created_at",
	"updatedAt":   "a.updated_at",
	"views":       "a.views",
	"likes":       "a.likes",
}

func scanArticle(s rowScanner) (*models.Article, error) {
	var (
		a      models.Article
		u      models.User
		catID  sql.NullInt64
		catNm  sql.NullString
		catSl  sql.NullString
		catCr  sql.NullTime
		catUp  sql.NullTime
		catDsc *string
		catCol *string
		catIco *string
	)
	err := s.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Content, &a.Excerpt, &a.CoverImage, &a.Status,
		&a.AuthorID, &a.CategoryID, &a.Views, &a.Likes, &a.PublishedAt, &a.ScheduledFor,
		&a.CreatedAt, &a.UpdatedAt,
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Avatar, &u.Bio, &u.CreatedAt, &u.UpdatedAt,
		&catID, &catNm, &catSl, &catDsc, &catCol, &catIco, &catCr, &catUp,
	)
	if err != nil {
		return nil, err
	}
	a.Author = &u
	if catID.Valid {
		a.Category = &models.Category{
			ID:          int(catID.Int64),
			Name:        catNm.String,
			Slug:        catSl.String,
			Description: catDsc,
			Color:       catCol,
			Icon:        catIco,
			CreatedAt:   catCr.Time,
			UpdatedAt:   catUp.Time,
		}
	}
	a.Tags = []models.Tag{}
	return &a, nil
}

func (r *ArticleRepo) attachTags(ctx context.Context, articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}
	ids := make([]int, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	byArticle, err := r.tags.ListForArticles(ctx, ids)
	if err != nil {
		return fmt.Errorf("load article tags: %w", err)
	}
	for _, a := range articles {
		if tags, ok := byArticle[a.ID]; ok {
			a.Tags = tags
		}
	}
	return nil
}

// publishedWhere builds the WHERE clause and args for the public listing.
func publishedWhere(f models.ArticleFilter) (string, []any) {
	where := []string{"a.status = 'PUBLISHED'"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Search != "" {
		add("(a.title ILIKE $%[1]d OR a.excerpt ILIKE $%[1]d OR a.content ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	if f.CategoryID > 0 {
		add("a.category_id = $%d", f.CategoryID)
	}
	if f.AuthorID > 0 {
		add("a.author_id = $%d", f.AuthorID)
	}
	if f.Tag != "" {
		add(`EXISTS (SELECT 1 FROM article_tags atg JOIN tags t ON t.id = atg.tag_id
			WHERE atg.article_id = a.id AND t.slug = $%d)`, f.Tag)
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// ========================
// LIST PUBLISHED ARTICLES
// ========================

// ListPublished returns published articles matching f, newest first by default.
func (r *ArticleRepo) ListPublished(ctx context.Context, f models.ArticleFilter) ([]*models.Article, error) {
	where, args := publishedWhere(f)

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = sortColumns["publishedAt"]
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, f.Offset)
	query := articleSelect + where +
		fmt.Sprintf(" ORDER BY %s %s NULLS LAST, a.id %s LIMIT $%d OFFSET $%d", col, dir, dir, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []*models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachTags(ctx, articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// CountPublished returns how many published articles match f.
func (r *ArticleRepo) CountPublished(ctx context.Context, f models.ArticleFilter) (int, error) {
	where, args := publishedWhere(f)
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles a`+where, args...).Scan(&n)
	return n, err
}

// ========================
// GET ARTICLE
// ========================

func (r *ArticleRepo) getOne(ctx context.Context, where string, arg any) (*models.Article, error) {
	a, err := scanArticle(r.DB.QueryRowContext(ctx, articleSelect+where, arg))
	if err != nil {
		return nil, mapError(err)
	}
	if err := r.attachTags(ctx, []*models.Article{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// GetBySlug returns the article with slug in any status.
func (r *ArticleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	a, err := r.getOne(ctx, ` WHERE a.slug = $1`, slug)
	if err != nil {
		return nil, fmt.Errorf("get article %q: %w", slug, err)
	}
	return a, nil
}

func (r *ArticleRepo) GetByID(ctx context.Context, id int) (*models.Article, error) {
	a, err := r.getOne(ctx, ` WHERE a.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	return a, nil
}

// ========================
// CREATE ARTICLE
// ========================

// Create inserts the article and its tag links in one transaction and
// returns the stored article. Title, Slug and Content are required.
func (r *ArticleRepo) Create(ctx context.Context, authorID int, in models.ArticleInput) (*models.Article, error) {
	if in.Title == nil || in.Slug == nil || in.Content == nil {
		return nil, fmt.Errorf("create article: title, slug and content are required")
	}
	status := models.StatusDraft
	if in.Status != nil {
		status = *in.Status
	}
	excerpt := ""
	if in.Excerpt != nil {
		excerpt = *in.Excerpt
	}
	var publishedAt *time.Time
	if status == models.StatusPublished {
		now := time.Now().UTC()
		publishedAt = &now
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO articles (title, slug, content, excerpt, cover_image, status, author_id, category_id, published_at, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, *in.Title, *in.Slug, *in.Content, excerpt, in.CoverImage, string(status), authorID, in.CategoryID, publishedAt, in.ScheduledFor,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", mapError(err))
	}

	if err := insertArticleTags(ctx, tx, id, in.TagIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func insertArticleTags(ctx context.Context, tx *sql.Tx, articleID int, tagIDs []int) error {
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			articleID, tagID,
		)
		if err != nil {
			return fmt.Errorf("link tag %d: %w", tagID, mapError(err))
		}
	}
	return nil
}

// ========================
// UPDATE ARTICLE
// ========================

// Update applies the non-nil fields of in. A non-nil TagIDs replaces the tag
// set. Moving into PUBLISHED stamps published_at once.
func (r *ArticleRepo) Update(ctx context.Context, id int, in models.ArticleInput) (*models.Article, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if in.Title != nil {
		set("title", *in.Title)
	}
	if in.Slug != nil {
		set("slug", *in.Slug)
	}
	if in.Content != nil {
		set("content", *in.Content)
	}
	if in.Excerpt != nil {
		set("excerpt", *in.Excerpt)
	}
	if in.CoverImage != nil {
		set("cover_image", *in.CoverImage)
	}
	if in.CategoryID != nil {
		set("category_id", *in.CategoryID)
	}
	if in.ScheduledFor != nil {
		set("scheduled_for", *in.ScheduledFor)
	}
	if in.Status != nil {
		set("status", string(*in.Status))
		if *in.Status == models.StatusPublished {
			sets = append(sets, "published_at = COALESCE(published_at, NOW())")
		}
	}
	args = append(args, id)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE articles SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("update article %d: %w", id, mapError(err))
	}
	if err := expectAffected(res); err != nil {
		return nil, fmt.Errorf("update article %d: %w", id, err)
	}

	if in.TagIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = $1`, id); err != nil {
			return nil, err
		}
		if err := insertArticleTags(ctx, tx, id, in.TagIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdateStatus changes only the status, with the same published_at rule as Update.
func (r *ArticleRepo) UpdateStatus(ctx context.Context, id int, status models.ArticleStatus) (*models.Article, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE articles
		SET status = $1,
		    published_at = CASE WHEN $1 = 'PUBLISHED' THEN COALESCE(published_at, NOW()) ELSE published_at END,
		    updated_at = NOW()
		WHERE id = $2
	`, string(status), id)
	if err != nil {
		return nil, fmt.Errorf("update article %d status: %w", id, mapError(err))
	}
	if err := expectAffected(res); err != nil {
		return nil, fmt.Errorf("update article %d status: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// ========================
// DELETE / COUNTERS
// ========================

func (r *ArticleRepo) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}
	return nil
}

// IncrementViews adds one view to the article.
func (r *ArticleRepo) IncrementViews(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE articles SET views = views + 1 WHERE id = $1`, id)
	return err
}

// Like adds one like and returns the new total.
func (r *ArticleRepo) Like(ctx context.Context, id int) (int, error) {
	var likes int
	err := r.DB.QueryRowContext(ctx, `UPDATE articles SET likes = likes + 1 WHERE id = $1 RETURNING likes`, id).Scan(&likes)
	if err != nil {
		return 0, fmt.Errorf("like article %d: %w", id, mapError(err))
	}
	return likes, nil
}

// PublishDue publishes drafts whose scheduled time is at or before now and
// returns how many were published.
func (r *ArticleRepo) PublishDue(ctx context.Context, now time.Time) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE articles
		SET status = 'PUBLISHED',
		    published_at = COALESCE(published_at, scheduled_for),
		    scheduled_for = NULL,
		    updated_at = NOW()
		WHERE status = 'DRAFT' AND scheduled_for IS NOT NULL AND scheduled_for <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
