package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crucial707/blog/internal/models"
	"github.com/crucial707/blog/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

var errAlreadySeeded = errors.New("users table is not empty; rerun with --force to wipe and reseed")

const truncateAll = `TRUNCATE audit_log, comments, article_tags, articles, tags, categories, users RESTART IDENTITY CASCADE`

type summary struct {
	Users, Categories, Tags, Articles, Comments int
}

type seeder struct {
	db         *sql.DB
	users      *repo.UserRepo
	categories *repo.CategoryRepo
	tags       *repo.TagRepo
	articles   *repo.ArticleRepo
	comments   *repo.CommentRepo
	// bcrypt cost for the demo password.
	cost int
}

func newSeeder(db *sql.DB) *seeder {
	return &seeder{
		db:         db,
		users:      repo.NewUserRepo(db),
		categories: repo.NewCategoryRepo(db),
		tags:       repo.NewTagRepo(db),
		articles:   repo.NewArticleRepo(db),
		comments:   repo.NewCommentRepo(db),
		cost:       bcrypt.DefaultCost,
	}
}

func (s *seeder) run(ctx context.Context, force bool) (summary, error) {
	var sum summary

	n, err := s.users.Count(ctx)
	if err != nil {
		return sum, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		if !force {
			return sum, errAlreadySeeded
		}
		slog.Warn("wiping existing data", "users", n)
		if _, err := s.db.ExecContext(ctx, truncateAll); err != nil {
			return sum, fmt.Errorf("truncate: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), s.cost)
	if err != nil {
		return sum, err
	}

	userIDs := make([]int, len(demoUsers))
	for i, du := range demoUsers {
		u := &models.User{
			Username:     du.Username,
			Email:        du.Email,
			PasswordHash: string(hash),
			FirstName:    du.FirstName,
			LastName:     du.LastName,
			Avatar:       strPtr(du.Avatar),
			Bio:          strPtr(du.Bio),
		}
		if err := s.users.Create(ctx, u); err != nil {
			return sum, err
		}
		userIDs[i] = u.ID
		sum.Users++
	}

	categoryIDs := make([]int, len(demoCategories))
	for i, dc := range demoCategories {
		c := &models.Category{
			Name:        dc.Name,
			Slug:        dc.Slug,
			Description: strPtr(dc.Description),
			Color:       strPtr(dc.Color),
			Icon:        strPtr(dc.Icon),
		}
		if err := s.categories.Create(ctx, c); err != nil {
			return sum, err
		}
		categoryIDs[i] = c.ID
		sum.Categories++
	}

	tagIDs := make([]int, len(demoTags))
	for i, dt := range demoTags {
		t := &models.Tag{Name: dt.Name, Slug: dt.Slug, Color: strPtr(dt.Color)}
		if err := s.tags.Create(ctx, t); err != nil {
			return sum, err
		}
		tagIDs[i] = t.ID
		sum.Tags++
	}

	for _, da := range demoArticles {
		in := models.ArticleInput{
			Title:      strPtr(da.Title),
			Slug:       strPtr(da.Slug),
			Content:    strPtr(da.Content),
			Excerpt:    strPtr(da.Excerpt),
			CoverImage: strPtr(da.CoverImage),
			Status:     &da.Status,
			CategoryID: &categoryIDs[da.Category],
		}
		for _, t := range da.Tags {
			in.TagIDs = append(in.TagIDs, tagIDs[t])
		}
		a, err := s.articles.Create(ctx, userIDs[da.Author], in)
		if err != nil {
			return sum, fmt.Errorf("article %q: %w", da.Slug, err)
		}
		sum.Articles++

		if da.Status != models.StatusPublished {
			continue
		}
		var firstID int
		for _, dc := range demoComments {
			c := &models.Comment{Content: dc.Content, ArticleID: a.ID, AuthorID: userIDs[dc.Author]}
			if dc.IsReply {
				c.ParentID = &firstID
			}
			if err := s.comments.Create(ctx, c); err != nil {
				return sum, fmt.Errorf("comment on %q: %w", da.Slug, err)
			}
			if firstID == 0 {
				firstID = c.ID
			}
			sum.Comments++
		}
	}

	return sum, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
