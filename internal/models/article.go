package models

import "time"

// ArticleStatus is the publication state of an article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "DRAFT"
	StatusPublished ArticleStatus = "PUBLISHED"
	StatusArchived  ArticleStatus = "ARCHIVED"
)

// Valid reports whether s is one of the known statuses.
func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type Article struct {
	ID           int           `json:"id"`
	Title        string        `json:"title"`
	Slug         string        `json:"slug"`
	Content      string        `json:"content"`
	Excerpt      string        `json:"excerpt"`
	CoverImage   *string       `json:"coverImage,omitempty"`
	Status       ArticleStatus `json:"status"`
	AuthorID     int           `json:"authorId"`
	Author       *User         `json:"author,omitempty"`
	CategoryID   *int          `json:"categoryId,omitempty"`
	Category     *Category     `json:"category,omitempty"`
	Tags         []Tag         `json:"tags"`
	Views        int           `json:"views"`
	Likes        int           `json:"likes"`
	PublishedAt  *time.Time    `json:"publishedAt,omitempty"`
	ScheduledFor *time.Time    `json:"scheduledFor,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ArticleInput carries the writable fields of an article. Nil pointers are
// left untouched on update.
type ArticleInput struct {
	Title        *string
	Slug         *string
	Content      *string
	Excerpt      *string
	CoverImage   *string
	Status       *ArticleStatus
	CategoryID   *int
	TagIDs       []int
	ScheduledFor *time.Time
}

// ArticleFilter narrows and orders the public article listing.
type ArticleFilter struct {
	Search     string
	CategoryID int
	AuthorID   int
	Tag        string
	SortBy     string
	SortOrder  string
	Limit      int
	Offset     int
}
