package models

import "time"

// Comment on an article. ParentID is set for replies; Replies is only
// populated when comments are returned as a tree.
type Comment struct {
	ID        int        `json:"id"`
	Content   string     `json:"content"`
	ArticleID int        `json:"articleId"`
	AuthorID  int        `json:"authorId"`
	Author    *User      `json:"author,omitempty"`
	ParentID  *int       `json:"parentId,omitempty"`
	Replies   []*Comment `json:"replies"`
	Likes     int        `json:"likes"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// BuildCommentTree nests replies under their parents. Input order is kept
// within each level. Replies whose parent is missing are promoted to the top.
func BuildCommentTree(flat []Comment) []*Comment {
	byID := make(map[int]*Comment, len(flat))
	nodes := make([]*Comment, len(flat))
	for i := range flat {
		c := flat[i]
		c.Replies = []*Comment{}
		nodes[i] = &c
		byID[c.ID] = nodes[i]
	}

	roots := []*Comment{}
	for _, c := range nodes {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, c)
				continue
			}
		}
		roots = append(roots, c)
	}
	return roots
}
