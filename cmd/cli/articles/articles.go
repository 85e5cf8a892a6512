package articles

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/crucial707/blog/cmd/cli/client"
	"github.com/crucial707/blog/cmd/cli/output"
	"github.com/spf13/cobra"
)

type article struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt"`
	Status      string     `json:"status"`
	Views       int        `json:"views"`
	Likes       int        `json:"likes"`
	PublishedAt *time.Time `json:"publishedAt"`
	Author      *struct {
		Username string `json:"username"`
	} `json:"author"`
	Category *struct {
		Name string `json:"name"`
	} `json:"category"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

func (a article) authorName() string {
	if a.Author == nil {
		return ""
	}
	return a.Author.Username
}

func (a article) categoryName() string {
	if a.Category == nil {
		return ""
	}
	return a.Category.Name
}

func (a article) published() string {
	if a.PublishedAt == nil {
		return "-"
	}
	return a.PublishedAt.Format("2006-01-02")
}

// articleID normalises a positive integer id argument.
func articleID(arg string) (string, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return "", fmt.Errorf("invalid article id %q", arg)
	}
	return strconv.Itoa(id), nil
}

// ==========================
// Init Articles
// ==========================
func InitArticles(rootCmd *cobra.Command) {
	articlesCmd := &cobra.Command{
		Use:   "articles",
		Short: "Browse and manage articles",
	}

	articlesCmd.AddCommand(
		listArticlesCmd(),
		getArticleCmd(),
		createArticleCmd(),
		publishArticleCmd(),
		deleteArticleCmd(),
	)

	rootCmd.AddCommand(articlesCmd)
}

// ==========================
// LIST
// ==========================
func listArticlesCmd() *cobra.Command {
	var (
		asJSON         bool
		search, tag    string
		page, limit    int
		categoryID     int
		sortBy, sortOr string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("page", strconv.Itoa(page))
			q.Set("limit", strconv.Itoa(limit))
			if search != "" {
				q.Set("search", search)
			}
			if tag != "" {
				q.Set("tag", tag)
			}
			if categoryID > 0 {
				q.Set("categoryId", strconv.Itoa(categoryID))
			}
			if sortBy != "" {
				q.Set("sortBy", sortBy)
			}
			if sortOr != "" {
				q.Set("sortOrder", sortOr)
			}

			var list []article
			env, err := client.CallInto("GET", "/articles?"+q.Encode(), nil, false, &list)
			if err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(list)
			}

			rows := make([][]interface{}, 0, len(list))
			for _, a := range list {
				rows = append(rows, []interface{}{
					a.ID, output.Truncate(a.Title, 48), a.Slug, a.authorName(), a.categoryName(), a.Views, a.Likes, a.published(),
				})
			}
			output.RenderTable([]string{"ID", "Title", "Slug", "Author", "Category", "Views", "Likes", "Published"}, rows)
			if env.Meta != nil {
				fmt.Printf("Page %d of %d (%d articles)\n", env.Meta.CurrentPage, env.Meta.TotalPages, env.Meta.TotalItems)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON instead of a table")
	cmd.Flags().StringVar(&search, "search", "", "Search title, excerpt and content")
	cmd.Flags().StringVar(&tag, "tag", "", "Only articles with this tag slug")
	cmd.Flags().IntVar(&categoryID, "category", 0, "Only articles in this category ID")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "Articles per page (max 100)")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "publishedAt|createdAt|updatedAt|views|likes")
	cmd.Flags().StringVar(&sortOr, "sort-order", "", "asc|desc")
	return cmd
}

// ==========================
// GET
// ==========================
func getArticleCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <slug>",
		Short: "Show one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var a article
			if _, err := client.CallInto("GET", "/articles/"+url.PathEscape(args[0]), nil, false, &a); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(a)
			}

			fmt.Printf("%s\n", a.Title)
			fmt.Printf("by %s | %s | %s | %d views, %d likes\n", a.authorName(), a.Status, a.published(), a.Views, a.Likes)
			if c := a.categoryName(); c != "" {
				fmt.Printf("category: %s\n", c)
			}
			if len(a.Tags) > 0 {
				fmt.Print("tags:")
				for _, t := range a.Tags {
					fmt.Printf(" #%s", t.Name)
				}
				fmt.Println()
			}
			fmt.Printf("\n%s\n", a.Content)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}

// ==========================
// CREATE
// ==========================
func createArticleCmd() *cobra.Command {
	var (
		title, content, excerpt, status string
		categoryID                      int
		tagIDs                          []int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an article (draft unless --status PUBLISHED)",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{"title": title, "content": content}
			if excerpt != "" {
				payload["excerpt"] = excerpt
			}
			if status != "" {
				payload["status"] = status
			}
			if categoryID > 0 {
				payload["categoryId"] = categoryID
			}
			if len(tagIDs) > 0 {
				payload["tagIds"] = tagIDs
			}

			var a article
			if _, err := client.CallInto("POST", "/articles", payload, true, &a); err != nil {
				return err
			}
			fmt.Printf("Created article %d (%s) as %s\n", a.ID, a.Slug, a.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Article title")
	cmd.Flags().StringVar(&content, "content", "", "Article body")
	cmd.Flags().StringVar(&excerpt, "excerpt", "", "Short summary (derived from content when empty)")
	cmd.Flags().StringVar(&status, "status", "", "DRAFT|PUBLISHED|ARCHIVED")
	cmd.Flags().IntVar(&categoryID, "category", 0, "Category ID")
	cmd.Flags().IntSliceVar(&tagIDs, "tags", nil, "Comma-separated tag IDs")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("content")
	return cmd
}

// ==========================
// PUBLISH
// ==========================
func publishArticleCmd() *cobra.Command {
	var draft, archive bool

	cmd := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish an article, or move it back to draft / archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if draft && archive {
				return errors.New("--draft and --archive are mutually exclusive")
			}
			status := "PUBLISHED"
			switch {
			case draft:
				status = "DRAFT"
			case archive:
				status = "ARCHIVED"
			}
			id, err := articleID(args[0])
			if err != nil {
				return err
			}
			env, err := client.Call("PATCH", "/articles/"+id+"/publish", map[string]string{"status": status}, true)
			if err != nil {
				return err
			}
			fmt.Println(env.Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&draft, "draft", false, "Move back to draft")
	cmd.Flags().BoolVar(&archive, "archive", false, "Archive the article")
	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteArticleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := articleID(args[0])
			if err != nil {
				return err
			}
			env, err := client.Call("DELETE", "/articles/"+id, nil, true)
			if err != nil {
				return err
			}
			fmt.Println(env.Message)
			return nil
		},
	}
}
