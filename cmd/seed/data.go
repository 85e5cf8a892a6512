package main

import "github.com/crucial707/blog/internal/models"

const demoPassword = "password123"

type seedUser struct {
	Username, Email, FirstName, LastName, Avatar, Bio string
}

type seedCategory struct {
	Name, Slug, Description, Color, Icon string
}

type seedTag struct {
	Name, Slug, Color string
}

// seedArticle refers to users, categories and tags by their index in the
// slices below.
type seedArticle struct {
	Title, Slug, Excerpt, CoverImage, Content string
	Status                                    models.ArticleStatus
	Author                                    int
	Category                                  int
	Tags                                      []int
}

var demoUsers = []seedUser{
	{"johndoe", "john@example.com", "John", "Doe",
		"https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop&crop=face",
		"Full-stack developer passionate about modern web technologies."},
	{"janesmith", "jane@example.com", "Jane", "Smith",
		"https://images.unsplash.com/photo-1494790108755-2616b612b786?w=150&h=150&fit=crop&crop=face",
		"UI/UX designer and frontend enthusiast."},
	{"mikejohnson", "mike@example.com", "Mike", "Johnson",
		"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=150&h=150&fit=crop&crop=face",
		"DevOps engineer and cloud architecture specialist."},
}

const (
	catTechnology = iota
	catDesign
	catWebDev
	catAI
)

var demoCategories = []seedCategory{
	{"Technology", "technology", "Latest trends and insights in technology", "#3B82F6", "💻"},
	{"Design", "design", "UI/UX design tips and best practices", "#EF4444", "🎨"},
	{"Web Development", "web-development", "Web development tutorials and guides", "#10B981", "🌐"},
	{"Artificial Intelligence", "artificial-intelligence", "AI and machine learning insights", "#8B5CF6", "🤖"},
}

const (
	tagJavaScript = iota
	tagTypeScript
	tagReact
	tagVue
	tagCSS
	tagNode
	tagAI
	tagML
	tagDesignSystem
	tagPerformance
)

var demoTags = []seedTag{
	{"JavaScript", "javascript", "#F7DF1E"},
	{"TypeScript", "typescript", "#3178C6"},
	{"React", "react", "#61DAFB"},
	{"Vue.js", "vuejs", "#4FC08D"},
	{"CSS", "css", "#1572B6"},
	{"Node.js", "nodejs", "#339933"},
	{"AI", "ai", "#FF6B35"},
	{"Machine Learning", "machine-learning", "#FF6B6B"},
	{"Design System", "design-system", "#845EF7"},
	{"Performance", "performance", "#FA5252"},
}

var demoArticles = []seedArticle{
	{
		Title:      "Getting Started with Sigment: A Modern Reactive Framework",
		Slug:       "getting-started-with-sigment",
		Excerpt:    "Learn how Sigment offers a modern approach to building reactive web applications without virtual DOM overhead.",
		CoverImage: "https://images.unsplash.com/photo-1555066931-4365d14bab8c?w=800&h=400&fit=crop",
		Content: "# Getting Started with Sigment\n\n" +
			"Sigment is a lightweight reactive framework that updates the DOM directly, without a virtual DOM or JSX.\n\n" +
			"## Why Sigment?\n\n" +
			"- Direct DOM updates keep rendering fast.\n" +
			"- Plain JavaScript or TypeScript, no build step required.\n" +
			"- Signals update only the parts of the page that changed.\n\n" +
			"```typescript\nconst [count, setCount] = signal(0);\n```\n",
		Status:   models.StatusPublished,
		Author:   0,
		Category: catWebDev,
		Tags:     []int{tagJavaScript, tagTypeScript, tagPerformance},
	},
	{
		Title:      "Modern CSS Techniques for Better User Interfaces",
		Slug:       "modern-css-techniques",
		Excerpt:    "Explore modern CSS techniques including Grid, Flexbox, custom properties, and container queries.",
		CoverImage: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800&h=400&fit=crop",
		Content: "# Modern CSS Techniques\n\n" +
			"## Grid for layout\n\n" +
			"```css\n.container {\n  display: grid;\n  grid-template-columns: repeat(auto-fit, minmax(300px, 1fr));\n  gap: 2rem;\n}\n```\n\n" +
			"## Custom properties\n\n" +
			"```css\n:root { --primary-color: #3b82f6; }\n.button { background-color: var(--primary-color); }\n```\n\n" +
			"## Container queries\n\n" +
			"```css\n@container (min-width: 400px) { .card { display: flex; } }\n```\n",
		Status:   models.StatusPublished,
		Author:   1,
		Category: catDesign,
		Tags:     []int{tagCSS, tagDesignSystem},
	},
	{
		Title:      "The Future of AI in Web Development",
		Slug:       "future-of-ai-web-development",
		Excerpt:    "Discover how AI is transforming web development with automated tools, intelligent UX, and performance optimization.",
		CoverImage: "https://images.unsplash.com/photo-1555255707-c07966088b7b?w=800&h=400&fit=crop",
		Content: "# The Future of AI in Web Development\n\n" +
			"Code assistants suggest completions, generate tests and explain unfamiliar APIs.\n\n" +
			"## Intelligent user experiences\n\n" +
			"- Content recommendations\n- Adaptive interfaces\n- Search that understands intent\n\n" +
			"## The road ahead\n\n" +
			"Expect AI-assisted accessibility fixes, low-code tooling and automated threat detection.\n",
		Status:   models.StatusPublished,
		Author:   2,
		Category: catAI,
		Tags:     []int{tagAI, tagML, tagJavaScript},
	},
	{
		Title:      "Building Scalable Node.js Applications",
		Slug:       "building-scalable-nodejs-applications",
		Excerpt:    "Learn best practices for building scalable Node.js applications with proper architecture, caching, and optimization.",
		CoverImage: "https://images.unsplash.com/photo-1558494949-ef010cbdcc31?w=800&h=400&fit=crop",
		Content: "# Building Scalable Node.js Applications\n\n" +
			"## Architecture\n\n" +
			"Split the system into services with clear boundaries and communicate through events.\n\n" +
			"## Performance\n\n" +
			"- Pool database connections\n- Cache hot reads\n- Run one process per core behind a load balancer\n\n" +
			"## Operations\n\n" +
			"Centralize error handling, expose a health endpoint and rate limit public routes.\n",
		Status:   models.StatusPublished,
		Author:   0,
		Category: catTechnology,
		Tags:     []int{tagNode, tagJavaScript, tagPerformance},
	},
	{
		Title:      "TypeScript Best Practices for Large Applications",
		Slug:       "typescript-best-practices",
		Excerpt:    "Master TypeScript best practices for large applications including advanced types, error handling, and performance.",
		CoverImage: "https://images.unsplash.com/photo-1516321318423-f06f85e504b3?w=800&h=400&fit=crop",
		Content: "# TypeScript Best Practices\n\n" +
			"Turn on `strict` in tsconfig.json and keep it on.\n\n" +
			"```typescript\ntype ArticlePreview = Pick<Article, 'id' | 'title' | 'excerpt'>;\n```\n\n" +
			"Model results as discriminated unions and prefer `import type` for type-only imports.\n",
		Status:   models.StatusDraft,
		Author:   1,
		Category: catTechnology,
		Tags:     []int{tagTypeScript, tagJavaScript},
	},
}

// Each published article gets two top-level comments and a reply to the first.
var demoComments = []struct {
	Content string
	Author  int
	IsReply bool
}{
	{"Great article! Very informative and well written.", 1, false},
	{"Thanks for sharing this. I learned something new today!", 2, false},
	{"I agree! The examples are particularly helpful.", 0, true},
}
