package main

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

//go:embed templates
var templatesFS embed.FS

const pageSize = 10

var pageNames = []string{"articles.html", "article.html", "new_article.html", "login.html", "about.html", "error.html"}

type server struct {
	api   *apiClient
	pages map[string]*template.Template
}

func newServer(apiBase string) (*server, error) {
	funcs := template.FuncMap{
		"date": formatDate,
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return &server{
		api:   &apiClient{base: apiBase, hc: &http.Client{Timeout: 10 * time.Second}},
		pages: pages,
	}, nil
}

// formatDate accepts time.Time or *time.Time; nil and zero render as "".
func formatDate(v any) string {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return ""
		}
		t = *x
	}
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func (s *server) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["LoggedIn"] = tokenFrom(r) != ""
	if u := currentUser(r); u != nil {
		data["User"] = u
	}

	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("template execute", "page", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.render(w, r, status, "error.html", map[string]any{"Title": http.StatusText(status), "Status": status, "Message": msg})
}

// renderAPIError shows a failed API response, or the transport error.
func (s *server) renderAPIError(w http.ResponseWriter, r *http.Request, res *apiResponse, err error) {
	if err != nil {
		s.renderError(w, r, http.StatusBadGateway, "Cannot reach API: "+err.Error())
		return
	}
	s.renderError(w, r, res.Status, res.errorMessage())
}

// ==========================
// Articles
// ==========================

func (s *server) home(w http.ResponseWriter, r *http.Request) {
	in := r.URL.Query()
	page, _ := strconv.Atoi(in.Get("page"))
	if page < 1 {
		page = 1
	}
	search := strings.TrimSpace(in.Get("search"))
	categoryID := in.Get("category")
	tagSlug := in.Get("tag")

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(pageSize))
	if search != "" {
		q.Set("search", search)
	}
	if categoryID != "" {
		q.Set("categoryId", categoryID)
	}
	if tagSlug != "" {
		q.Set("tag", tagSlug)
	}

	res, err := s.api.call(r.Context(), http.MethodGet, "/articles?"+q.Encode(), "", nil)
	if err != nil || !res.ok() {
		s.renderAPIError(w, r, res, err)
		return
	}
	var articles []article
	if err := res.decode(&articles); err != nil {
		s.renderError(w, r, http.StatusBadGateway, "Invalid articles response")
		return
	}

	data := map[string]any{
		"Title":    "Articles",
		"Articles": articles,
		"Search":   search,
		"Category": categoryID,
		"Tag":      tagSlug,
	}
	if m := res.Meta; m != nil {
		data["Meta"] = m
		if m.HasPrevious {
			data["PrevURL"] = pageURL(in, m.CurrentPage-1)
		}
		if m.HasNext {
			data["NextURL"] = pageURL(in, m.CurrentPage+1)
		}
	}

	// Filters are optional; a failed category lookup only hides the dropdown.
	if cres, err := s.api.call(r.Context(), http.MethodGet, "/categories", "", nil); err == nil && cres.ok() {
		var categories []category
		if cres.decode(&categories) == nil {
			data["Categories"] = categories
		}
	}

	s.render(w, r, http.StatusOK, "articles.html", data)
}

func pageURL(q url.Values, page int) string {
	out := url.Values{}
	for k, v := range q {
		out[k] = v
	}
	out.Set("page", strconv.Itoa(page))
	return "/?" + out.Encode()
}

func articleURL(slug string) string {
	if slug == "" {
		return "/"
	}
	return "/articles/" + url.PathEscape(slug)
}

func (s *server) articleDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	res, err := s.api.call(r.Context(), http.MethodGet, "/articles/"+url.PathEscape(slug), "", nil)
	if err != nil || !res.ok() {
		s.renderAPIError(w, r, res, err)
		return
	}
	var a article
	if err := res.decode(&a); err != nil {
		s.renderError(w, r, http.StatusBadGateway, "Invalid article response")
		return
	}

	data := map[string]any{
		"Title":   a.Title,
		"Article": a,
		"Error":   r.URL.Query().Get("error"),
	}

	cres, err := s.api.call(r.Context(), http.MethodGet, "/articles/"+url.PathEscape(slug)+"/comments", "", nil)
	if err == nil && cres.ok() {
		var comments []*comment
		if cres.decode(&comments) == nil {
			data["Comments"] = comments
			data["CommentCount"] = cres.Count
		}
	}

	s.render(w, r, http.StatusOK, "article.html", data)
}

func (s *server) likeArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		s.renderError(w, r, http.StatusBadRequest, "Invalid article id")
		return
	}
	res, err := s.api.call(r.Context(), http.MethodPost, "/articles/"+strconv.Itoa(id)+"/like", "", nil)
	if err != nil || !res.ok() {
		s.renderAPIError(w, r, res, err)
		return
	}
	http.Redirect(w, r, articleURL(r.FormValue("slug")), http.StatusSeeOther)
}

func (s *server) createComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		s.renderError(w, r, http.StatusBadRequest, "Invalid article id")
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "bad form")
		return
	}
	back := articleURL(r.FormValue("slug"))

	payload := map[string]any{"content": strings.TrimSpace(r.FormValue("content"))}
	if p, err := strconv.Atoi(r.FormValue("parentId")); err == nil && p > 0 {
		payload["parentId"] = p
	}

	res, err := s.api.call(r.Context(), http.MethodPost, "/articles/"+strconv.Itoa(id)+"/comments", tokenFrom(r), payload)
	if err != nil {
		s.renderError(w, r, http.StatusBadGateway, "Cannot reach API: "+err.Error())
		return
	}
	switch {
	case res.Status == http.StatusUnauthorized:
		clearAuthAndRedirectToLogin(w, r)
	case !res.ok():
		http.Redirect(w, r, back+"?error="+url.QueryEscape(res.errorMessage()), http.StatusSeeOther)
	default:
		http.Redirect(w, r, back+"#comments", http.StatusSeeOther)
	}
}

// ==========================
// Write
// ==========================

// formLists loads categories and tags for the article form. Failures leave them empty.
func (s *server) formLists(r *http.Request, data map[string]any) {
	var categories []category
	if res, err := s.api.call(r.Context(), http.MethodGet, "/categories", "", nil); err == nil && res.ok() {
		_ = res.decode(&categories)
	}
	var tags []tag
	if res, err := s.api.call(r.Context(), http.MethodGet, "/tags", "", nil); err == nil && res.ok() {
		_ = res.decode(&tags)
	}
	data["Categories"] = categories
	data["Tags"] = tags
}

type articleForm struct {
	Title      string
	Content    string
	Excerpt    string
	Status     string
	CategoryID int
	TagIDs     map[int]bool
}

func (s *server) newArticleForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "New article",
		"Form":  articleForm{Status: "DRAFT", TagIDs: map[int]bool{}},
	}
	s.formLists(r, data)
	s.render(w, r, http.StatusOK, "new_article.html", data)
}

func (s *server) createArticle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "bad form")
		return
	}
	f := articleForm{
		Title:   strings.TrimSpace(r.FormValue("title")),
		Content: strings.TrimSpace(r.FormValue("content")),
		Excerpt: strings.TrimSpace(r.FormValue("excerpt")),
		Status:  r.FormValue("status"),
		TagIDs:  map[int]bool{},
	}
	f.CategoryID, _ = strconv.Atoi(r.FormValue("categoryId"))

	payload := map[string]any{"title": f.Title, "content": f.Content}
	if f.Excerpt != "" {
		payload["excerpt"] = f.Excerpt
	}
	if f.Status != "" {
		payload["status"] = f.Status
	}
	if f.CategoryID > 0 {
		payload["categoryId"] = f.CategoryID
	}
	var tagIDs []int
	for _, v := range r.Form["tagIds"] {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			tagIDs = append(tagIDs, id)
			f.TagIDs[id] = true
		}
	}
	if len(tagIDs) > 0 {
		payload["tagIds"] = tagIDs
	}

	res, err := s.api.call(r.Context(), http.MethodPost, "/articles", tokenFrom(r), payload)
	if err != nil {
		s.renderError(w, r, http.StatusBadGateway, "Cannot reach API: "+err.Error())
		return
	}
	if res.Status == http.StatusUnauthorized {
		clearAuthAndRedirectToLogin(w, r)
		return
	}
	if !res.ok() {
		data := map[string]any{"Title": "New article", "Form": f, "Error": res.errorMessage()}
		s.formLists(r, data)
		s.render(w, r, res.Status, "new_article.html", data)
		return
	}

	var a article
	_ = res.decode(&a)
	http.Redirect(w, r, articleURL(a.Slug), http.StatusSeeOther)
}

// ==========================
// Auth
// ==========================

func (s *server) loginForm(w http.ResponseWriter, r *http.Request) {
	if tokenFrom(r) != "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", map[string]any{
		"Title": "Log in",
		"Email": "",
		"Next":  safeNext(r.URL.Query().Get("next")),
	})
}

func (s *server) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "bad form")
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	next := safeNext(r.FormValue("next"))
	fail := func(status int, msg string) {
		s.render(w, r, status, "login.html", map[string]any{
			"Title": "Log in", "Error": msg, "Email": email, "Next": next,
		})
	}

	res, err := s.api.call(r.Context(), http.MethodPost, "/auth/login", "",
		map[string]string{"email": email, "password": r.FormValue("password")})
	if err != nil {
		fail(http.StatusBadGateway, "Cannot reach API: "+err.Error())
		return
	}
	if !res.ok() {
		fail(res.Status, res.errorMessage())
		return
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := res.decode(&out); err != nil || out.Token == "" {
		fail(http.StatusBadGateway, "Invalid login response")
		return
	}

	setAuthCookie(w, out.Token)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	if token := tokenFrom(r); token != "" {
		if _, err := s.api.call(r.Context(), http.MethodPost, "/auth/logout", token, nil); err != nil {
			slog.Warn("api logout failed", "error", err)
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *server) about(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about.html", map[string]any{"Title": "About"})
}
