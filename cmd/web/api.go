package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

type apiClient struct {
	base string
	hc   *http.Client
}

type pageMeta struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNext      bool `json:"hasNext"`
	HasPrevious  bool `json:"hasPrevious"`
}

// apiResponse is the decoded response envelope plus the HTTP status.
type apiResponse struct {
	Status  int               `json:"-"`
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Count   int               `json:"count"`
	Meta    *pageMeta         `json:"meta"`
	Fields  map[string]string `json:"fields"`
}

// call sends payload as JSON when non-nil. Non-2xx statuses are not errors;
// callers inspect Status.
func (c *apiClient) call(ctx context.Context, method, path, token string, payload any) (*apiResponse, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	res := &apiResponse{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, fmt.Errorf("API returned %d with a non-JSON body", resp.StatusCode)
	}
	res.Status = resp.StatusCode
	return res, nil
}

func (res *apiResponse) ok() bool {
	return res.Status >= 200 && res.Status < 300
}

func (res *apiResponse) decode(out any) error {
	if len(res.Data) == 0 {
		return nil
	}
	return json.Unmarshal(res.Data, out)
}

// errorMessage is the API error text followed by any field errors.
func (res *apiResponse) errorMessage() string {
	msg := res.Error
	if msg == "" {
		msg = http.StatusText(res.Status)
	}
	if len(res.Fields) == 0 {
		return msg
	}
	keys := make([]string, 0, len(res.Fields))
	for k := range res.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + res.Fields[k]
	}
	return msg + ": " + strings.Join(parts, "; ")
}

type author struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (a *author) DisplayName() string {
	if a == nil {
		return "unknown"
	}
	if name := strings.TrimSpace(a.FirstName + " " + a.LastName); name != "" {
		return name
	}
	return a.Username
}

type category struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

type tag struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Color *string `json:"color"`
}

type article struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt"`
	CoverImage  *string    `json:"coverImage"`
	Status      string     `json:"status"`
	Views       int        `json:"views"`
	Likes       int        `json:"likes"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	Author      *author    `json:"author"`
	Category    *category  `json:"category"`
	Tags        []tag      `json:"tags"`
}

type comment struct {
	ID        int        `json:"id"`
	Content   string     `json:"content"`
	Likes     int        `json:"likes"`
	CreatedAt time.Time  `json:"createdAt"`
	Author    *author    `json:"author"`
	Replies   []*comment `json:"replies"`
}
