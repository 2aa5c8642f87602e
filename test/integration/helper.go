package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// These tests talk to a running server. Point BOOKSHELF_IT_BASE_URL at it
// (e.g. http://localhost:8080/api/v1). When the server has auth enabled,
// BOOKSHELF_IT_TOKEN must hold an access token minted by cmd/token.
const timeout = 10 * time.Second

type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Meta    *PageMeta       `json:"meta"`
	Data    json.RawMessage `json:"data"`
}

type PageMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type ReviewData struct {
	Email   string `json:"email"`
	Comment string `json:"comment"`
}

type BookData struct {
	ID               uint         `json:"id"`
	Title            string       `json:"title"`
	Author           string       `json:"author"`
	Genre            string       `json:"genre"`
	PublicationDate  string       `json:"publication_date"`
	Reviews          []ReviewData `json:"reviews"`
	Wishlist         []string     `json:"wishlist"`
	ReadSoon         []string     `json:"read_soon"`
	CurrentlyReading []string     `json:"currently_reading"`
	Finished         []string     `json:"finished"`
}

type client struct {
	t       *testing.T
	baseURL string
	token   string
	http    *http.Client
}

// newClient skips the test unless an integration server is configured.
func newClient(t *testing.T) *client {
	t.Helper()
	baseURL := os.Getenv("BOOKSHELF_IT_BASE_URL")
	if baseURL == "" {
		t.Skip("BOOKSHELF_IT_BASE_URL not set")
	}
	return &client{
		t:       t,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   os.Getenv("BOOKSHELF_IT_TOKEN"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *client) do(method, path string, body interface{}) (int, *Response) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	var result Response
	require.NoError(c.t, json.Unmarshal(raw, &result), "decode response: %s", raw)
	return resp.StatusCode, &result
}

func (c *client) book(resp *Response) BookData {
	c.t.Helper()
	var b BookData
	require.NoError(c.t, json.Unmarshal(resp.Data, &b))
	return b
}

// createBook adds a book with a unique title and removes it when the test
// ends.
func (c *client) createBook(genre string) BookData {
	c.t.Helper()
	status, resp := c.do(http.MethodPost, "/books", map[string]interface{}{
		"title":            uniqueTitle(c.t),
		"author":           "Integration Author",
		"genre":            genre,
		"publication_date": "2001-01-01",
	})
	require.Equal(c.t, http.StatusCreated, status, resp.Message)
	b := c.book(resp)
	c.t.Cleanup(func() {
		c.do(http.MethodDelete, fmt.Sprintf("/books/%d", b.ID), nil)
	})
	return b
}

func uniqueTitle(t *testing.T) string {
	return fmt.Sprintf("%s %d", t.Name(), time.Now().UnixNano())
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}
