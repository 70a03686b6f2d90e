package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"ecosystem_mapper/pkg/models"
)

func githubServer(t *testing.T, total int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing auth header, got %q", got)
		}
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("per_page"))
		if page == 0 {
			page = 1
		}

		start := (page-1)*perPage + 1
		items := make([]map[string]interface{}, 0, perPage)
		for i := start; i <= total && len(items) < perPage; i++ {
			items = append(items, map[string]interface{}{
				"name":             fmt.Sprintf("repo-%d", i),
				"full_name":        fmt.Sprintf("org/repo-%d", i),
				"description":      "desc",
				"html_url":         fmt.Sprintf("https://github.com/org/repo-%d", i),
				"stargazers_count": 1000 - i,
				"forks_count":      5,
				"language":         "Go",
				"topics":           []string{"ai"},
				"created_at":       "2026-06-01T00:00:00Z",
				"updated_at":       "2026-08-01T00:00:00Z",
				"homepage":         "",
				"license":          map[string]string{"name": "MIT License"},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"total_count": total,
			"items":       items,
		})
	}))
}

func newTestCollector(t *testing.T, baseURL string) *GitHubCollector {
	t.Helper()
	t.Setenv("GITHUB_PAT", "test-token")
	c, err := NewGitHubCollector()
	if err != nil {
		t.Fatalf("NewGitHubCollector failed: %v", err)
	}
	c.SetBaseURL(baseURL)
	return c
}

func TestNewGitHubCollector_RequiresToken(t *testing.T) {
	t.Setenv("GITHUB_PAT", "")
	if _, err := NewGitHubCollector(); err == nil {
		t.Fatal("expected configuration error without GITHUB_PAT")
	}
}

func TestSearchRepositories_CapsAtMaxResults(t *testing.T) {
	server := githubServer(t, 40)
	defer server.Close()

	c := newTestCollector(t, server.URL)
	repos, err := c.SearchRepositories(context.Background(), "agentic AI", 3, 25, 0)
	if err != nil {
		t.Fatalf("SearchRepositories failed: %v", err)
	}
	if len(repos) != 25 {
		t.Fatalf("expected 25 repos, got %d", len(repos))
	}
	if repos[0].FullName != "org/repo-1" || repos[24].FullName != "org/repo-25" {
		t.Errorf("results out of order: first=%s last=%s", repos[0].FullName, repos[24].FullName)
	}
	if repos[0].License != "MIT License" {
		t.Errorf("license name not mapped: %q", repos[0].License)
	}
	if repos[0].Stars != 999 {
		t.Errorf("stars not mapped: %d", repos[0].Stars)
	}
}

func TestSearchRepositories_ShortResultSet(t *testing.T) {
	server := githubServer(t, 7)
	defer server.Close()

	c := newTestCollector(t, server.URL)
	repos, err := c.SearchRepositories(context.Background(), "obscure topic", 3, 50, 0)
	if err != nil {
		t.Fatalf("SearchRepositories failed: %v", err)
	}
	if len(repos) != 7 {
		t.Errorf("expected all 7 repos, got %d", len(repos))
	}
}

func TestSearchRepositories_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "rate limited"}`, http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestCollector(t, server.URL)
	if _, err := c.SearchRepositories(context.Background(), "x", 3, 10, 0); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestTrendingTopics(t *testing.T) {
	topics := TrendingTopics([]models.RepositoryRecord{
		{Topics: []string{"ai", "agents"}},
		{Topics: []string{"ai", "llm"}},
		{Topics: []string{"ai"}},
	})
	if topics[0].Topic != "ai" || topics[0].Count != 3 {
		t.Errorf("expected ai first with count 3, got %+v", topics[0])
	}
	if len(topics) != 3 {
		t.Errorf("expected 3 distinct topics, got %d", len(topics))
	}
}
