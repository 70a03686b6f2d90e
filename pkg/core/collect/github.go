// Package collect implements the data collectors feeding the taxonomy
// pipeline: GitHub repository search and Tavily web search.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"time"

	"ecosystem_mapper/pkg/models"
)

const (
	githubAPIBaseURL = "https://api.github.com"
	githubPageSize   = 100
)

// GitHubCollector searches GitHub for repositories matching a keyword
// within a recent creation window.
type GitHubCollector struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewGitHubCollector reads GITHUB_PAT from the environment and refuses to
// initialize without it (unauthenticated search rate limits are unusable).
func NewGitHubCollector() (*GitHubCollector, error) {
	token := os.Getenv("GITHUB_PAT")
	if token == "" {
		return nil, fmt.Errorf("GITHUB_PAT_MISSING: GITHUB_PAT environment variable not set")
	}
	return &GitHubCollector{
		token:   token,
		baseURL: githubAPIBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *GitHubCollector) SetBaseURL(url string) { c.baseURL = url }

// githubSearchResponse mirrors the GitHub search API response shape.
type githubSearchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []githubRepo `json:"items"`
}

type githubRepo struct {
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Description     string   `json:"description"`
	HTMLURL         string   `json:"html_url"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	Language        string   `json:"language"`
	Topics          []string `json:"topics"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	Homepage        string   `json:"homepage"`
	License         *struct {
		Name string `json:"name"`
	} `json:"license"`
}

// SearchRepositories returns repositories matching the keyword, created
// in the last monthsBack months, sorted by stars descending, capped at
// maxResults. minStars of 0 means no star filter.
func (c *GitHubCollector) SearchRepositories(ctx context.Context, keyword string, monthsBack, maxResults, minStars int) ([]models.RepositoryRecord, error) {
	if monthsBack <= 0 {
		monthsBack = 3
	}
	startDate := time.Now().AddDate(0, 0, -monthsBack*30).Format("2006-01-02")

	query := fmt.Sprintf("%s created:>=%s", keyword, startDate)
	if minStars > 0 {
		query = fmt.Sprintf("%s stars:>=%d", query, minStars)
	}

	fmt.Printf("Searching GitHub for: %s\n", query)

	var results []models.RepositoryRecord
	for page := 1; len(results) < maxResults; page++ {
		perPage := githubPageSize
		if remaining := maxResults - len(results); remaining < perPage {
			perPage = remaining
		}

		resp, err := c.searchPage(ctx, query, page, perPage)
		if err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			record := models.RepositoryRecord{
				Name:        item.Name,
				FullName:    item.FullName,
				Description: item.Description,
				URL:         item.HTMLURL,
				Stars:       item.StargazersCount,
				Forks:       item.ForksCount,
				Language:    item.Language,
				Topics:      item.Topics,
				CreatedAt:   item.CreatedAt,
				UpdatedAt:   item.UpdatedAt,
				Homepage:    item.Homepage,
			}
			if item.License != nil {
				record.License = item.License.Name
			}
			results = append(results, record)
			if len(results) >= maxResults {
				break
			}
		}

		if len(resp.Items) < perPage {
			break // last page
		}
	}

	fmt.Printf("Total repositories collected: %d\n", len(results))
	return results, nil
}

func (c *GitHubCollector) searchPage(ctx context.Context, query string, page, perPage int) (*githubSearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", fmt.Sprintf("%d", perPage))
	params.Set("page", fmt.Sprintf("%d", page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/repositories?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("GITHUB_REQ_CREATE_ERROR: %v", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GITHUB_API_CALL_ERROR: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("GITHUB_READ_BODY_ERROR: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GITHUB_API_ERROR: status=%d body=%s", res.StatusCode, string(body))
	}

	var parsed githubSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("GITHUB_UNMARSHAL_ERROR: %v", err)
	}
	return &parsed, nil
}

// TopicCount pairs a repository topic with its frequency.
type TopicCount struct {
	Topic string
	Count int
}

// TrendingTopics tallies topic frequency across collected repositories,
// most frequent first. Ties break alphabetically for stable output.
func TrendingTopics(repos []models.RepositoryRecord) []TopicCount {
	counts := make(map[string]int)
	for _, repo := range repos {
		for _, topic := range repo.Topics {
			counts[topic]++
		}
	}

	out := make([]TopicCount, 0, len(counts))
	for topic, count := range counts {
		out = append(out, TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}
