package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ecosystem_mapper/pkg/models"
)

const (
	tavilyBaseURL = "https://api.tavily.com"

	// maxScrapeBody bounds how much of a page the content fallback reads.
	maxScrapeBody = 256 * 1024
)

// Domains prioritized when searching for tools and projects.
var toolsIncludeDomains = []string{
	"github.com",
	"gitlab.com",
	"pypi.org",
	"npmjs.com",
	"arxiv.org",
	"huggingface.co",
}

// WebSearcher performs web searches through the Tavily API and assembles
// them into a categorized result set.
type WebSearcher struct {
	apiKey  string
	baseURL string
	client  *http.Client

	// ScrapeFallback controls whether results with empty content get a
	// best-effort page summary scraped from the result URL.
	ScrapeFallback bool
}

// NewWebSearcher reads TAVILY_API_KEY from the environment and refuses to
// initialize without it.
func NewWebSearcher() (*WebSearcher, error) {
	apiKey := os.Getenv("TAVILY_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("TAVILY_API_KEY_MISSING: TAVILY_API_KEY environment variable not set")
	}
	return &WebSearcher{
		apiKey:  apiKey,
		baseURL: tavilyBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (s *WebSearcher) SetBaseURL(url string) { s.baseURL = url }

type tavilyRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

// Search queries Tavily and returns results in relevance order.
func (s *WebSearcher) Search(ctx context.Context, query string, maxResults int, includeDomains []string) ([]models.WebResult, error) {
	fmt.Printf("Searching web for: %s\n", query)

	reqBody := tavilyRequest{
		APIKey:         s.apiKey,
		Query:          query,
		SearchDepth:    "advanced",
		MaxResults:     maxResults,
		IncludeDomains: includeDomains,
	}
	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("TAVILY_MARSHAL_ERROR: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return nil, fmt.Errorf("TAVILY_REQ_CREATE_ERROR: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TAVILY_API_CALL_ERROR: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("TAVILY_READ_BODY_ERROR: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TAVILY_API_ERROR: status=%d body=%s", res.StatusCode, string(body))
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("TAVILY_UNMARSHAL_ERROR: %v", err)
	}

	results := make([]models.WebResult, 0, len(parsed.Results))
	for _, item := range parsed.Results {
		result := models.WebResult{
			Title:         item.Title,
			URL:           item.URL,
			Content:       item.Content,
			Score:         item.Score,
			PublishedDate: item.PublishedDate,
		}
		if result.Content == "" && s.ScrapeFallback {
			result.Content = s.pageSummary(ctx, result.URL)
		}
		results = append(results, result)
	}

	fmt.Printf("Found %d web results\n", len(results))
	return results, nil
}

// SearchToolsAndProjects searches specifically for tools, libraries, and
// projects, prioritizing technical domains.
func (s *WebSearcher) SearchToolsAndProjects(ctx context.Context, keyword string, maxResults int) ([]models.WebResult, error) {
	return s.Search(ctx, keyword+" tools libraries frameworks projects", maxResults, toolsIncludeDomains)
}

// SearchEcosystemOverview searches for landscape analyses and market maps.
func (s *WebSearcher) SearchEcosystemOverview(ctx context.Context, keyword string, maxResults int) ([]models.WebResult, error) {
	return s.Search(ctx, keyword+" ecosystem landscape market map overview", maxResults, nil)
}

// CombineSearches runs the three search variants and combines them into a
// categorized result set. A failed variant degrades to an empty category
// so one search outage does not sink the whole collection stage.
func (s *WebSearcher) CombineSearches(ctx context.Context, keyword string) (*models.WebResultSet, error) {
	set := models.NewWebResultSet()

	searches := []struct {
		category string
		run      func() ([]models.WebResult, error)
	}{
		{"general", func() ([]models.WebResult, error) { return s.Search(ctx, keyword, 15, nil) }},
		{"tools", func() ([]models.WebResult, error) { return s.SearchToolsAndProjects(ctx, keyword, 15) }},
		{"ecosystem", func() ([]models.WebResult, error) { return s.SearchEcosystemOverview(ctx, keyword, 10) }},
	}

	for _, search := range searches {
		results, err := search.run()
		if err != nil {
			fmt.Printf("Web search error (%s): %v\n", search.category, err)
			results = nil
		}
		set.Add(search.category, results...)
	}

	fmt.Printf("\nTotal web results collected: %d\n", set.Len())
	return set, nil
}

// pageSummary fetches a result page and extracts its title and meta
// description. Best-effort: any failure returns an empty string.
func (s *WebSearcher) pageSummary(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}

	res, err := s.client.Do(req)
	if err != nil {
		return ""
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, maxScrapeBody))
	if err != nil {
		return ""
	}

	var parts []string
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}
	for _, selector := range []string{
		`meta[name="description"]`,
		`meta[property="og:description"]`,
	} {
		if desc, ok := doc.Find(selector).First().Attr("content"); ok {
			if desc = strings.TrimSpace(desc); desc != "" {
				parts = append(parts, desc)
				break
			}
		}
	}
	return strings.Join(parts, " - ")
}
