package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ecosystem_mapper/pkg/core/store"
	"ecosystem_mapper/pkg/core/taxonomy"
	"ecosystem_mapper/pkg/models"
)

type fakeRepoSource struct {
	SearchFunc func(ctx context.Context, keyword string, monthsBack, maxResults, minStars int) ([]models.RepositoryRecord, error)
}

func (f *fakeRepoSource) SearchRepositories(ctx context.Context, keyword string, monthsBack, maxResults, minStars int) ([]models.RepositoryRecord, error) {
	return f.SearchFunc(ctx, keyword, monthsBack, maxResults, minStars)
}

type fakeWebSource struct {
	CombineFunc func(ctx context.Context, keyword string) (*models.WebResultSet, error)
}

func (f *fakeWebSource) CombineSearches(ctx context.Context, keyword string) (*models.WebResultSet, error) {
	return f.CombineFunc(ctx, keyword)
}

type fakeStore struct {
	SaveFunc func(ctx context.Context, keyword string, result models.Result) error
	Saved    []models.Result
}

func (f *fakeStore) Save(ctx context.Context, keyword string, result models.Result) error {
	f.Saved = append(f.Saved, result)
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, keyword, result)
	}
	return nil
}

type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (p *scriptedProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i < len(p.responses) {
		return p.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

const taxonomyResponse = `{
  "ecosystem_name": "vector databases",
  "overview": "Storage engines specialized for similarity search.",
  "categories": [
    {
      "name": "Embedded Engines",
      "description": "Libraries linked into the application process.",
      "subcategories": ["In-memory", "On-disk"],
      "examples": [
        {"name": "faiss", "description": "Similarity search library from Meta.", "url": "https://github.com/facebookresearch/faiss", "type": "library"}
      ],
      "relationships": ["Often wrapped by managed services"]
    }
  ],
  "key_trends": ["Hybrid sparse-dense retrieval"],
  "emerging_areas": ["On-device search"]
}`

const insightsResponse = `{
  "maturity_level": "growing",
  "maturity_analysis": "Rapid entry of new vendors.",
  "category_differentiators": "Deployment model and index type.",
  "ecosystem_gaps": ["Standard benchmark suites"],
  "integration_opportunities": ["Streaming ingestion pipelines"]
}`

func healthySources() (*fakeRepoSource, *fakeWebSource) {
	github := &fakeRepoSource{
		SearchFunc: func(ctx context.Context, keyword string, monthsBack, maxResults, minStars int) ([]models.RepositoryRecord, error) {
			return []models.RepositoryRecord{
				{Name: "faiss", FullName: "facebookresearch/faiss", Stars: 30000, Language: "C++"},
			}, nil
		},
	}
	web := &fakeWebSource{
		CombineFunc: func(ctx context.Context, keyword string) (*models.WebResultSet, error) {
			set := models.NewWebResultSet()
			set.Add("general", models.WebResult{Title: "Vector DB overview", URL: "https://example.com", Content: "intro"})
			return set, nil
		},
	}
	return github, web
}

func newTestMapper(t *testing.T, provider *scriptedProvider, github *fakeRepoSource, web *fakeWebSource, repo TaxonomyStore) (*Mapper, string) {
	t.Helper()
	dir := t.TempDir()
	writer, err := store.NewOutputWriter(dir)
	if err != nil {
		t.Fatalf("NewOutputWriter failed: %v", err)
	}
	return NewMapper(github, web, taxonomy.NewAnalyzer(provider), writer, repo), dir
}

func TestMapEcosystem_FullRunWritesOutputs(t *testing.T) {
	github, web := healthySources()
	provider := &scriptedProvider{responses: []string{taxonomyResponse, insightsResponse}}
	repo := &fakeStore{}
	mapper, dir := newTestMapper(t, provider, github, web, repo)

	result, err := mapper.MapEcosystem(context.Background(), Options{
		Keyword: "vector databases",
		Enrich:  true,
		SaveRaw: true,
	})
	if err != nil {
		t.Fatalf("MapEcosystem failed: %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected success, got failure: %+v", result.Failure)
	}
	if result.Taxonomy.Insights == nil {
		t.Error("expected insights after enrichment")
	}
	if provider.calls != 2 {
		t.Errorf("expected 2 backend calls, got %d", provider.calls)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading output dir: %v", err)
	}
	var haveRaw, haveTaxonomy, haveLatest, haveReport bool
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.Contains(name, "_raw_data_"):
			haveRaw = true
		case name == "vector_databases_taxonomy_latest.json":
			haveLatest = true
		case strings.Contains(name, "_taxonomy_"):
			haveTaxonomy = true
		case name == "vector_databases_report_latest.html":
			haveReport = true
		}
	}
	if !haveRaw || !haveTaxonomy || !haveLatest || !haveReport {
		t.Errorf("missing outputs: raw=%v taxonomy=%v latest=%v report=%v", haveRaw, haveTaxonomy, haveLatest, haveReport)
	}

	if len(repo.Saved) != 1 || !repo.Saved[0].OK() {
		t.Errorf("expected one successful result mirrored to store, got %+v", repo.Saved)
	}
}

func TestMapEcosystem_CollectorFailuresDegrade(t *testing.T) {
	github := &fakeRepoSource{
		SearchFunc: func(ctx context.Context, keyword string, monthsBack, maxResults, minStars int) ([]models.RepositoryRecord, error) {
			return nil, errors.New("github unreachable")
		},
	}
	web := &fakeWebSource{
		CombineFunc: func(ctx context.Context, keyword string) (*models.WebResultSet, error) {
			return nil, errors.New("tavily unreachable")
		},
	}
	provider := &scriptedProvider{responses: []string{taxonomyResponse}}
	mapper, _ := newTestMapper(t, provider, github, web, nil)

	result, err := mapper.MapEcosystem(context.Background(), Options{Keyword: "vector databases"})
	if err != nil {
		t.Fatalf("MapEcosystem failed: %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected analysis to run on empty inputs, got %+v", result.Failure)
	}
}

func TestMapEcosystem_EnrichmentFailureKeepsBaseTaxonomy(t *testing.T) {
	github, web := healthySources()
	provider := &scriptedProvider{
		responses: []string{taxonomyResponse, ""},
		errs:      []error{nil, errors.New("enrichment backend down")},
	}
	mapper, _ := newTestMapper(t, provider, github, web, nil)

	result, err := mapper.MapEcosystem(context.Background(), Options{Keyword: "vector databases", Enrich: true})
	if err != nil {
		t.Fatalf("MapEcosystem failed: %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected base taxonomy to survive enrichment failure, got %+v", result.Failure)
	}
	if result.Taxonomy.Insights != nil {
		t.Error("expected no insights when enrichment fails")
	}
}

func TestMapEcosystem_ParseFailurePersisted(t *testing.T) {
	github, web := healthySources()
	provider := &scriptedProvider{responses: []string{"[1, 2, 3]"}}
	repo := &fakeStore{}
	mapper, dir := newTestMapper(t, provider, github, web, repo)

	result, err := mapper.MapEcosystem(context.Background(), Options{Keyword: "vector databases"})
	if err != nil {
		t.Fatalf("MapEcosystem failed: %v", err)
	}
	if result.OK() {
		t.Fatal("expected parse failure result")
	}
	if result.Failure.Message != taxonomy.ParseErrorMessage {
		t.Errorf("unexpected failure message %q", result.Failure.Message)
	}

	data, err := os.ReadFile(filepath.Join(dir, "vector_databases_taxonomy_latest.json"))
	if err != nil {
		t.Fatalf("reading persisted failure: %v", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("persisted failure is not valid JSON: %v", err)
	}
	if doc["error"] != taxonomy.ParseErrorMessage {
		t.Errorf("expected error document on disk, got %v", doc)
	}
	if doc["raw_response"] != "[1, 2, 3]" {
		t.Errorf("expected raw response preserved, got %v", doc["raw_response"])
	}

	if len(repo.Saved) != 1 || repo.Saved[0].OK() {
		t.Errorf("expected failure result mirrored to store, got %+v", repo.Saved)
	}
}

func TestMapEcosystem_StoreFailureIsNonFatal(t *testing.T) {
	github, web := healthySources()
	provider := &scriptedProvider{responses: []string{taxonomyResponse}}
	repo := &fakeStore{
		SaveFunc: func(ctx context.Context, keyword string, result models.Result) error {
			return errors.New("database unavailable")
		},
	}
	mapper, _ := newTestMapper(t, provider, github, web, repo)

	result, err := mapper.MapEcosystem(context.Background(), Options{Keyword: "vector databases"})
	if err != nil {
		t.Fatalf("expected store failure to be a warning only, got %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected success, got %+v", result.Failure)
	}
}
