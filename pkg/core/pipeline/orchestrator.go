// Package pipeline orchestrates the end-to-end ecosystem mapping flow:
// collection -> raw persistence -> taxonomy analysis -> enrichment ->
// output. All stages run strictly sequentially; a caller wanting a
// deadline wraps the context.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"ecosystem_mapper/pkg/core/report"
	"ecosystem_mapper/pkg/core/store"
	"ecosystem_mapper/pkg/core/taxonomy"
	"ecosystem_mapper/pkg/models"
)

// RepositorySource yields repository records for a keyword, sorted by
// stars descending and capped at maxResults.
type RepositorySource interface {
	SearchRepositories(ctx context.Context, keyword string, monthsBack, maxResults, minStars int) ([]models.RepositoryRecord, error)
}

// WebSource yields categorized web search results for a keyword.
type WebSource interface {
	CombineSearches(ctx context.Context, keyword string) (*models.WebResultSet, error)
}

// TaxonomyStore mirrors run results into external storage (e.g.
// Postgres). Optional: a nil store is skipped.
type TaxonomyStore interface {
	Save(ctx context.Context, keyword string, result models.Result) error
}

// Options configures one mapping run.
type Options struct {
	Keyword    string
	MaxRepos   int  // default 50
	MonthsBack int  // default 3
	MinStars   int  // 0 = no star filter
	Enrich     bool // run the insight pass on success
	SaveRaw    bool // persist the collected source records
}

// Mapper wires the collectors, the analyzer, and the sinks together.
type Mapper struct {
	github   RepositorySource
	web      WebSource
	analyzer *taxonomy.Analyzer
	writer   *store.OutputWriter
	repo     TaxonomyStore // optional
}

// NewMapper creates an orchestrator. repo may be nil when no database
// mirror is configured.
func NewMapper(github RepositorySource, web WebSource, analyzer *taxonomy.Analyzer, writer *store.OutputWriter, repo TaxonomyStore) *Mapper {
	return &Mapper{
		github:   github,
		web:      web,
		analyzer: analyzer,
		writer:   writer,
		repo:     repo,
	}
}

// MapEcosystem executes the complete workflow for a keyword and returns
// the final result (taxonomy or terminal error document). Collector
// failures degrade to empty inputs: the analysis still runs on whatever
// was gathered. The returned error covers infrastructure problems
// (persistence); analysis failures live inside the Result.
func (m *Mapper) MapEcosystem(ctx context.Context, opts Options) (models.Result, error) {
	if opts.MaxRepos <= 0 {
		opts.MaxRepos = 50
	}
	if opts.MonthsBack <= 0 {
		opts.MonthsBack = 3
	}

	fmt.Printf("================================================================================\n")
	fmt.Printf("ECOSYSTEM MAPPING: %s\n", opts.Keyword)
	fmt.Printf("================================================================================\n\n")
	start := time.Now()

	// Stage 1: data collection
	fmt.Println("STAGE 1: DATA COLLECTION")

	fmt.Println("\n[1/2] Collecting GitHub repositories...")
	repos, err := m.github.SearchRepositories(ctx, opts.Keyword, opts.MonthsBack, opts.MaxRepos, opts.MinStars)
	if err != nil {
		fmt.Printf("GitHub collection error: %v. Continuing with no repositories.\n", err)
		repos = nil
	}

	fmt.Println("\n[2/2] Collecting web search results...")
	web, err := m.web.CombineSearches(ctx, opts.Keyword)
	if err != nil {
		fmt.Printf("Web collection error: %v. Continuing with no web results.\n", err)
		web = models.NewWebResultSet()
	}

	if opts.SaveRaw {
		if _, err := m.writer.SaveRawData(opts.Keyword, repos, web); err != nil {
			return models.Result{}, fmt.Errorf("failed to save raw data: %w", err)
		}
	}

	// Stage 2: taxonomy analysis
	fmt.Println("\n================================================================================")
	fmt.Println("STAGE 2: TAXONOMY ANALYSIS")

	result := m.analyzer.CreateTaxonomy(ctx, opts.Keyword, repos, web)

	if opts.Enrich && result.OK() {
		fmt.Println("\nEnriching taxonomy with insights...")
		result = m.analyzer.EnrichTaxonomy(ctx, result)
	}

	if _, err := m.writer.SaveTaxonomy(opts.Keyword, result); err != nil {
		return result, fmt.Errorf("failed to save taxonomy: %w", err)
	}

	if result.OK() {
		if html, err := report.RenderHTML(result.Taxonomy); err == nil {
			if path, err := m.writer.SaveReport(opts.Keyword, "html", html); err == nil {
				fmt.Printf("✓ Report: %s\n", path)
			}
		}
	}

	if m.repo != nil {
		if err := m.repo.Save(ctx, opts.Keyword, result); err != nil {
			fmt.Printf("Warning: failed to mirror taxonomy to database: %v\n", err)
		}
	}

	m.printSummary(result)
	fmt.Printf("\nRun completed in %v\n", time.Since(start))
	return result, nil
}

func (m *Mapper) printSummary(result models.Result) {
	fmt.Println("\n================================================================================")
	fmt.Println("TAXONOMY SUMMARY")
	fmt.Println("================================================================================")

	if !result.OK() {
		if result.Failure != nil {
			fmt.Printf("\n❌ Error: %s\n", result.Failure.Message)
		} else {
			fmt.Println("\n❌ Error: no taxonomy produced")
		}
		return
	}

	tax := result.Taxonomy
	fmt.Printf("\nEcosystem: %s\n", tax.EcosystemName)
	fmt.Printf("\nOverview: %s\n", tax.Overview)
	fmt.Printf("\nCategories (%d):\n", len(tax.Categories))

	for i, category := range tax.Categories {
		fmt.Printf("\n%d. %s\n", i+1, category.Name)
		fmt.Printf("   Description: %s\n", category.Description)
		fmt.Printf("   Subcategories: %d\n", len(category.Subcategories))
		fmt.Printf("   Examples: %d\n", len(category.Examples))
		for j, example := range category.Examples {
			if j >= 3 {
				break
			}
			fmt.Printf("     - %s: %s\n", example.Name, truncateSummary(example.Description, 60))
		}
	}

	if len(tax.KeyTrends) > 0 {
		fmt.Println("\nKey Trends:")
		for _, trend := range tax.KeyTrends {
			fmt.Printf("  • %s\n", trend)
		}
	}

	if tax.Insights != nil {
		fmt.Println("\nInsights:")
		fmt.Printf("  Maturity: %s\n", tax.Insights.MaturityLevel)
		if len(tax.Insights.EcosystemGaps) > 0 {
			fmt.Printf("  Gaps identified: %d\n", len(tax.Insights.EcosystemGaps))
		}
	}
}

func truncateSummary(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
