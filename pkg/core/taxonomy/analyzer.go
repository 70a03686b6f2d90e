package taxonomy

import (
	"context"
	"fmt"

	"ecosystem_mapper/pkg/core/llm"
	"ecosystem_mapper/pkg/core/utils"
	"ecosystem_mapper/pkg/models"
)

// Decoding parameters for the two inference passes. Temperature is kept
// low to favor schema-conformant output; the output bounds fit the
// requested cardinalities while keeping cost and latency predictable.
const (
	analysisTemperature = 0.3
	taxonomyMaxTokens   = 4000
	insightsMaxTokens   = 2000
)

// ParseErrorMessage tags results whose response text did not parse as a
// taxonomy document.
const ParseErrorMessage = "Failed to parse taxonomy"

// Analyzer runs the two-pass taxonomy pipeline against a completion
// backend. It holds no per-run state; every call is independent and
// sequential. No retries happen at this layer; a caller needing
// resilience re-invokes the pipeline.
type Analyzer struct {
	provider llm.Provider
	model    string // optional per-analyzer model override
}

// NewAnalyzer wraps a completion backend.
func NewAnalyzer(provider llm.Provider) *Analyzer {
	return &Analyzer{provider: provider}
}

// SetModel overrides the provider's configured model for this analyzer.
func (a *Analyzer) SetModel(model string) { a.model = model }

func (a *Analyzer) options(maxTokens int) map[string]interface{} {
	opts := map[string]interface{}{
		"temperature": analysisTemperature,
		"max_tokens":  maxTokens,
	}
	if a.model != "" {
		opts["model"] = a.model
	}
	return opts
}

// CreateTaxonomy condenses the collected data, asks the backend for a
// taxonomy document, and parses the response. Any failure along the way
// is terminal for the run and comes back as the Failure arm; a
// structurally valid but sparse document (even zero categories) is
// accepted as success; requested cardinalities are advisory.
func (a *Analyzer) CreateTaxonomy(ctx context.Context, keyword string, repos []models.RepositoryRecord, web *models.WebResultSet) models.Result {
	fmt.Printf("\nAnalyzing ecosystem for: %s\n", keyword)
	fmt.Printf("Data sources: %d GitHub repos, %d web results\n", len(repos), web.Len())

	dataSummary := BuildDataSummary(repos, web)
	prompt := BuildTaxonomyPrompt(keyword, dataSummary)

	raw, err := a.provider.GenerateResponse(ctx, prompt, TaxonomySystemPrompt, a.options(taxonomyMaxTokens))
	if err != nil {
		fmt.Printf("Error creating taxonomy: %v\n", err)
		return models.Failed(&models.ErrorResult{Message: err.Error()})
	}

	tax, failure := ParseTaxonomy(raw)
	if failure != nil {
		fmt.Printf("Error parsing taxonomy JSON. Raw response: %s\n", raw)
		return models.Failed(failure)
	}

	fmt.Printf("✓ Taxonomy created with %d categories\n", len(tax.Categories))
	return models.Success(tax)
}

// ParseTaxonomy parses raw backend output into a taxonomy. Markdown
// fences are stripped and lenient JSON strategies are tried before giving
// up; on failure the returned ErrorResult carries the raw text unmodified
// for offline diagnosis. No semantic validation happens here.
func ParseTaxonomy(raw string) (*models.Taxonomy, *models.ErrorResult) {
	cleaned := utils.StripCodeFences(raw)

	var tax models.Taxonomy
	if _, err := utils.SmartParse(cleaned, &tax); err != nil {
		return nil, &models.ErrorResult{Message: ParseErrorMessage, RawResponse: raw}
	}
	return &tax, nil
}

// EnrichTaxonomy runs the second inference pass and merges the insight
// document under the taxonomy's insights key. Failure handling is
// deliberately asymmetric with creation: a failed input short-circuits,
// and any transport or parse failure during enrichment returns the
// original result unchanged; insights are best-effort and the base taxonomy
// is the deliverable.
func (a *Analyzer) EnrichTaxonomy(ctx context.Context, result models.Result) models.Result {
	if !result.OK() {
		return result
	}

	prompt, err := BuildEnrichmentPrompt(result.Taxonomy)
	if err != nil {
		fmt.Printf("Error enriching taxonomy: %v\n", err)
		return result
	}

	raw, err := a.provider.GenerateResponse(ctx, prompt, EnrichmentSystemPrompt, a.options(insightsMaxTokens))
	if err != nil {
		fmt.Printf("Error enriching taxonomy: %v\n", err)
		return result
	}

	var insights models.Insights
	if _, err := utils.SmartParse(utils.StripCodeFences(raw), &insights); err != nil {
		fmt.Printf("Error parsing insights JSON, keeping base taxonomy: %v\n", err)
		return result
	}

	enriched := *result.Taxonomy
	enriched.Insights = &insights

	fmt.Println("✓ Taxonomy enriched with additional insights")
	return models.Success(&enriched)
}
