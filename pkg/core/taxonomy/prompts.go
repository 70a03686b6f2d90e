package taxonomy

import (
	"encoding/json"
	"fmt"

	"ecosystem_mapper/pkg/models"
)

// System prompts are fixed per pipeline stage.
const (
	TaxonomySystemPrompt = "You are an expert at analyzing technology ecosystems and creating structured taxonomies. " +
		"You excel at identifying patterns, categories, and representative examples from raw data."

	EnrichmentSystemPrompt = "You are an expert technology ecosystem analyst."
)

// The schema blocks embedded in the prompts are rendered from placeholder
// instances of the same structs the parser deserializes into. The prompt
// and the parser therefore share one declared schema and cannot drift.

func taxonomySchemaJSON(keyword string) string {
	placeholder := models.Taxonomy{
		EcosystemName: keyword,
		Overview:      "Brief 2-3 sentence overview of the ecosystem",
		Categories: []models.TaxonomyCategory{
			{
				Name:          "Category Name",
				Description:   "What this category focuses on",
				Subcategories: []string{"Subcategory 1", "Subcategory 2"},
				Examples: []models.TaxonomyExample{
					{
						Name:        "Project/Tool Name",
						Description: "Brief description",
						URL:         "URL if available",
						Type:        "open-source|commercial|framework|library|platform",
					},
				},
				Relationships: []string{"Related to X", "Built on Y"},
			},
		},
		KeyTrends:     []string{"Trend 1", "Trend 2", "Trend 3"},
		EmergingAreas: []string{"Area 1", "Area 2"},
	}
	return mustMarshalIndent(placeholder)
}

func insightsSchemaJSON() string {
	placeholder := models.Insights{
		MaturityLevel:    "emerging|growing|mature",
		MaturityAnalysis: "Brief explanation",
		CategoryDifferentiators: map[string]string{
			"Category1": "Key differentiator",
			"Category2": "Key differentiator",
		},
		EcosystemGaps:            []string{"Gap 1", "Gap 2"},
		IntegrationOpportunities: []string{"Opportunity 1", "Opportunity 2"},
	}
	return mustMarshalIndent(placeholder)
}

func mustMarshalIndent(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(b)
}

// BuildTaxonomyPrompt renders the taxonomy-creation prompt: the keyword,
// the bounded data summary, the requested cardinalities, and the output
// schema. Rendering is deterministic for fixed inputs.
func BuildTaxonomyPrompt(keyword string, dataSummary string) string {
	return fmt.Sprintf(`Analyze the following data about "%s" and create a comprehensive ecosystem taxonomy.

DATA:
%s

TASK:
Create a structured taxonomy that:
1. Identifies 5-8 main categories within this ecosystem
2. For each category, identify 2-4 subcategories
3. Find 3-5 representative examples (projects/tools/companies) for each category
4. Describe the purpose and focus of each category
5. Identify relationships between categories (e.g., "builds on", "complements", "alternative to")

OUTPUT FORMAT (JSON):
%s

Respond ONLY with valid JSON. Do not include any markdown formatting or additional text.`,
		keyword, dataSummary, taxonomySchemaJSON(keyword))
}

// BuildEnrichmentPrompt renders the insight-generation prompt around a
// serialized form of an existing taxonomy.
func BuildEnrichmentPrompt(tax *models.Taxonomy) (string, error) {
	serialized, err := json.MarshalIndent(tax, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize taxonomy: %w", err)
	}

	return fmt.Sprintf(`Given this ecosystem taxonomy:

%s

Provide additional insights:
1. Market maturity assessment (emerging, growing, mature)
2. Key differentiators between categories
3. Gaps or underserved areas in the ecosystem
4. Potential convergence or integration opportunities

OUTPUT FORMAT (JSON):
%s

Respond ONLY with valid JSON.`, string(serialized), insightsSchemaJSON()), nil
}
