package models

import "encoding/json"

// ExampleType values requested from the model for taxonomy examples.
// Advisory only: the parser does not reject other values.
const (
	ExampleOpenSource = "open-source"
	ExampleCommercial = "commercial"
	ExampleFramework  = "framework"
	ExampleLibrary    = "library"
	ExamplePlatform   = "platform"
)

// TaxonomyExample is a representative project, tool, or company within a
// category.
type TaxonomyExample struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Type        string `json:"type,omitempty"`
}

// TaxonomyCategory is one main category of the ecosystem. Names are
// assumed unique within a single taxonomy (the insights differentiator
// map is keyed by them) but not across runs.
type TaxonomyCategory struct {
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Subcategories []string          `json:"subcategories"`
	Examples      []TaxonomyExample `json:"examples"`
	Relationships []string          `json:"relationships,omitempty"`
}

// Taxonomy is the structured categorization document produced for an
// ecosystem. Insights stays nil until the enrichment pass runs; it is the
// only field enrichment is allowed to touch.
type Taxonomy struct {
	EcosystemName string             `json:"ecosystem_name"`
	Overview      string             `json:"overview"`
	Categories    []TaxonomyCategory `json:"categories"`
	KeyTrends     []string           `json:"key_trends,omitempty"`
	EmergingAreas []string           `json:"emerging_areas,omitempty"`
	Insights      *Insights          `json:"insights,omitempty"`
}

// Maturity levels requested from the enrichment pass.
const (
	MaturityEmerging = "emerging"
	MaturityGrowing  = "growing"
	MaturityMature   = "mature"
)

// Insights is the maturity and gap analysis merged into a taxonomy by the
// enrichment pass.
type Insights struct {
	MaturityLevel            string            `json:"maturity_level"`
	MaturityAnalysis         string            `json:"maturity_analysis"`
	CategoryDifferentiators  map[string]string `json:"category_differentiators,omitempty"`
	EcosystemGaps            []string          `json:"ecosystem_gaps,omitempty"`
	IntegrationOpportunities []string          `json:"integration_opportunities,omitempty"`
}

// ErrorResult is the terminal failure variant of a taxonomy run. When the
// model response failed to parse, RawResponse carries the offending text
// so prompt/schema drift can be diagnosed offline.
type ErrorResult struct {
	Message     string `json:"error"`
	RawResponse string `json:"raw_response,omitempty"`
}

func (e *ErrorResult) Error() string { return e.Message }

// Result is the outcome of taxonomy creation: exactly one of Taxonomy or
// Failure is set. Success and failure are distinct shapes rather than a
// key-presence convention inside one document.
type Result struct {
	Taxonomy *Taxonomy
	Failure  *ErrorResult
}

// Success wraps a taxonomy in a successful result.
func Success(t *Taxonomy) Result { return Result{Taxonomy: t} }

// Failed wraps an error in a terminal result.
func Failed(e *ErrorResult) Result { return Result{Failure: e} }

// OK reports whether the result carries a taxonomy.
func (r Result) OK() bool { return r.Failure == nil && r.Taxonomy != nil }

// MarshalJSON serializes whichever arm is set, so a persisted result file
// is either a taxonomy document or an {error, raw_response} document,
// never a mix.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Failure != nil {
		return json.Marshal(r.Failure)
	}
	return json.Marshal(r.Taxonomy)
}
