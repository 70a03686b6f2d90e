package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ecosystem_mapper/pkg/models"
)

// TaxonomyRepo mirrors the latest taxonomy per keyword into Postgres.
// Upsert keyed by keyword; a single JSONB blob keeps the schema flexible
// while the taxonomy shape is still evolving.
//
// Schema assumption (migrations managed elsewhere):
//
//	CREATE TABLE IF NOT EXISTS ecosystem_taxonomies (
//	  keyword TEXT PRIMARY KEY,
//	  taxonomy_json JSONB,
//	  updated_at TIMESTAMPTZ
//	);
type TaxonomyRepo struct{}

// NewTaxonomyRepo creates a new repository instance.
func NewTaxonomyRepo() *TaxonomyRepo {
	return &TaxonomyRepo{}
}

// Save upserts the taxonomy result for a keyword. Error results are
// stored too: a persisted failure document is still useful for diagnosis.
func (r *TaxonomyRepo) Save(ctx context.Context, keyword string, result models.Result) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal taxonomy: %w", err)
	}

	query := `
		INSERT INTO ecosystem_taxonomies (keyword, taxonomy_json, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (keyword)
		DO UPDATE SET
			taxonomy_json = EXCLUDED.taxonomy_json,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := pool.Exec(ctx, query, keyword, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save taxonomy: %w", err)
	}
	return nil
}

// Load retrieves the latest taxonomy stored for a keyword.
func (r *TaxonomyRepo) Load(ctx context.Context, keyword string) (*models.Taxonomy, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	err := pool.QueryRow(ctx, `SELECT taxonomy_json FROM ecosystem_taxonomies WHERE keyword = $1`, keyword).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no taxonomy found for keyword %s", keyword)
		}
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}

	var tax models.Taxonomy
	if err := json.Unmarshal(jsonData, &tax); err != nil {
		return nil, fmt.Errorf("failed to unmarshal taxonomy: %w", err)
	}
	return &tax, nil
}
