// Package taxonomy implements the ecosystem taxonomy pipeline: it
// condenses collected source records into a bounded data summary, renders
// the analysis prompts, invokes a completion backend, and parses the
// structured response into a models.Taxonomy or a terminal error result.
package taxonomy

import (
	"fmt"
	"strings"

	"ecosystem_mapper/pkg/models"
)

// Input truncation bounds. They exist to keep the rendered summary inside
// the backend's input-token limits regardless of how much the collectors
// returned.
const (
	maxSummaryRepos       = 30
	maxSummaryTopics      = 5
	maxSummaryWebResults  = 15
	maxDescriptionPreview = 200
	maxContentPreview     = 200
)

// BuildDataSummary renders the collected data as a single text block for
// prompt inclusion. Repositories are taken in the order received (the
// collector sorts by stars upstream; no re-sorting happens here), capped
// at 30; web categories are iterated in insertion order, capped at 15
// results each. Pure transform, no I/O.
func BuildDataSummary(repos []models.RepositoryRecord, web *models.WebResultSet) string {
	var b strings.Builder

	b.WriteString("=== GITHUB REPOSITORIES ===\n\n")
	for i, repo := range repos {
		if i >= maxSummaryRepos {
			break
		}
		fmt.Fprintf(&b, "%d. %s (%d⭐)\n", i+1, repo.FullName, repo.Stars)
		fmt.Fprintf(&b, "   Description: %s\n", truncateRunes(repo.Description, maxDescriptionPreview))
		fmt.Fprintf(&b, "   Topics: %s\n", strings.Join(firstN(repo.Topics, maxSummaryTopics), ", "))
		fmt.Fprintf(&b, "   Language: %s\n\n", repo.Language)
	}

	for _, category := range web.Categories() {
		fmt.Fprintf(&b, "\n=== WEB RESULTS: %s ===\n\n", strings.ToUpper(category))
		for i, result := range web.Get(category) {
			if i >= maxSummaryWebResults {
				break
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, result.Title)
			fmt.Fprintf(&b, "   URL: %s\n", result.URL)
			fmt.Fprintf(&b, "   Content: %s...\n\n", truncateRunes(result.Content, maxContentPreview))
		}
	}

	return b.String()
}

// truncateRunes cuts s to at most n runes. Rune-based so multi-byte text
// is never split mid-character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
