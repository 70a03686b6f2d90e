// Package report renders a taxonomy as a human-readable Markdown
// document and converts it to HTML. Render-only: no layout engine, no
// graphics.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"ecosystem_mapper/pkg/models"
)

// RenderMarkdown produces a Markdown report of the taxonomy: overview,
// categories with subcategories and examples, trends, and insights when
// the enrichment pass ran.
func RenderMarkdown(tax *models.Taxonomy) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Ecosystem Map: %s\n\n", tax.EcosystemName)
	if tax.Overview != "" {
		fmt.Fprintf(&b, "%s\n\n", tax.Overview)
	}

	fmt.Fprintf(&b, "## Categories (%d)\n\n", len(tax.Categories))
	for i, category := range tax.Categories {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, category.Name)
		if category.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", category.Description)
		}
		if len(category.Subcategories) > 0 {
			fmt.Fprintf(&b, "**Subcategories:** %s\n\n", strings.Join(category.Subcategories, ", "))
		}
		for _, example := range category.Examples {
			line := "- **" + example.Name + "**"
			if example.Type != "" {
				line += " (" + example.Type + ")"
			}
			if example.Description != "" {
				line += ": " + example.Description
			}
			if example.URL != "" {
				line += " [link](" + example.URL + ")"
			}
			b.WriteString(line + "\n")
		}
		if len(category.Examples) > 0 {
			b.WriteString("\n")
		}
		if len(category.Relationships) > 0 {
			fmt.Fprintf(&b, "**Relationships:** %s\n\n", strings.Join(category.Relationships, "; "))
		}
	}

	writeBulletSection(&b, "Key Trends", tax.KeyTrends)
	writeBulletSection(&b, "Emerging Areas", tax.EmergingAreas)

	if tax.Insights != nil {
		b.WriteString("## Insights\n\n")
		fmt.Fprintf(&b, "**Maturity:** %s\n\n", tax.Insights.MaturityLevel)
		if tax.Insights.MaturityAnalysis != "" {
			fmt.Fprintf(&b, "%s\n\n", tax.Insights.MaturityAnalysis)
		}
		writeBulletSection(&b, "Ecosystem Gaps", tax.Insights.EcosystemGaps)
		writeBulletSection(&b, "Integration Opportunities", tax.Insights.IntegrationOpportunities)
	}

	return b.String()
}

func writeBulletSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// RenderHTML converts the Markdown report to a standalone HTML document.
func RenderHTML(tax *models.Taxonomy) ([]byte, error) {
	markdown := RenderMarkdown(tax)

	var body bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("failed to render report HTML: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>Ecosystem Map: %s</title>\n", tax.EcosystemName)
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
