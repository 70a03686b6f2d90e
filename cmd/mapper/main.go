// Ecosystem Mapper CLI.
//
// Discovers, analyzes, and categorizes a technology ecosystem:
//
//	mapper --keyword "agentic AI"
//	mapper -k "vector databases" --max-repos 100
//	mapper -k "RAG frameworks" --months 6 --no-enrich
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"ecosystem_mapper/pkg/core/agent"
	"ecosystem_mapper/pkg/core/collect"
	"ecosystem_mapper/pkg/core/pipeline"
	"ecosystem_mapper/pkg/core/store"
	"ecosystem_mapper/pkg/core/taxonomy"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	app := &cli.App{
		Name:  "mapper",
		Usage: "map a technology ecosystem into a structured taxonomy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "keyword",
				Aliases:  []string{"k"},
				Usage:    `ecosystem keyword to analyze (e.g. "agentic AI")`,
				Required: true,
			},
			&cli.IntFlag{
				Name:    "max-repos",
				Aliases: []string{"m"},
				Value:   50,
				Usage:   "maximum GitHub repositories to collect",
			},
			&cli.IntFlag{
				Name:    "months",
				Aliases: []string{"t"},
				Value:   3,
				Usage:   "how many months back to search GitHub",
			},
			&cli.IntFlag{
				Name:  "min-stars",
				Value: 0,
				Usage: "minimum star count for collected repositories",
			},
			&cli.BoolFlag{
				Name:  "no-enrich",
				Usage: "skip the taxonomy enrichment step",
			},
			&cli.BoolFlag{
				Name:  "no-save-raw",
				Usage: "do not save raw collected data",
			},
			&cli.StringFlag{
				Name:  "outputs",
				Value: "outputs",
				Usage: "directory for run artifacts",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "optional yaml provider config",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "\n❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	ctx := context.Background()

	fmt.Println("Initializing Ecosystem Mapper...")

	config, err := agent.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	provider, err := agent.NewManager(config).Provider("taxonomy")
	if err != nil {
		return err
	}

	github, err := collect.NewGitHubCollector()
	if err != nil {
		return err
	}
	web, err := collect.NewWebSearcher()
	if err != nil {
		return err
	}
	writer, err := store.NewOutputWriter(c.String("outputs"))
	if err != nil {
		return err
	}

	// Mirror to Postgres only when a DATABASE_URL is configured.
	var repo pipeline.TaxonomyStore
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("Warning: database unavailable, skipping mirror: %v\n", err)
		} else {
			defer store.Close()
			repo = store.NewTaxonomyRepo()
		}
	}

	fmt.Print("✓ All modules initialized\n\n")

	mapper := pipeline.NewMapper(github, web, taxonomy.NewAnalyzer(provider), writer, repo)

	result, err := mapper.MapEcosystem(ctx, pipeline.Options{
		Keyword:    c.String("keyword"),
		MaxRepos:   c.Int("max-repos"),
		MonthsBack: c.Int("months"),
		MinStars:   c.Int("min-stars"),
		Enrich:     !c.Bool("no-enrich"),
		SaveRaw:    !c.Bool("no-save-raw"),
	})
	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("mapping failed: %s", result.Failure.Message)
	}

	fmt.Println("\n✅ Ecosystem mapping complete!")
	return nil
}
