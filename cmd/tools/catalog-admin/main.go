package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"smartshop-search/internal/common/config"
	"smartshop-search/internal/common/database"
	"smartshop-search/internal/common/logger"
	"smartshop-search/internal/models"
	buildquery "smartshop-search/internal/pipeline/build-query"
	extractintent "smartshop-search/internal/pipeline/extract-intent"
	parseintent "smartshop-search/internal/pipeline/parse-intent"
	querycatalog "smartshop-search/internal/pipeline/query-catalog"
	"smartshop-search/internal/pipeline/query-catalog/queries"
	"smartshop-search/pkg/catalogfile"
)

func main() {
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	seedFile := seedCmd.String("file", "configs/catalog.json", "Path to catalog seed file")
	replace := seedCmd.Bool("replace", false, "Truncate products before inserting")

	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateFile := validateCmd.String("file", "configs/catalog.json", "Path to catalog seed file")

	extractCmd := flag.NewFlagSet("extract", flag.ExitOnError)
	message := extractCmd.String("message", "", "Utterance to run through extraction and parsing")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed":
		seedCmd.Parse(os.Args[2:])
		n, err := seed(*seedFile, *replace)
		if err != nil {
			fmt.Printf("Error seeding catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Inserted %d products\n", n)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		cat, err := catalogfile.Load(*validateFile)
		if err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog validation passed (%d products).\n", len(cat.Products))

	case "extract":
		extractCmd.Parse(os.Args[2:])
		if *message == "" {
			fmt.Println("Error: message is required for extract.")
			extractCmd.Usage()
			os.Exit(1)
		}
		if err := extract(*message); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func seed(path string, replace bool) (int, error) {
	cat, err := catalogfile.Load(path)
	if err != nil {
		return 0, err
	}

	cfg, _, err := config.Load()
	if err != nil {
		return 0, err
	}
	log := logger.NewStructured(cfg.Logging.Level, "console")

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return 0, err
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := querycatalog.NewHandler(nil, pg.DB, log).EnsureSchema(ctx); err != nil {
		return 0, err
	}

	products := make([]models.Product, len(cat.Products))
	for i, e := range cat.Products {
		products[i] = models.Product{Name: e.Name, Description: e.Description, Price: e.Price}
	}
	return queries.SeedProducts(ctx, pg.DB, products, replace)
}

// extract prints the raw extraction, the parsed intent and the SQL it would run.
func extract(message string) error {
	cfg, _, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.NewStructured("warn", "console")
	genaiCfg := cfg.APIs.GenAI

	ctx := context.Background()
	var completer extractintent.Completer = extractintent.DisabledCompleter{}
	if genaiCfg.Configured() {
		gemini, err := extractintent.NewGeminiCompleter(ctx, extractintent.GeminiConfig{
			APIKey:  genaiCfg.APIKey,
			Model:   genaiCfg.Model,
			BaseURL: genaiCfg.BaseURL,
		})
		if err != nil {
			return err
		}
		completer = gemini
	}

	extractor := extractintent.NewHandler(&extractintent.Config{
		Timeout:         config.GetDuration(genaiCfg.Timeout),
		Temperature:     genaiCfg.Temperature,
		MaxOutputTokens: genaiCfg.MaxOutputTokens,
	}, completer, log)

	raw, err := extractor.Execute(ctx, message)
	if err != nil {
		fmt.Printf("extraction failed: %v\n", err)
	}
	result := parseintent.NewHandler(nil, log).Parse(raw)
	query := buildquery.Build(result.Intent)

	out := map[string]interface{}{
		"raw":     raw,
		"outcome": result.Outcome,
		"intent":  result.Intent,
		"sql":     query.SQL,
		"args":    query.Args,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func help() {
	fmt.Println("Usage: catalog-admin <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  seed      Insert products from a catalog file (-file, -replace)")
	fmt.Println("  validate  Validate a catalog file (-file)")
	fmt.Println("  extract   Show the intent and SQL for an utterance (-message)")
	fmt.Println("  help      Show this help message")
}
