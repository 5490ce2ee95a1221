package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/aggregate"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/archive"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/config"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/domain"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/llm"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/logger"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/normalize"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/query"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("FINANCE_CONFIG"))
	if err != nil {
		l := logger.New("info")
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.LogLevel)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "upload":
		runUpload(cfg, log)
	case "summary":
		runSummary(cfg, log)
	case "ask":
		runAsk(cfg, log)
	case "clear":
		runClear(cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Analyst CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  upload    Normalize a CSV/XLSX statement and replace the stored dataset")
	fmt.Println("  summary   Print aggregate totals for the stored dataset")
	fmt.Println("  ask       Ask a natural-language question about the stored dataset")
	fmt.Println("  clear     Delete the stored dataset")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runUpload(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to local CSV or XLSX statement")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read input file")
	}

	archiver, err := archive.NewLocalArchiver(cfg.UploadsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize upload archive")
	}
	if archived, err := archiver.Archive(filepath.Base(*filePath), data); err != nil {
		log.Error().Err(err).Msg("Failed to archive upload")
	} else {
		log.Info().Str("archived_as", archived).Msg("Upload archived")
	}

	ds, err := normalize.Normalize(data, filepath.Base(*filePath), normalize.Options{MaxRejectRatio: cfg.MaxRejectRatio})
	if err != nil {
		log.Fatal().Err(err).Msg("Normalization failed")
	}

	datasetStore, err := store.New(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize dataset store")
	}
	if err := datasetStore.Save(ds); err != nil {
		log.Fatal().Err(err).Msg("Failed to persist dataset")
	}

	fmt.Printf("Dataset %s replaced: %d rows accepted, %d rejected\n",
		ds.Provenance.DatasetID, ds.Provenance.RowsAccepted, ds.Provenance.RowsRejected)
}

func runSummary(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	from := fs.String("from", "", "Start date filter (YYYY-MM-DD, inclusive)")
	to := fs.String("to", "", "End date filter (YYYY-MM-DD, inclusive)")
	category := fs.String("category", "", "Category filter")
	fs.Parse(os.Args[2:])

	var spec aggregate.Spec
	var err error
	if *from != "" {
		if spec.From, err = civil.ParseDate(*from); err != nil {
			log.Fatal().Err(err).Msg("Invalid --from date")
		}
	}
	if *to != "" {
		if spec.To, err = civil.ParseDate(*to); err != nil {
			log.Fatal().Err(err).Msg("Invalid --to date")
		}
	}
	spec.Category = *category

	ds := mustLoad(cfg, log)
	res := aggregate.Aggregate(ds, spec)

	fmt.Printf("Source: %s (%d rows)\n", ds.Provenance.SourceFilename, ds.Len())
	if from, to, ok := ds.DateRange(); ok {
		fmt.Printf("Dates:  %s .. %s\n", from, to)
	}
	fmt.Printf("Net:     %s\n", aggregate.Present(res.NetTotal))
	fmt.Printf("Income:  %s\n", aggregate.Present(res.Income))
	fmt.Printf("Expense: %s\n", aggregate.Present(res.Expense))
	fmt.Println("By category:")
	for _, cat := range res.SortedCategories() {
		fmt.Printf("  %-20s %s\n", cat, aggregate.Present(res.ByCategory[cat]))
	}
	fmt.Println("By month:")
	for _, m := range res.SortedMonths() {
		fmt.Printf("  %-20s %s\n", m, aggregate.Present(res.ByMonth[m]))
	}
}

func runAsk(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	question := fs.String("q", "", "Question to ask about the stored transactions")
	fs.Parse(os.Args[2:])

	if *question == "" {
		log.Fatal().Msg("Error: -q is required")
	}

	ds := mustLoad(cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	completer, err := llm.New(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create completion client")
	}
	orchestrator := query.New(completer, log, query.Options{
		MaxExcerptRows: cfg.MaxExcerptRows,
		Retries:        cfg.QueryRetries,
		Timeout:        time.Duration(cfg.QueryTimeout),
	})

	answer, err := orchestrator.Ask(ctx, *question, ds)
	if err != nil {
		log.Fatal().Err(err).Msg("Question failed")
	}
	fmt.Println(answer.Text)
}

func runClear(cfg config.Config, log zerolog.Logger) {
	datasetStore, err := store.New(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize dataset store")
	}
	if err := datasetStore.Clear(); err != nil {
		log.Fatal().Err(err).Msg("Failed to clear dataset")
	}
	fmt.Println("Stored dataset cleared.")
}

func mustLoad(cfg config.Config, log zerolog.Logger) *domain.Dataset {
	datasetStore, err := store.New(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize dataset store")
	}
	ds, err := datasetStore.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("No stored dataset, run 'cli upload' first")
	}
	return ds
}
