package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/personifi/personifi/internal/config"
	"github.com/personifi/personifi/internal/gcs"
	"github.com/personifi/personifi/internal/logger"
	"github.com/personifi/personifi/internal/statement"
	"github.com/personifi/personifi/internal/store"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		runParse(log)
	case "load":
		runLoad(log)
	case "upload":
		runUpload(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("PersoniFi CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  parse     Parse a local statement file and print the transactions as JSON")
	fmt.Println("  load      Parse a local statement file and load it into BigQuery")
	fmt.Println("  upload    Upload a statement file to the GCS archive")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runParse(log zerolog.Logger) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to the statement file (.csv, .xlsx, .xls)")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	result := statement.ParseStatement(*filePath)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}

	if !result.Success {
		os.Exit(1)
	}
}

func runLoad(log zerolog.Logger) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to the statement file (.csv, .xlsx, .xls)")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	result := statement.ParseStatement(*filePath)
	if !result.Success {
		log.Fatal().Str("error", result.Error).Msg("Parse failed")
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	txStore, err := store.NewBigQueryStore(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create transaction store")
	}
	defer txStore.Close()

	inserted, err := txStore.InsertTransactions(ctx, result.Transactions, filepath.Base(*filePath))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to insert transactions")
	}

	fmt.Printf("Loaded %d transactions from %s\n", inserted, *filePath)
	if n := len(result.Metadata.Errors); n > 0 {
		fmt.Printf("%d rows were skipped with errors; run 'cli parse' to see them\n", n)
	}
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local statement file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open file")
	}
	defer f.Close()

	archive, err := gcs.NewArchive(ctx, *bucketName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create statement archive")
	}
	defer archive.Close()

	uri, err := archive.Upload(ctx, *objectName, "", f)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, uri)
}
