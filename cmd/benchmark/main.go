// ABOUTME: Command-line runner for retrieval quality benchmarks
// ABOUTME: Indexes a fixture vault with live embeddings and scores queries

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/Thegod322/mddrag/benchmarks/retrieval"
)

func main() {
	scenarioID := flag.String("scenario", "", "Run a specific scenario (install, colors, canvas). If empty, runs all.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (continuing anyway): %v", err)
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required for benchmarks")
	}

	fmt.Println("========================================")
	fmt.Println("mddrag Retrieval Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	runner, err := retrieval.NewBenchmarkRunner(apiKey, *verbose)
	if err != nil {
		log.Fatalf("Failed to create benchmark runner: %v", err)
	}
	defer runner.Close()

	ctx := context.Background()
	var results []retrieval.ScenarioResult

	if *scenarioID == "" {
		results, err = runner.RunAll(ctx)
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
	} else {
		var scenario retrieval.Scenario
		switch *scenarioID {
		case "install":
			scenario = retrieval.GetInstallScenario()
		case "colors":
			scenario = retrieval.GetColorsScenario()
		case "canvas":
			scenario = retrieval.GetCanvasScenario()
		default:
			log.Fatalf("Unknown scenario: %s (valid options: install, colors, canvas)", *scenarioID)
		}

		if err := runner.Index(ctx); err != nil {
			log.Fatalf("Indexing failed: %v", err)
		}
		result, err := runner.RunScenario(ctx, scenario)
		if err != nil {
			log.Fatalf("Scenario failed: %v", err)
		}
		results = []retrieval.ScenarioResult{result}
	}

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	passed := 0
	failed := 0
	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.ScenarioID, result.ScenarioName)
		fmt.Printf("  Precision: %.2f\n", result.Precision)
		fmt.Printf("  Recall: %.2f\n", result.Recall)
		fmt.Printf("  Reciprocal Rank: %.2f\n", result.ReciprocalRank)
		fmt.Printf("  Overall: %.2f\n", result.OverallScore)
		fmt.Printf("  Status: %s\n", result.Status)

		if result.Status == "PASS" {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total Scenarios: %d\n", len(results))
	fmt.Printf("Passed: %d\n", passed)
	fmt.Printf("Failed: %d\n", failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
