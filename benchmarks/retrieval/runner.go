// ABOUTME: Runner for retrieval quality benchmarks against a live embedder
// ABOUTME: Builds a fixture vault, indexes it, and scores scenario queries

package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Thegod322/mddrag/internal/index"
	"github.com/Thegod322/mddrag/internal/index/sqlite"
	"github.com/Thegod322/mddrag/internal/llm"
	"github.com/Thegod322/mddrag/internal/search"
)

// BenchmarkRunner indexes the fixture vault once and runs scenarios
// against it with a real embedding client.
type BenchmarkRunner struct {
	db      *sqlite.DB
	engine  *search.Engine
	manager *index.Manager
	metrics *MetricsCalculator
	vault   string
	verbose bool
}

// NewBenchmarkRunner creates a runner with its own temp vault and index
func NewBenchmarkRunner(apiKey string, verbose bool) (*BenchmarkRunner, error) {
	client, err := llm.NewOpenAIClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("initializing embedding client: %w", err)
	}

	workDir, err := os.MkdirTemp("", "mddrag_bench_")
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}

	vaultDir := filepath.Join(workDir, "vault")
	for rel, content := range FixtureVault() {
		full := filepath.Join(vaultDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return nil, fmt.Errorf("building fixture vault: %w", err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("building fixture vault: %w", err)
		}
	}

	db, err := sqlite.Open(filepath.Join(workDir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("opening benchmark index: %w", err)
	}

	ix := sqlite.NewIndex(db)
	manager := index.NewManager(ix, client)
	manager.SetVerbose(verbose)

	return &BenchmarkRunner{
		db:      db,
		engine:  search.NewEngine(ix, client),
		manager: manager,
		metrics: NewMetricsCalculator(),
		vault:   vaultDir,
		verbose: verbose,
	}, nil
}

// Close releases the index and removes the temp vault
func (r *BenchmarkRunner) Close() {
	if r.db != nil {
		_ = r.db.Close()
	}
	_ = os.RemoveAll(filepath.Dir(r.vault))
}

// Index embeds the fixture vault. Must run once before scenarios.
func (r *BenchmarkRunner) Index(ctx context.Context) error {
	delta, err := r.manager.Reconcile(ctx, r.vault)
	if err != nil {
		return fmt.Errorf("indexing fixture vault: %w", err)
	}
	if len(delta.Failed) > 0 {
		return fmt.Errorf("fixture files failed to index: %v", delta.Failed)
	}
	if r.verbose {
		fmt.Printf("Indexed fixture vault: %d sources\n", len(delta.Added))
	}
	return nil
}

// RunScenario executes one scenario and scores it
func (r *BenchmarkRunner) RunScenario(ctx context.Context, scenario Scenario) (ScenarioResult, error) {
	if r.verbose {
		fmt.Printf("\n[%s] %s\n", scenario.ID, scenario.Description)
		fmt.Printf("  query: %q\n", scenario.Query)
	}

	results, err := r.engine.Search(ctx, scenario.Query, scenario.Limit)
	if err != nil {
		return ScenarioResult{}, fmt.Errorf("scenario %s: %w", scenario.ID, err)
	}

	scored := r.metrics.Evaluate(scenario, results)
	if r.verbose {
		for i, res := range results {
			fmt.Printf("  %d. %.3f %s\n", i+1, res.Score, res.SourceID)
		}
		fmt.Printf("  precision %.2f, recall %.2f, rr %.2f -> %s\n",
			scored.Precision, scored.Recall, scored.ReciprocalRank, scored.Status)
	}
	return scored, nil
}

// RunAll indexes the vault and runs every scenario
func (r *BenchmarkRunner) RunAll(ctx context.Context) ([]ScenarioResult, error) {
	if err := r.Index(ctx); err != nil {
		return nil, err
	}

	scenarios := GetAllScenarios()
	results := make([]ScenarioResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		result, err := r.RunScenario(ctx, scenario)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// ExportResults writes a JSON summary of the run
func (r *BenchmarkRunner) ExportResults(results []ScenarioResult, outputPath string) error {
	passed := 0
	for _, result := range results {
		if result.Status == "PASS" {
			passed++
		}
	}

	summary := map[string]interface{}{
		"timestamp":       time.Now().Format(time.RFC3339),
		"total_scenarios": len(results),
		"passed":          passed,
		"failed":          len(results) - passed,
		"results":         results,
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	fmt.Printf("Results exported to: %s\n", outputPath)
	return nil
}
