// ABOUTME: Retrieval metrics for benchmark scenarios
// ABOUTME: Precision, recall, and reciprocal rank over expected sources

package retrieval

import (
	"fmt"

	"github.com/Thegod322/mddrag/internal/models"
)

// passThreshold is the minimum overall score for a PASS verdict
const passThreshold = 0.75

// MetricsCalculator scores search results against scenario ground truth
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// Evaluate scores one scenario's results. Precision counts relevant
// sources among the returned ones, recall counts expected sources that
// were found, and reciprocal rank rewards putting the first relevant
// source on top. Forbidden sources zero the score outright.
func (m *MetricsCalculator) Evaluate(scenario Scenario, results []models.SearchResult) ScenarioResult {
	expected := make(map[string]bool, len(scenario.ExpectedSources))
	for _, s := range scenario.ExpectedSources {
		expected[s] = true
	}
	forbidden := make(map[string]bool, len(scenario.ForbiddenSources))
	for _, s := range scenario.ForbiddenSources {
		forbidden[s] = true
	}

	// Distinct sources in rank order; a document split into several
	// chunks counts once
	var ranked []string
	seen := make(map[string]bool)
	for _, r := range results {
		if !seen[r.SourceID] {
			seen[r.SourceID] = true
			ranked = append(ranked, r.SourceID)
		}
	}

	found := make(map[string]bool)
	var forbiddenHits []string
	rr := 0.0
	for i, source := range ranked {
		if expected[source] {
			found[source] = true
			if rr == 0 {
				rr = 1.0 / float64(i+1)
			}
		}
		if forbidden[source] {
			forbiddenHits = append(forbiddenHits, source)
		}
	}

	precision := 0.0
	if len(ranked) > 0 {
		precision = float64(len(found)) / float64(len(ranked))
	}
	recall := 0.0
	if len(expected) > 0 {
		recall = float64(len(found)) / float64(len(expected))
	}

	overall := (recall + rr) / 2
	status := "PASS"
	details := map[string]interface{}{
		"ranked_sources": ranked,
	}
	if len(forbiddenHits) > 0 {
		overall = 0
		status = "FAIL"
		details["forbidden_hits"] = forbiddenHits
		details["reason"] = fmt.Sprintf("forbidden sources surfaced: %v", forbiddenHits)
	} else if overall < passThreshold {
		status = "FAIL"
		details["reason"] = fmt.Sprintf("overall %.2f below threshold %.2f", overall, passThreshold)
	}

	return ScenarioResult{
		ScenarioID:     scenario.ID,
		ScenarioName:   scenario.Name,
		Precision:      precision,
		Recall:         recall,
		ReciprocalRank: rr,
		OverallScore:   overall,
		Status:         status,
		Details:        details,
	}
}
