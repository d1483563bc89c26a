// ABOUTME: Scenario data for retrieval quality benchmarks
// ABOUTME: Defines a fixture vault, queries, and expected source rankings

package retrieval

// Scenario is one retrieval benchmark case: a query against the fixture
// vault with the sources that should (and should not) surface.
type Scenario struct {
	ID               string
	Name             string
	Description      string
	Query            string
	Limit            int
	ExpectedSources  []string // sources that must appear in the results
	ForbiddenSources []string // sources that must not appear
}

// ScenarioResult is the scored outcome of one scenario
type ScenarioResult struct {
	ScenarioID    string                 `json:"scenario_id"`
	ScenarioName  string                 `json:"scenario_name"`
	Precision     float64                `json:"precision"`
	Recall        float64                `json:"recall"`
	ReciprocalRank float64               `json:"reciprocal_rank"`
	OverallScore  float64                `json:"overall_score"`
	Status        string                 `json:"status"` // "PASS" or "FAIL"
	Details       map[string]interface{} `json:"details,omitempty"`
}

// FixtureVault is the corpus every scenario runs against. Keys are
// vault-relative paths.
func FixtureVault() map[string]string {
	return map[string]string{
		"setup/installation.md": `# Installation

Install the server with go install, then point MDDRAG_VAULT at your
Obsidian vault root. The embedding index is stored under the XDG data
directory and survives restarts.

Set OPENAI_API_KEY in the environment or a .env file before indexing.`,

		"setup/configuration.md": `# Configuration

All settings come from environment variables. MDDRAG_CHUNK_SIZE and
MDDRAG_CHUNK_OVERLAP control chunking; OPENAI_TIMEOUT and
OPENAI_MAX_RETRIES control the embedding client.`,

		"guides/canvas-colors.md": `# Canvas color categories

The MDD method assigns meaning to canvas node colors: uncolored nodes
are variable references, color 1 marks entities and pages, color 4
marks actions and transitions, and color 6 marks technical
specifications such as frameworks and libraries.`,

		"guides/search.md": `# Searching documentation

Queries are embedded and matched against indexed chunks by cosine
similarity. Results carry the source path, a similarity score, and a
snippet. Re-run indexing after editing vault files.`,

		"recipes/pasta.md": `# Weeknight pasta

Boil salted water, cook the pasta two minutes short of the package
time, and finish it in the pan with garlic, olive oil, and a ladle of
pasta water.`,

		"architecture.canvas": `{
	"nodes": [
		{"id": "parser", "type": "text", "color": "1", "text": "Canvas parser turns .canvas JSON into typed node and edge graphs"},
		{"id": "store", "type": "text", "color": "6", "text": "SQLite vector store holds embeddings with content hashes for incremental reindexing"},
		{"id": "spec", "type": "file", "color": "6", "file": "guides/search.md"}
	],
	"edges": [
		{"id": "e1", "fromNode": "parser", "toNode": "store", "label": "feeds"}
	]
}`,
	}
}

// GetInstallScenario checks that setup questions surface setup docs
func GetInstallScenario() Scenario {
	return Scenario{
		ID:          "install",
		Name:        "Installation lookup",
		Description: "A setup question must rank the installation guide above unrelated content",
		Query:       "how do I install the server and set my API key",
		Limit:       3,
		ExpectedSources: []string{
			"setup/installation.md",
		},
		ForbiddenSources: []string{
			"recipes/pasta.md",
		},
	}
}

// GetColorsScenario checks domain vocabulary retrieval
func GetColorsScenario() Scenario {
	return Scenario{
		ID:          "colors",
		Name:        "Color legend lookup",
		Description: "A question about node colors must surface the color guide",
		Query:       "what do the canvas node colors mean",
		Limit:       3,
		ExpectedSources: []string{
			"guides/canvas-colors.md",
		},
		ForbiddenSources: []string{
			"recipes/pasta.md",
		},
	}
}

// GetCanvasScenario checks that flattened canvas summaries are searchable
func GetCanvasScenario() Scenario {
	return Scenario{
		ID:          "canvas",
		Name:        "Canvas summary retrieval",
		Description: "Canvas node text must be findable even though the file is a JSON graph",
		Query:       "where are embeddings stored for incremental reindexing",
		Limit:       3,
		ExpectedSources: []string{
			"architecture.canvas",
		},
	}
}

// GetAllScenarios returns every benchmark scenario
func GetAllScenarios() []Scenario {
	return []Scenario{
		GetInstallScenario(),
		GetColorsScenario(),
		GetCanvasScenario(),
	}
}
