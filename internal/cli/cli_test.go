package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// useTestConfig points every command at an isolated store and clears
// API keys so tests never touch the network.
func useTestConfig(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "database:\n  path: " + filepath.Join(dir, "trends.db") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	old := configFile
	configFile = path
	t.Cleanup(func() { configFile = old })

	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("YOUTUBE_API_KEY", "")
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestLoadCmd_RequiresRunOrAll(t *testing.T) {
	useTestConfig(t)

	err := execute(t, NewLoadCmd())
	if err == nil || !strings.Contains(err.Error(), "--all") {
		t.Errorf("expected run-or-all error, got %v", err)
	}
}

func TestLoadCmd_RequiresOpenAIKey(t *testing.T) {
	useTestConfig(t)

	err := execute(t, NewLoadCmd(), "--all")
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("expected missing-key error, got %v", err)
	}
}

func TestSearchCmd_EmptyStoreNoError(t *testing.T) {
	useTestConfig(t)

	// Keyword-only search over an empty store finds nothing but is not
	// an error.
	if err := execute(t, NewSearchCmd(), "anything"); err != nil {
		t.Errorf("search on empty store failed: %v", err)
	}
}

func TestTrendingCmd_EmptyStoreNoError(t *testing.T) {
	useTestConfig(t)

	if err := execute(t, NewTrendingCmd()); err != nil {
		t.Errorf("trending on empty store failed: %v", err)
	}
}

func TestCategoryCmd_UnknownCategory(t *testing.T) {
	useTestConfig(t)

	err := execute(t, NewCategoryCmd(), "not_a_category")
	if err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestRegionsCmd_UnknownAlgorithm(t *testing.T) {
	useTestConfig(t)

	err := execute(t, NewRegionsCmd(), "--algorithm", "kmeans")
	if err == nil || !strings.Contains(err.Error(), "unknown algorithm") {
		t.Errorf("expected unknown-algorithm error, got %v", err)
	}
}

func TestRegionsCmd_EmptyCorpus(t *testing.T) {
	useTestConfig(t)

	if err := execute(t, NewRegionsCmd(), "--algorithm", "dbscan"); err == nil {
		t.Error("expected error for empty corpus")
	}
}

func TestStatsCmd_EmptyStore(t *testing.T) {
	useTestConfig(t)

	if err := execute(t, NewStatsCmd()); err != nil {
		t.Errorf("stats on empty store failed: %v", err)
	}
}

func TestClearCmd_EmptyStore(t *testing.T) {
	useTestConfig(t)

	if err := execute(t, NewClearCmd(), "--force"); err != nil {
		t.Errorf("clear on empty store failed: %v", err)
	}
}

func TestAnalyzeCmd_RequiresKeys(t *testing.T) {
	useTestConfig(t)

	err := execute(t, NewAnalyzeCmd(), "what is trending")
	if err == nil || !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Errorf("expected missing-key error, got %v", err)
	}
}

func TestVersionCmd(t *testing.T) {
	if err := execute(t, NewVersionCmd()); err != nil {
		t.Errorf("version failed: %v", err)
	}
}

func TestCommandFlags(t *testing.T) {
	cases := []struct {
		name  string
		cmd   *cobra.Command
		flags []string
	}{
		{"load", NewLoadCmd(), []string{"all", "results-dir", "min-score"}},
		{"search", NewSearchCmd(), []string{"top-k", "category", "min-score", "after", "before", "json"}},
		{"trending", NewTrendingCmd(), []string{"top-k", "category", "min-score", "json"}},
		{"regions", NewRegionsCmd(), []string{"algorithm", "eps", "min-samples", "xi", "json"}},
		{"analyze", NewAnalyzeCmd(), []string{"queries", "max-videos", "videos-per-query", "json"}},
		{"clear", NewClearCmd(), []string{"run", "force"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, flag := range tc.flags {
				if tc.cmd.Flags().Lookup(flag) == nil {
					t.Errorf("command %s missing flag --%s", tc.name, flag)
				}
			}
		})
	}
}
