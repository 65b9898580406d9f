package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama answers generate calls by looking for "ys origin" in the prompt.
func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:8b"},{"name":"mistral:7b"}]}`))
		case "/api/generate":
			var req struct {
				Prompt string `json:"prompt"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)

			answer := `{"relevant": false, "relevance_confidence": 10, "category": "none", "category_confidence": 0}`
			if strings.Contains(req.Prompt, "ys origin") {
				answer = `{"relevant": true, "relevance_confidence": 90, "category": "how-to", "category_confidence": 85}`
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"response": answer, "done": true})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setEnv(t *testing.T, ollamaURL string) {
	t.Helper()
	t.Setenv("ENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("OLLAMA_BASE_URL", ollamaURL)
	t.Setenv("OLLAMA_MAX_RETRIES", "1")
	t.Setenv("SETTINGS_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("OUTPUT_DIR", filepath.Join(t.TempDir(), "outputs"))
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, sub := range cmd.Commands() {
		if sub.Name() == name {
			return sub
		}
	}
	return nil
}

func TestRootCommandSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "classify", "models"} {
		if findSubcommand(cmd, name) == nil {
			t.Errorf("Missing subcommand %q", name)
		}
	}

	if cmd.PersistentFlags().Lookup("log-level") == nil {
		t.Error("Missing persistent flag --log-level")
	}
}

func TestClassifyFlags(t *testing.T) {
	cmd := findSubcommand(NewRootCommand(), "classify")
	require.NotNil(t, cmd)

	flagTypes := map[string]string{
		"topic":      "string",
		"file":       "string",
		"input":      "string",
		"threshold":  "int",
		"categories": "stringSlice",
		"mode":       "string",
		"output-dir": "string",
	}
	for name, typ := range flagTypes {
		flag := cmd.Flags().Lookup(name)
		if assert.NotNil(t, flag, "missing flag --%s", name) {
			assert.Equal(t, typ, flag.Value.Type(), "flag --%s", name)
		}
	}
}

func TestClassify_Input(t *testing.T) {
	srv := fakeOllama(t)
	setEnv(t, srv.URL)
	outDir := filepath.Join(t.TempDir(), "results")

	stdout, stderr, err := execute(t, "classify",
		"--topic", "Ys video game series",
		"--input", "ys origin walkthrough\nyes button",
		"--output-dir", outDir,
	)
	require.NoError(t, err, stderr)

	var out classifyOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out), stdout)

	assert.Equal(t, "Ys video game series", out.Topic)
	assert.NotEmpty(t, out.JobID)
	assert.Equal(t, 2, out.Statistics.Total)
	assert.Equal(t, 1, out.Statistics.Accepted)
	assert.Equal(t, 1, out.Statistics.Rejected)
	assert.Equal(t, 50.0, out.Statistics.AcceptanceRate)
	assert.Equal(t, map[string]int{"how-to": 1, "none": 1}, out.Statistics.CategoryBreakdown)

	assert.Equal(t, outDir, filepath.Dir(out.AcceptedFile))
	data, err := os.ReadFile(out.AcceptedFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ys origin walkthrough")
	assert.Contains(t, stderr, "Classifying 2 keywords")
}

func TestClassify_FileAndThreshold(t *testing.T) {
	srv := fakeOllama(t)
	setEnv(t, srv.URL)

	csvPath := filepath.Join(t.TempDir(), "keywords.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("title,views,views_per_year\nys origin walkthrough,1200,300\n"), 0o644))

	stdout, stderr, err := execute(t, "classify", "--topic", "Ys", "--file", csvPath, "--threshold", "95")
	require.NoError(t, err, stderr)

	var out classifyOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out), stdout)
	assert.Equal(t, 0, out.Statistics.Accepted, "confidence 90 is below threshold 95")
	assert.Equal(t, map[string]int{"none": 1}, out.Statistics.CategoryBreakdown)
}

func TestClassify_Errors(t *testing.T) {
	srv := fakeOllama(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no source", []string{"classify", "--topic", "Ys"}},
		{"no topic", []string{"classify", "--input", "a"}},
		{"both sources", []string{"classify", "--topic", "Ys", "--input", "a", "--file", "k.csv"}},
		{"blank topic", []string{"classify", "--topic", " ", "--input", "a"}},
		{"no keywords", []string{"classify", "--topic", "Ys", "--input", ",1,2"}},
		{"missing file", []string{"classify", "--topic", "Ys", "--file", "/nonexistent/keywords.csv"}},
		{"bad mode", []string{"classify", "--topic", "Ys", "--input", "a", "--mode", "three_call"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, srv.URL)
			_, _, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestClassify_InvalidOllamaURL(t *testing.T) {
	setEnv(t, "localhost:11434")

	_, _, err := execute(t, "classify", "--topic", "Ys", "--input", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OLLAMA_BASE_URL")
}

func TestModels(t *testing.T) {
	srv := fakeOllama(t)
	setEnv(t, srv.URL)

	stdout, _, err := execute(t, "models")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Ollama reachable")
	assert.Contains(t, stdout, "llama3.1:8b")
	assert.Contains(t, stdout, "mistral:7b")

	stdout, _, err = execute(t, "models", "--json")
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, true, out["ollama_available"])
	assert.Equal(t, []any{"llama3.1:8b", "mistral:7b"}, out["models"])
}

func TestModels_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	setEnv(t, url)

	stdout, _, err := execute(t, "models")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Ollama not reachable")
}
