package classifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kwclassify/internal/models"
)

// scriptedGenerator returns queued responses in order and records prompts.
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func classifyOnce(t *testing.T, response string, s Settings) models.Decision {
	t.Helper()
	gen := &scriptedGenerator{responses: []string{response}}
	return New(gen, zerolog.Nop()).Classify(context.Background(), "ys origin walkthrough", "Ys video game series", s)
}

func TestClassify_ThresholdIsInclusive(t *testing.T) {
	s := NewSettings(75, nil, "")

	atThreshold := classifyOnce(t, `{"relevant": true, "relevance_confidence": 75, "category": "walkthrough", "category_confidence": 80}`, s)
	assert.True(t, atThreshold.RelevanceAccepted)
	assert.Equal(t, 75, atThreshold.RelevanceScore)
	assert.Equal(t, "walkthrough", atThreshold.Category)
	assert.Equal(t, 80, atThreshold.CategoryConfidence)

	below := classifyOnce(t, `{"relevant": true, "relevance_confidence": 74, "category": "walkthrough", "category_confidence": 80}`, s)
	assert.False(t, below.RelevanceAccepted)
	assert.Equal(t, 74, below.RelevanceScore)
	assert.Equal(t, models.CategoryNone, below.Category)
	assert.Equal(t, 0, below.CategoryConfidence)
}

func TestClassify_Decisions(t *testing.T) {
	s := NewSettings(75, nil, "")

	tests := []struct {
		name         string
		response     string
		wantAccepted bool
		wantScore    int
		wantCategory string
		wantCatConf  int
	}{
		{
			name:         "accepted with known category",
			response:     `{"relevant": true, "relevance_confidence": 92, "category": "how-to", "category_confidence": 88}`,
			wantAccepted: true, wantScore: 92, wantCategory: "how-to", wantCatConf: 88,
		},
		{
			name:         "unknown category is rewritten",
			response:     `{"relevant": true, "relevance_confidence": 90, "category": "tutorial", "category_confidence": 70}`,
			wantAccepted: true, wantScore: 90, wantCategory: models.CategoryUnknown, wantCatConf: 70,
		},
		{
			name:         "none category is kept",
			response:     `{"relevant": true, "relevance_confidence": 90, "category": "none", "category_confidence": 10}`,
			wantAccepted: true, wantScore: 90, wantCategory: models.CategoryNone, wantCatConf: 10,
		},
		{
			name:         "missing category defaults to unknown",
			response:     `{"relevant": true, "relevance_confidence": 90}`,
			wantAccepted: true, wantScore: 90, wantCategory: models.CategoryUnknown, wantCatConf: 0,
		},
		{
			name:         "irrelevant keyword drops reported category",
			response:     `{"relevant": false, "relevance_confidence": 95, "category": "how-to", "category_confidence": 90}`,
			wantAccepted: false, wantScore: 95, wantCategory: models.CategoryNone, wantCatConf: 0,
		},
		{
			name:         "missing relevant flag rejects",
			response:     `{"relevance_confidence": 99, "category": "how-to", "category_confidence": 90}`,
			wantAccepted: false, wantScore: 99, wantCategory: models.CategoryNone, wantCatConf: 0,
		},
		{
			name:         "numeric strings are coerced",
			response:     `{"relevant": "true", "relevance_confidence": "80", "category": "comparison", "category_confidence": "65"}`,
			wantAccepted: true, wantScore: 80, wantCategory: "comparison", wantCatConf: 65,
		},
		{
			name:         "fractional confidence truncates",
			response:     `{"relevant": true, "relevance_confidence": 75.9, "category": "how-to", "category_confidence": 50.5}`,
			wantAccepted: true, wantScore: 75, wantCategory: "how-to", wantCatConf: 50,
		},
		{
			name:         "out of range confidence is clamped",
			response:     `{"relevant": true, "relevance_confidence": 250, "category": "how-to", "category_confidence": -4}`,
			wantAccepted: true, wantScore: 100, wantCategory: "how-to", wantCatConf: 0,
		},
		{
			name:         "json inside prose",
			response:     `Here is my analysis: {"relevant": true, "relevance_confidence": 81, "category": "informational", "category_confidence": 77} Hope that helps!`,
			wantAccepted: true, wantScore: 81, wantCategory: "informational", wantCatConf: 77,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := classifyOnce(t, tt.response, s)
			assert.Equal(t, "ys origin walkthrough", d.Keyword)
			assert.Equal(t, tt.wantAccepted, d.RelevanceAccepted)
			assert.Equal(t, tt.wantScore, d.RelevanceScore)
			assert.Equal(t, tt.wantCategory, d.Category)
			assert.Equal(t, tt.wantCatConf, d.CategoryConfidence)
		})
	}
}

func TestClassify_FailuresDefaultReject(t *testing.T) {
	s := DefaultSettings()
	want := models.DefaultReject("ys origin walkthrough")

	tests := []struct {
		name string
		gen  *scriptedGenerator
	}{
		{"model failure", &scriptedGenerator{errs: []error{errors.New("connection refused")}}},
		{"unparseable response", &scriptedGenerator{responses: []string{"I think it is relevant!"}}},
		{"non-integer relevance confidence", &scriptedGenerator{responses: []string{`{"relevant": true, "relevance_confidence": "very high"}`}}},
		{"null category confidence", &scriptedGenerator{responses: []string{`{"relevant": true, "relevance_confidence": 90, "category_confidence": null}`}}},
		{"list confidence", &scriptedGenerator{responses: []string{`{"relevant": true, "relevance_confidence": [90]}`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.gen, zerolog.Nop()).Classify(context.Background(), "ys origin walkthrough", "Ys", s)
			assert.Equal(t, want, d)
		})
	}
}

func TestClassify_PromptRendering(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`{"relevant": false}`}}
	s := NewSettings(50, []string{"how-to", "review"}, "T={topic} K={keyword}\n{categories}\n{\"relevant\": true}")

	New(gen, zerolog.Nop()).Classify(context.Background(), "ys 8 review", "Ys video game series", s)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, "T=Ys video game series K=ys 8 review\n- how-to\n- review\n{\"relevant\": true}", gen.prompts[0])
}

func TestClassify_DefaultPromptContainsInputs(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`{"relevant": false}`}}

	New(gen, zerolog.Nop()).Classify(context.Background(), "yes button", "Ys video game series", DefaultSettings())

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "Topic: Ys video game series")
	assert.Contains(t, prompt, `Keyword: "yes button"`)
	assert.Contains(t, prompt, "- how-to\n- comparison\n- walkthrough\n- informational\n- transactional")
	assert.NotContains(t, prompt, "{topic}")
	assert.NotContains(t, prompt, "{categories}")
}

func TestClassify_TwoCall(t *testing.T) {
	s := NewSettings(75, nil, "").WithTwoCall("", "")

	t.Run("accepted keyword makes both calls", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{
			`{"relevant": true, "confidence": 90, "reason": "names the game"}`,
			`{"category": "walkthrough", "confidence": 85, "reason": "full playthrough"}`,
		}}

		d := New(gen, zerolog.Nop()).Classify(context.Background(), "ys origin walkthrough", "Ys", s)

		assert.Len(t, gen.prompts, 2)
		assert.True(t, strings.Contains(gen.prompts[0], "Topic: Ys"))
		assert.True(t, d.RelevanceAccepted)
		assert.Equal(t, 90, d.RelevanceScore)
		assert.Equal(t, "walkthrough", d.Category)
		assert.Equal(t, 85, d.CategoryConfidence)
		assert.Equal(t, "Relevance: names the game | Category: full playthrough", d.Reason)
	})

	t.Run("rejected keyword skips category call", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{`{"relevant": false, "confidence": 95, "reason": "unrelated"}`}}

		d := New(gen, zerolog.Nop()).Classify(context.Background(), "yes button", "Ys", s)

		assert.Len(t, gen.prompts, 1)
		assert.False(t, d.RelevanceAccepted)
		assert.Equal(t, models.CategoryNone, d.Category)
		assert.Equal(t, 0, d.CategoryConfidence)
	})

	t.Run("relevance failure rejects", func(t *testing.T) {
		gen := &scriptedGenerator{errs: []error{errors.New("timeout")}}

		d := New(gen, zerolog.Nop()).Classify(context.Background(), "ys", "Ys", s)

		assert.False(t, d.RelevanceAccepted)
		assert.Equal(t, 0, d.RelevanceScore)
		assert.Equal(t, models.CategoryNone, d.Category)
		assert.Contains(t, d.Reason, "Failed to analyze")
	})

	t.Run("category failure keeps acceptance with unknown", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{`{"relevant": true, "confidence": 80}`, "garbage"}}

		d := New(gen, zerolog.Nop()).Classify(context.Background(), "ys", "Ys", s)

		assert.True(t, d.RelevanceAccepted)
		assert.Equal(t, models.CategoryUnknown, d.Category)
		assert.Equal(t, "Relevance: No reason provided | Category: Failed to classify", d.Reason)
	})
}

// Rejected decisions never carry a category signal, whatever the model says.
func TestClassify_RejectedInvariant(t *testing.T) {
	responses := []string{
		`{"relevant": false, "relevance_confidence": 10, "category": "how-to", "category_confidence": 99}`,
		`{"relevant": true, "relevance_confidence": 10, "category": "bogus", "category_confidence": 99}`,
		`{"relevant": true, "relevance_confidence": 74, "category": "how-to", "category_confidence": 50}`,
		`nonsense`,
		`{"relevant": "no", "category": "comparison", "category_confidence": 70}`,
	}

	for _, resp := range responses {
		d := classifyOnce(t, resp, NewSettings(75, nil, ""))
		require.False(t, d.RelevanceAccepted, resp)
		assert.Equal(t, models.CategoryNone, d.Category, resp)
		assert.Equal(t, 0, d.CategoryConfidence, resp)
	}
}
