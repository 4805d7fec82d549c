package catalog

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPipelineStages(t *testing.T) {
	stages := Default().PipelineStages()

	require.Len(t, stages, 8)
	names := make([]string, 0, len(stages))
	for i, s := range stages {
		assert.Equal(t, i+1, s.ID)
		assert.NotEmpty(t, s.Icon)
		assert.True(t, strings.HasPrefix(s.Color, "#"), "color %q", s.Color)
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"RECALL", "ANALYZE", "ENHANCE", "DECOMPOSE", "PLAN", "EXECUTE", "VERIFY", "MEMORIZE"}, names)
}

func TestDefaultBenchmarks(t *testing.T) {
	benchmarks := Default().Benchmarks()

	require.Len(t, benchmarks, 3)
	assert.Equal(t, "AI Agent Frameworks", benchmarks[0].Name)
	assert.Equal(t, "Quality Assurance", benchmarks[1].Name)
	assert.Equal(t, "Observability", benchmarks[2].Name)

	for _, c := range benchmarks {
		for _, r := range c.Results {
			assert.Equal(t, c.Name, r.Category)
			assert.True(t, r.Status.Valid())
		}
	}
	assert.Equal(t, 5, benchmarks.Count(StatusAhead))
	assert.Equal(t, 5, benchmarks.Count(StatusCompetitive))
	assert.Zero(t, benchmarks.Count(StatusGap))
}

func TestBenchmarksJSONKeepsCategoryOrder(t *testing.T) {
	data, err := json.Marshal(Default().Benchmarks())
	require.NoError(t, err)

	body := string(data)
	ai := strings.Index(body, `"AI Agent Frameworks"`)
	qa := strings.Index(body, `"Quality Assurance"`)
	obs := strings.Index(body, `"Observability"`)
	assert.True(t, ai >= 0 && ai < qa && qa < obs, body)

	var decoded map[string][]BenchmarkResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Default().Benchmarks().Map(), decoded)
	assert.Equal(t, "Multi-Agent Orchestration", decoded["AI Agent Frameworks"][0].Name)
}

func TestEmptyBenchmarksJSON(t *testing.T) {
	data, err := json.Marshal(Benchmarks{{Name: "Empty"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Empty":[]}`, string(data))

	data, err = json.Marshal(Benchmarks{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := Default()

	stages := c.PipelineStages()
	stages[0].Name = "MUTATED"
	benchmarks := c.Benchmarks()
	benchmarks[0].Results[0].Name = "MUTATED"

	assert.Equal(t, "RECALL", c.PipelineStages()[0].Name)
	assert.Equal(t, "Multi-Agent Orchestration", c.Benchmarks()[0].Results[0].Name)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown status",
			doc: `
benchmarks:
  - category: A
    results:
      - {name: x, status: winning, before: a, after: b}
`,
			want: "unknown status",
		},
		{
			name: "non sequential ids",
			doc: `
pipeline:
  - {id: 1, name: ONE}
  - {id: 3, name: THREE}
`,
			want: "want 2",
		},
		{
			name: "duplicate category",
			doc: `
benchmarks:
  - category: A
  - category: A
`,
			want: "duplicate",
		},
		{
			name: "mismatched category",
			doc: `
benchmarks:
  - category: A
    results:
      - {name: x, category: B, status: gap, before: a, after: b}
`,
			want: "declares category",
		},
		{
			name: "bad yaml",
			doc:  "benchmarks: [",
			want: "decode catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
