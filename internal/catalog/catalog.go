// Package catalog holds the fixed benchmark and pipeline tables published on
// the landing page. The tables are decoded once from an embedded YAML document
// and never change while the process runs.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Status is the outcome of a competitive benchmark.
type Status string

const (
	StatusAhead       Status = "ahead"
	StatusCompetitive Status = "competitive"
	StatusReady       Status = "ready"
	StatusGap         Status = "gap"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAhead, StatusCompetitive, StatusReady, StatusGap:
		return true
	}
	return false
}

// BenchmarkResult is one row of a benchmark table.
type BenchmarkResult struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
	Status   Status `json:"status" yaml:"status"`
	Before   string `json:"before" yaml:"before"`
	After    string `json:"after" yaml:"after"`
}

// Category groups the results of one benchmark category.
type Category struct {
	Name    string            `json:"category" yaml:"category"`
	Results []BenchmarkResult `json:"results" yaml:"results"`
}

// Benchmarks is the ordered category list. It encodes to JSON as an object
// mapping category name to results, keeping category order.
type Benchmarks []Category

// MarshalJSON writes the categories as a single object in declaration order.
func (b Benchmarks) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		results := c.Results
		if results == nil {
			results = []BenchmarkResult{}
		}
		value, err := json.Marshal(results)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Map returns the categories keyed by name.
func (b Benchmarks) Map() map[string][]BenchmarkResult {
	m := make(map[string][]BenchmarkResult, len(b))
	for _, c := range b {
		m[c.Name] = append([]BenchmarkResult(nil), c.Results...)
	}
	return m
}

// Count returns the number of results with the given status across all
// categories.
func (b Benchmarks) Count(status Status) int {
	n := 0
	for _, c := range b {
		for _, r := range c.Results {
			if r.Status == status {
				n++
			}
		}
	}
	return n
}

// PipelineStage describes one stage of the agent pipeline.
type PipelineStage struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Icon        string `json:"icon" yaml:"icon"`
	Description string `json:"description" yaml:"description"`
	Color       string `json:"color" yaml:"color"`
}

// Catalog is the immutable set of published tables.
type Catalog struct {
	benchmarks Benchmarks
	stages     []PipelineStage
}

type document struct {
	Benchmarks []Category      `yaml:"benchmarks"`
	Pipeline   []PipelineStage `yaml:"pipeline"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(doc.Benchmarks))
	for ci := range doc.Benchmarks {
		c := &doc.Benchmarks[ci]
		if c.Name == "" {
			return nil, fmt.Errorf("benchmark category %d has no name", ci)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate benchmark category %q", c.Name)
		}
		seen[c.Name] = true
		for ri := range c.Results {
			r := &c.Results[ri]
			if r.Category == "" {
				r.Category = c.Name
			}
			if r.Category != c.Name {
				return nil, fmt.Errorf("benchmark %q declares category %q inside %q", r.Name, r.Category, c.Name)
			}
			if !r.Status.Valid() {
				return nil, fmt.Errorf("benchmark %q has unknown status %q", r.Name, r.Status)
			}
		}
	}

	for i, s := range doc.Pipeline {
		if s.ID != i+1 {
			return nil, fmt.Errorf("pipeline stage %q has id %d, want %d", s.Name, s.ID, i+1)
		}
	}

	return &Catalog{benchmarks: doc.Benchmarks, stages: doc.Pipeline}, nil
}

var loadDefault = sync.OnceValue(func() *Catalog {
	c, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded document is invalid: %v", err))
	}
	return c
})

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	return loadDefault()
}

// Benchmarks returns a copy of the benchmark categories.
func (c *Catalog) Benchmarks() Benchmarks {
	out := make(Benchmarks, len(c.benchmarks))
	for i, cat := range c.benchmarks {
		out[i] = Category{
			Name:    cat.Name,
			Results: append([]BenchmarkResult(nil), cat.Results...),
		}
	}
	return out
}

// PipelineStages returns a copy of the pipeline stages in id order.
func (c *Catalog) PipelineStages() []PipelineStage {
	return append([]PipelineStage(nil), c.stages...)
}
