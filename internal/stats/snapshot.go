// Package stats derives the project statistics served by the landing page.
//
// A Snapshot starts from fixed baseline values. Refreshing it against a
// project root overwrites the handful of fields that can be read from disk:
// the manifest version, the number of test files and the number of builtin
// plugins. Every other field is a published figure that only changes with a
// new release of the landing page.
package stats

import "time"

// TimestampLayout is the ISO-8601 UTC layout used for LastUpdated. It is
// fixed width so lexical order matches chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Snapshot is the flat record returned by /api/stats.
type Snapshot struct {
	TestsPassing          int    `json:"tests_passing" yaml:"tests_passing"`
	TestFiles             int    `json:"test_files" yaml:"test_files"`
	Providers             int    `json:"providers" yaml:"providers"`
	PipelineStages        int    `json:"pipeline_stages" yaml:"pipeline_stages"`
	QualityGates          int    `json:"quality_gates" yaml:"quality_gates"`
	BuiltinPlugins        int    `json:"builtin_plugins" yaml:"builtin_plugins"`
	ReasoningStrategies   int    `json:"reasoning_strategies" yaml:"reasoning_strategies"`
	AgentRoles            int    `json:"agent_roles" yaml:"agent_roles"`
	CompetitiveBenchmarks int    `json:"competitive_benchmarks" yaml:"competitive_benchmarks"`
	BenchmarksAhead       int    `json:"benchmarks_ahead" yaml:"benchmarks_ahead"`
	BenchmarksCompetitive int    `json:"benchmarks_competitive" yaml:"benchmarks_competitive"`
	BenchmarksReady       int    `json:"benchmarks_ready" yaml:"benchmarks_ready"`
	PackageSizeKB         int    `json:"package_size_kb" yaml:"package_size_kb"`
	BuildTimeMS           int    `json:"build_time_ms" yaml:"build_time_ms"`
	Version               string `json:"version" yaml:"version"`
	LastCommit            string `json:"last_commit" yaml:"last_commit"`
	LastUpdated           string `json:"last_updated" yaml:"last_updated"`
}

// DefaultSnapshot returns the baseline figures.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		TestsPassing:          1240,
		TestFiles:             93,
		Providers:             10,
		PipelineStages:        8,
		QualityGates:          6,
		BuiltinPlugins:        5,
		ReasoningStrategies:   6,
		AgentRoles:            9,
		CompetitiveBenchmarks: 36,
		BenchmarksAhead:       24,
		BenchmarksCompetitive: 8,
		BenchmarksReady:       3,
		PackageSizeKB:         682,
		BuildTimeMS:           109,
		Version:               "1.0.0-beta.1",
	}
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
