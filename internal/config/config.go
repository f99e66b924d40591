// Package config holds the profiler's configuration surface: the per-run
// key/value mapping handed to the report generator, the job file that a
// scheduler (or a human) keeps next to the binary, validation of both, and
// DSN resolution from flags and environment.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Recognized keys of Values.
const (
	KeyTable    = "table"
	KeyDatabase = "database"
)

// Values is the string mapping a profile run is configured with.
type Values map[string]string

// Get returns the value for key with surrounding whitespace removed.
// Missing keys return "".
func (v Values) Get(key string) string {
	return strings.TrimSpace(v[key])
}

// Clone returns a copy of v. A nil v clones to an empty, non-nil map.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Keys returns the keys of v sorted.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseAssignment splits a "key=value" flag argument.
//
// Edge cases:
//   - Only the first '=' separates; "a=b=c" yields ("a", "b=c").
//   - The key is trimmed; the value is kept verbatim.
//
// Errors:
//   - Returns an error when '=' is missing or the key is empty.
func ParseAssignment(s string) (key, value string, err error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf("config: %q is not key=value", s)
	}
	k = strings.TrimSpace(k)
	if k == "" {
		return "", "", errors.New("config: empty key in assignment")
	}
	return k, v, nil
}

// Job is the on-disk job file.
//
// Example (YAML):
//
//	job: nightly_users
//	engine:
//	  kind: postgres
//	  dsn: "${PROFILE_DSN}"
//	config:
//	  database: analytics
//	  table: users
//	metrics:
//	  backend: datadog
//	  tags: ["team:data"]
//	  flush_every: 30s
type Job struct {
	Job     string  `json:"job" yaml:"job"`
	Engine  Engine  `json:"engine" yaml:"engine"`
	Config  Values  `json:"config" yaml:"config"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// Engine selects and addresses the query engine.
type Engine struct {
	Kind string `json:"kind" yaml:"kind"`
	DSN  string `json:"dsn" yaml:"dsn"`
}

// Metrics configures the metrics backend for the run.
type Metrics struct {
	// Backend is "datadog" or "none". Empty means "none".
	Backend string   `json:"backend" yaml:"backend"`
	Tags    []string `json:"tags" yaml:"tags"`

	// FlushEvery is a time.ParseDuration string. Empty uses the backend default.
	FlushEvery string `json:"flush_every" yaml:"flush_every"`
}

// FlushInterval parses FlushEvery. An empty value yields 0.
func (m Metrics) FlushInterval() (time.Duration, error) {
	s := strings.TrimSpace(m.FlushEvery)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: metrics.flush_every: %w", err)
	}
	return d, nil
}
