package config

import (
	"strings"

	"profiler/internal/engine"
)

// Severity classifies a validation Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding. Path uses the job file's field names
// ("config.table", "engine.kind", ...).
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

// SupportedEngines lists the engine kinds a job may name, after alias
// normalization with engine.NormalizeKind.
var SupportedEngines = []string{"mssql", "postgres", "sqlite"}

// Validate checks a fully merged job (file values with flag overrides applied).
//
// It never fails fast: every finding is returned so the operator can fix a
// job file in one pass. Callers treat any SeverityError as fatal.
//
// Checks:
//   - config.table is required and non-blank.
//   - config.database, when present, is non-blank.
//   - Unknown config keys are warnings (the generator ignores them).
//   - engine.kind, when set, must be a supported kind.
//   - metrics.backend must be "", "none" or "datadog".
//   - metrics.flush_every must parse as a positive duration when set.
func Validate(j Job) []Issue {
	var issues []Issue
	add := func(sev Severity, path, msg string) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: msg})
	}

	if j.Config.Get(KeyTable) == "" {
		add(SeverityError, "config.table", "required")
	}
	if v, ok := j.Config[KeyDatabase]; ok && strings.TrimSpace(v) == "" {
		add(SeverityError, "config.database", "must not be blank when present")
	}
	for _, k := range j.Config.Keys() {
		if k != KeyTable && k != KeyDatabase {
			add(SeverityWarning, "config."+k, "unknown key; ignored")
		}
	}

	if kind := strings.TrimSpace(j.Engine.Kind); kind != "" && !supportedEngine(engine.NormalizeKind(kind)) {
		add(SeverityError, "engine.kind", "unsupported kind "+kind+" (want one of "+strings.Join(SupportedEngines, ", ")+")")
	}

	switch strings.ToLower(strings.TrimSpace(j.Metrics.Backend)) {
	case "", "none", "datadog":
	default:
		add(SeverityError, "metrics.backend", "unsupported backend "+j.Metrics.Backend+" (want datadog or none)")
	}
	if d, err := j.Metrics.FlushInterval(); err != nil {
		add(SeverityError, "metrics.flush_every", err.Error())
	} else if d < 0 {
		add(SeverityError, "metrics.flush_every", "must be positive")
	}

	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

func supportedEngine(kind string) bool {
	for _, k := range SupportedEngines {
		if k == kind {
			return true
		}
	}
	return false
}
