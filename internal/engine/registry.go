package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Config is the minimal configuration needed to open a Session.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend opener; validation is backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Opener constructs a Session for one backend kind.
type Opener func(ctx context.Context, cfg Config) (Session, error)

var (
	mu      sync.RWMutex
	openers = map[string]Opener{}
)

// Register makes a backend available under kind (e.g. "postgres", "sqlite").
//
// When to use:
//   - Call Register from an init() function in a backend package.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. Two backends claiming one kind would make
//     Open ambiguous, so this fails at startup.
func Register(kind string, f Opener) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("engine: Register called with empty kind")
	}
	if f == nil {
		panic("engine: Register called with nil opener")
	}
	if _, exists := openers[kind]; exists {
		panic(fmt.Sprintf("engine: opener already registered for kind=%q", kind))
	}
	openers[kind] = f
}

// Open constructs a Session using the registered backend opener.
//
// Edge cases:
//   - cfg.Kind is normalized with NormalizeKind before lookup.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the backend opener returns.
func Open(ctx context.Context, cfg Config) (Session, error) {
	kind := NormalizeKind(cfg.Kind)
	if kind == "" {
		return nil, fmt.Errorf("engine: missing kind")
	}

	mu.RLock()
	f := openers[kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("engine: unsupported kind=%s (registered: %s)", kind, strings.Join(Kinds(), ", "))
	}
	cfg.Kind = kind
	return f(ctx, cfg)
}

// Kinds returns the registered backend kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(openers))
	for k := range openers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NormalizeKind lowercases s and folds common aliases onto canonical kinds.
// Unknown values are returned lowercased and trimmed so Open can report them.
func NormalizeKind(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "postgres", "postgresql", "pg":
		return "postgres"
	case "mssql", "sqlserver":
		return "mssql"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return s
	}
}
