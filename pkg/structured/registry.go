package structured

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/logger"
)

// Parser builds a layout from a canonical name of a variable-arity family
type Parser func(name string) (Layout, error)

type parserEntry struct {
	prefix string
	parse  Parser
}

// Registry maps canonical dtype names to layouts. Registration is explicit
// and idempotent; a registry is meant to be populated at startup and only
// read afterwards.
type Registry struct {
	mu      sync.RWMutex
	layouts map[string]Layout
	parsers []parserEntry
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry. It starts empty.
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		layouts: make(map[string]Layout),
	}
}

func (r *Registry) log() *zap.Logger {
	return logger.Component("dtype_registry")
}

// Register adds a fixed layout under its canonical name. Registering an
// equal layout again is a no-op; a different layout under a taken name fails.
func (r *Registry) Register(l Layout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := l.Name()
	if existing, ok := r.layouts[name]; ok {
		if existing.Equal(l) {
			return nil
		}
		return errors.Newf(errors.ErrorTypeConfig, "dtype %q already registered with a different layout", name)
	}

	r.layouts[name] = l
	r.log().Debug("dtype registered", zap.String("name", name), zap.Strings("fields", FieldNames(l)))
	return nil
}

// RegisterParser adds a parser for names starting with prefix. Registering
// the same prefix again is a no-op.
func (r *Registry) RegisterParser(prefix string, p Parser) error {
	if prefix == "" || p == nil {
		return errors.New(errors.ErrorTypeConfig, "parser registration requires a prefix and a parser")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.parsers {
		if e.prefix == prefix {
			return nil
		}
	}
	// Copy on write: Lookup iterates a snapshot taken outside the lock.
	parsers := make([]parserEntry, 0, len(r.parsers)+1)
	parsers = append(parsers, r.parsers...)
	parsers = append(parsers, parserEntry{prefix: prefix, parse: p})
	// Longest prefix first so "dist[categorical" wins over a shorter family prefix.
	sort.SliceStable(parsers, func(i, j int) bool {
		return len(parsers[i].prefix) > len(parsers[j].prefix)
	})
	r.parsers = parsers
	r.log().Debug("dtype parser registered", zap.String("prefix", prefix))
	return nil
}

// Lookup resolves a canonical name: exact fixed layouts first, then the
// parser with the longest matching prefix.
func (r *Registry) Lookup(name string) (Layout, error) {
	r.mu.RLock()
	l, ok := r.layouts[name]
	parsers := r.parsers
	r.mu.RUnlock()

	if ok {
		return l, nil
	}
	for _, e := range parsers {
		if strings.HasPrefix(name, e.prefix) {
			return e.parse(name)
		}
	}
	return nil, errors.Newf(errors.ErrorTypeNotFound, "no dtype registered for %q", name).
		WithDetail("name", name)
}

// Names returns the registered fixed layout names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prefixes returns the registered parser prefixes, sorted
func (r *Registry) Prefixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.parsers))
	for i, e := range r.parsers {
		out[i] = e.prefix
	}
	sort.Strings(out)
	return out
}
