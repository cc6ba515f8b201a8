// Package hooks runs registered post-render transformations over rendered
// documents before they are written to disk.
package hooks

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/euforicio/stanza/internal/content"
)

// Hook transforms one rendered document in place. Implementations must be
// pure per document: no shared mutable state, no I/O beyond the document.
type Hook interface {
	// Name identifies the hook in logs.
	Name() string
	// Kinds lists the document kinds the hook applies to. An empty slice
	// means every kind.
	Kinds() []content.Kind
	// Apply mutates the document. A returned error is logged and skipped;
	// a hook can never fail the build.
	Apply(doc *content.Document) error
}

type entry struct {
	hook     Hook
	priority int
}

// Registry holds hooks in execution order. It is constructed explicitly and
// passed where needed rather than living in package state, so the core
// transformations stay testable without a builder around them.
type Registry struct {
	logger  *slog.Logger
	entries []entry
}

// NewRegistry returns an empty registry. If logger is nil, the default slog
// logger is used.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger.With("component", "hooks")}
}

// Register adds a hook. Lower priorities run first; equal priorities run in
// name order so execution stays deterministic.
func (r *Registry) Register(priority int, h Hook) {
	if h == nil {
		return
	}
	r.entries = append(r.entries, entry{hook: h, priority: priority})
	slices.SortStableFunc(r.entries, func(a, b entry) int {
		if a.priority != b.priority {
			return a.priority - b.priority
		}
		return strings.Compare(a.hook.Name(), b.hook.Name())
	})
}

// Names returns the registered hook names in execution order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.hook.Name())
	}
	return names
}

// Run applies every matching hook to the document, in order. Hook errors are
// logged and swallowed; the build never fails because of a hook.
func (r *Registry) Run(doc *content.Document) {
	if doc == nil {
		return
	}
	for _, e := range r.entries {
		if !appliesTo(e.hook, doc.Kind) {
			continue
		}
		if err := e.hook.Apply(doc); err != nil {
			r.logger.Warn("hook failed, document left as rendered",
				slog.String("hook", e.hook.Name()),
				slog.String("path", doc.RelPath),
				slog.Any("err", err))
		}
	}
}

func appliesTo(h Hook, kind content.Kind) bool {
	kinds := h.Kinds()
	if len(kinds) == 0 {
		return true
	}
	return slices.Contains(kinds, kind)
}
