package diagram

import (
	"log/slog"

	"github.com/euforicio/stanza/internal/content"
)

const htmlExt = ".html"

// Hook adapts Rewrite to the post-render hook pipeline. Only documents with
// an .html output are parsed; every other format (feeds, search indexes)
// passes through byte-identical.
type Hook struct {
	logger *slog.Logger
}

// NewHook returns the diagram container hook. If logger is nil, the default
// slog logger is used.
func NewHook(logger *slog.Logger) *Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hook{logger: logger.With("component", "diagram")}
}

// Name implements hooks.Hook.
func (h *Hook) Name() string { return "mermaid-containers" }

// Kinds implements hooks.Hook: posts and pages carry diagram blocks.
func (h *Hook) Kinds() []content.Kind {
	return []content.Kind{content.KindPost, content.KindPage}
}

// Apply implements hooks.Hook.
func (h *Hook) Apply(doc *content.Document) error {
	if doc.OutputExt() != htmlExt {
		return nil
	}
	rewritten, n := Rewrite(doc.Content)
	if n == 0 {
		return nil
	}
	doc.Content = rewritten
	h.logger.Debug("rewrote diagram blocks",
		slog.String("path", doc.RelPath),
		slog.Int("blocks", n))
	return nil
}
