// Package renderer converts markdown to HTML with caching and syntax highlighting.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	goldmarkmeta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmrenderer "github.com/yuin/goldmark/renderer"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.abhg.dev/goldmark/anchor"

	"github.com/euforicio/stanza/internal/renderer/transform"
)

// Metadata captures optional frontmatter data rendered alongside a document.
type Metadata struct {
	Raw         map[string]any
	Title       string
	Description string
	Tags        []string
	Date        time.Time
}

// IsZero reports whether the metadata carries any meaningful values.
func (m Metadata) IsZero() bool {
	if m.Title != "" || m.Description != "" || len(m.Tags) > 0 || !m.Date.IsZero() {
		return false
	}
	return len(m.Raw) == 0
}

// Document represents a rendered markdown file.
type Document struct {
	HTML     string
	Metadata Metadata
	Modified time.Time
}

type cacheEntry struct {
	modTime time.Time
	doc     Document
}

type cacheKey string

// Service renders markdown into HTML with caching.
// It uses goldmark with GitHub-flavored markdown extensions, chroma syntax
// highlighting, heading anchors, and YAML frontmatter. Fenced mermaid blocks
// are kept in their plain <pre><code class="language-mermaid"> shape so the
// post-render diagram hook can rewrite them; the highlighter never sees them.
// Rendered documents are cached by path and modification time.
type Service struct {
	md     goldmark.Markdown
	logger *slog.Logger
	cache  sync.Map // map[cacheKey]cacheEntry
}

// linkTransformer rewrites relative .md links so cross references keep working
// in the generated site, where every markdown source becomes an .html file.
type linkTransformer struct{}

func (t *linkTransformer) Transform(node *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			link.Destination = []byte(rewriteMarkdownLink(string(link.Destination)))
		}
		return ast.WalkContinue, nil
	})
}

func rewriteMarkdownLink(dest string) string {
	if dest == "" || strings.HasPrefix(dest, "#") ||
		strings.HasPrefix(dest, "http://") || strings.HasPrefix(dest, "https://") {
		return dest
	}

	target, fragment, _ := strings.Cut(dest, "#")
	ext := strings.ToLower(path.Ext(target))
	if ext != ".md" && ext != ".markdown" {
		return dest
	}

	target = strings.TrimSuffix(target, path.Ext(target)) + ".html"
	if fragment != "" {
		target += "#" + fragment
	}
	return target
}

// NewService constructs a markdown renderer with GitHub-flavored markdown
// support. If logger is nil, the default slog logger is used.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	highlight := highlighting.NewHighlighting(
		highlighting.WithStyle("github-dark"),
		highlighting.WithFormatOptions(
			html.WithLineNumbers(false),
			html.WithClasses(true),
		),
	)

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			goldmarkmeta.Meta,
			highlight,
			&anchor.Extender{
				Position: anchor.After,
			},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
			parser.WithASTTransformers(
				util.Prioritized(transform.NewDiagramFences(), 50),
				util.Prioritized(&linkTransformer{}, 100),
			),
		),
		goldmark.WithRendererOptions(
			gmrenderer.WithNodeRenderers(
				util.Prioritized(transform.NewDiagramFenceRenderer(), 100),
			),
			// Raw HTML is allowed: blog content is author-trusted.
			htmlrenderer.WithUnsafe(),
			htmlrenderer.WithXHTML(),
		),
	)

	return &Service{
		md:     md,
		logger: logger.With("component", "renderer"),
	}
}

// Render converts markdown content to HTML, caching results by path and
// modification time. If a cached entry exists with a matching modification
// time it is returned immediately.
func (s *Service) Render(_ context.Context, path string, modTime time.Time, content []byte) (Document, error) {
	key := cacheKey(path)

	if entry, ok := s.cache.Load(key); ok {
		if cached, ok := entry.(cacheEntry); ok {
			if !cached.modTime.IsZero() && modTime.Equal(cached.modTime) {
				return cached.doc, nil
			}
		}
	}

	parserCtx := parser.NewContext()
	buf := bytes.NewBuffer(nil)

	if err := s.md.Convert(content, buf, parser.WithContext(parserCtx)); err != nil {
		return Document{}, fmt.Errorf("render markdown: %w", err)
	}

	doc := Document{
		HTML:     buf.String(),
		Metadata: extractMetadata(parserCtx),
		Modified: modTime,
	}

	s.cache.Store(key, cacheEntry{modTime: modTime, doc: doc})
	return doc, nil
}

// Invalidate removes the cached entry for the given path.
func (s *Service) Invalidate(path string) {
	s.cache.Delete(cacheKey(path))
}

func extractMetadata(ctx parser.Context) Metadata {
	raw := goldmarkmeta.Get(ctx)
	var meta Metadata
	if raw == nil {
		return meta
	}

	meta.Raw = make(map[string]any)
	for k, v := range raw {
		meta.Raw[k] = v
		switch k {
		case "title":
			if str, ok := toString(v); ok {
				meta.Title = str
			}
		case "description", "summary":
			if str, ok := toString(v); ok {
				meta.Description = str
			}
		case "tags", "keywords":
			meta.Tags = toStringSlice(v)
		case "date":
			if t, ok := toTime(v); ok {
				meta.Date = t
			}
		}
	}

	if len(meta.Raw) == 0 {
		meta.Raw = nil
	}

	return meta
}

func toString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return "", false
	}
}

func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if str, ok := toString(item); ok {
				out = append(out, str)
			}
		}
		return out
	case []string:
		return append([]string(nil), vv...)
	default:
		if str, ok := toString(v); ok {
			return []string{str}
		}
		return nil
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func toTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		trimmed := strings.TrimSpace(val)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
