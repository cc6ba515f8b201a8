// Package builder generates the static site: it scans content, renders
// markdown, runs post-render hooks over every document, and writes the
// result plus index, feed, search index, and assets to the output directory.
package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/euforicio/stanza/internal/content"
	"github.com/euforicio/stanza/internal/diagram"
	"github.com/euforicio/stanza/internal/hooks"
	"github.com/euforicio/stanza/internal/renderer"
	sitestatic "github.com/euforicio/stanza/static"
)

const (
	indexHTML    = "index.html"
	feedXML      = "feed.xml"
	searchIndexJ = "search-index.json"
)

// Options configure a single build.
type Options struct {
	ContentDir          string
	OutputDir           string
	AssetsDir           string // optional override for the embedded asset bundle
	SiteTitle           string
	SiteSubtitle        string
	BaseURL             string
	AssetPrefix         string
	IncludeHidden       bool
	GenerateSearchIndex bool
	CleanOutput         bool
}

// Builder renders markdown content into a static HTML site.
type Builder struct {
	renderer  *renderer.Service
	templates *templateRenderer
	hooks     *hooks.Registry
	logger    *slog.Logger
}

// New constructs a builder with the default post-render hooks registered.
func New(logger *slog.Logger) (*Builder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := newTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	registry := hooks.NewRegistry(logger)
	registry.Register(100, diagram.NewHook(logger))

	return &Builder{
		renderer:  renderer.NewService(logger),
		templates: tmpl,
		hooks:     registry,
		logger:    logger.With("component", "builder"),
	}, nil
}

// Hooks exposes the post-render hook registry so callers can add their own.
func (b *Builder) Hooks() *hooks.Registry {
	return b.hooks
}

// Build walks the content tree rooted at opts.ContentDir and writes the
// generated site to opts.OutputDir.
func (b *Builder) Build(ctx context.Context, opts Options) error {
	if strings.TrimSpace(opts.ContentDir) == "" {
		return errors.New("content directory is required")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return errors.New("output directory is required")
	}
	if strings.TrimSpace(opts.AssetPrefix) == "" {
		opts.AssetPrefix = "assets"
	}
	if strings.TrimSpace(opts.SiteTitle) == "" {
		opts.SiteTitle = "stanza"
	}

	contentDir, err := filepath.Abs(opts.ContentDir)
	if err != nil {
		return fmt.Errorf("resolve content dir: %w", err)
	}
	outputDir, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	if err := b.prepareOutputDir(outputDir, opts.CleanOutput); err != nil {
		return err
	}

	startedAt := time.Now().UTC()

	docs, err := content.Scan(ctx, contentDir, content.Options{IncludeHidden: opts.IncludeHidden})
	if err != nil {
		return fmt.Errorf("scan content: %w", err)
	}

	site := siteViewData{
		Title:       opts.SiteTitle,
		Subtitle:    opts.SiteSubtitle,
		BaseURL:     strings.TrimRight(opts.BaseURL, "/"),
		AssetPrefix: opts.AssetPrefix,
		GeneratedAt: startedAt,
	}

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := b.buildDocument(ctx, doc); err != nil {
			return fmt.Errorf("build %s: %w", doc.RelPath, err)
		}
		if err := b.writePage(outputDir, site, doc); err != nil {
			return fmt.Errorf("write %s: %w", doc.RelPath, err)
		}
	}

	posts := collectPosts(docs)

	if err := b.writeIndex(outputDir, site, posts); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	if err := b.writeFeed(outputDir, site, posts); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}

	if opts.GenerateSearchIndex {
		if err := writeSearchIndex(outputDir, site.GeneratedAt, docs); err != nil {
			return fmt.Errorf("write search index: %w", err)
		}
	}

	if err := b.copyAssetBundle(filepath.Join(outputDir, filepath.FromSlash(opts.AssetPrefix)), opts.AssetsDir); err != nil {
		return err
	}

	b.logger.Info("build complete",
		slog.Int("documents", len(docs)),
		slog.Int("posts", len(posts)),
		slog.String("output", outputDir),
		slog.Duration("duration", time.Since(startedAt)))
	return nil
}

// buildDocument renders one markdown source, fills in frontmatter-derived
// fields, and runs the post-render hooks over the rendered fragment.
func (b *Builder) buildDocument(ctx context.Context, doc *content.Document) error {
	raw, err := os.ReadFile(doc.SourcePath) //nolint:gosec // path produced by content.Scan
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	rendered, err := b.renderer.Render(ctx, doc.SourcePath, doc.Modified, raw)
	if err != nil {
		return err
	}

	doc.Title = firstNonEmpty(rendered.Metadata.Title, titleFromPath(doc.RelPath))
	doc.Summary = rendered.Metadata.Description
	doc.Tags = rendered.Metadata.Tags
	doc.Date = rendered.Metadata.Date
	if doc.Date.IsZero() {
		doc.Date = doc.Modified
	}
	doc.Content = rendered.HTML

	b.hooks.Run(doc)
	return nil
}

func (b *Builder) writePage(outputDir string, site siteViewData, doc *content.Document) error {
	page := pageViewData{
		Title:  doc.Title,
		URL:    doc.OutputPath,
		Date:   doc.Date,
		Tags:   doc.Tags,
		IsPost: doc.Kind == content.KindPost,
		HTML:   template.HTML(doc.Content), //nolint:gosec // fragment from trusted renderer
	}
	if site.BaseURL != "" {
		page.Canonical = site.BaseURL + "/" + doc.OutputPath
	}

	return b.renderToFile(outputDir, doc.OutputPath, "layout", layoutViewData{Site: site, Page: page})
}

func (b *Builder) writeIndex(outputDir string, site siteViewData, posts []*content.Document) error {
	view := indexViewData{Site: site}
	for _, post := range posts {
		view.Posts = append(view.Posts, postListItem{
			Title:   post.Title,
			URL:     post.OutputPath,
			Summary: post.Summary,
			Date:    post.Date,
			Tags:    post.Tags,
		})
	}
	return b.renderToFile(outputDir, indexHTML, "index", view)
}

// writeFeed emits the Atom feed. The feed document flows through the same
// hook pipeline as every page; its .xml output keeps the diagram hook from
// parsing it, so it must come out byte-identical.
func (b *Builder) writeFeed(outputDir string, site siteViewData, posts []*content.Document) error {
	payload, err := renderFeed(site, posts)
	if err != nil {
		return err
	}

	feedDoc := &content.Document{
		Kind:       content.KindPage,
		RelPath:    feedXML,
		OutputPath: feedXML,
		Title:      site.Title,
		Content:    payload,
	}
	b.hooks.Run(feedDoc)

	return writeOutputFile(outputDir, feedXML, []byte(feedDoc.Content))
}

func (b *Builder) renderToFile(outputDir, rel, name string, data any) error {
	buf := bytes.Buffer{}
	if err := b.templates.render(&buf, name, data); err != nil {
		return err
	}
	return writeOutputFile(outputDir, rel, buf.Bytes())
}

func (b *Builder) prepareOutputDir(output string, clean bool) error {
	if clean {
		if err := os.RemoveAll(output); err != nil {
			return fmt.Errorf("clean output: %w", err)
		}
	}
	return os.MkdirAll(output, 0o755) //nolint:gosec // standard directory permissions
}

func (b *Builder) copyAssetBundle(dest, override string) error {
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("reset assets dir: %w", err)
	}
	override = strings.TrimSpace(override)
	if override != "" {
		if info, err := os.Stat(override); err == nil && info.IsDir() {
			b.logger.Debug("using override assets", slog.String("source", override))
			return copyDir(override, dest)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat assets override: %w", err)
		}
	}
	if err := sitestatic.CopyAll(dest); err != nil {
		return fmt.Errorf("copy embedded assets: %w", err)
	}
	return nil
}

func copyDir(src, dest string) error {
	return filepath.WalkDir(src, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p) //nolint:gosec // walked path under src
		if err != nil {
			return err
		}
		return writeOutputFile(dest, filepath.ToSlash(rel), data)
	})
}

func writeOutputFile(root, rel string, data []byte) error {
	dest := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil { //nolint:gosec // standard directory permissions
		return err
	}
	return os.WriteFile(dest, data, 0o644) //nolint:gosec // standard file permissions
}

func collectPosts(docs []*content.Document) []*content.Document {
	var posts []*content.Document
	for _, doc := range docs {
		if doc.Kind == content.KindPost {
			posts = append(posts, doc)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
	return posts
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func titleFromPath(rel string) string {
	base := filepath.Base(rel)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return strings.TrimSpace(base)
}
