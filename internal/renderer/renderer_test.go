package renderer_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/euforicio/stanza/internal/renderer"
)

func newService() *renderer.Service {
	return renderer.NewService(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestRenderKeepsMermaidFencesPlain(t *testing.T) {
	t.Parallel()
	svc := newService()

	content := []byte("---\n" +
		"title: Example Post\n" +
		"description: Sample description\n" +
		"date: 2024-06-01\n" +
		"tags:\n" +
		"  - go\n" +
		"  - diagrams\n" +
		"---\n\n" +
		"# Hello\n\n" +
		"Some inline text.\n\n" +
		"```mermaid\n" +
		"graph TD;\n" +
		"A-->B;\n" +
		"```\n\n" +
		"```go\n" +
		"package main\n\n" +
		"func main() {}\n" +
		"```\n")

	modTime := time.Unix(1_000, 0)
	doc, err := svc.Render(context.Background(), "posts/example.md", modTime, content)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	if doc.Metadata.Title != "Example Post" {
		t.Fatalf("expected title 'Example Post', got %q", doc.Metadata.Title)
	}
	if doc.Metadata.Description != "Sample description" {
		t.Fatalf("unexpected description: %q", doc.Metadata.Description)
	}
	if len(doc.Metadata.Tags) != 2 || doc.Metadata.Tags[0] != "go" {
		t.Fatalf("unexpected tags: %#v", doc.Metadata.Tags)
	}
	if got := doc.Metadata.Date.Format("2006-01-02"); got != "2024-06-01" {
		t.Fatalf("unexpected date: %s", got)
	}

	html := doc.HTML
	// The mermaid fence must keep the shape the post-render diagram hook
	// matches on: plain pre/code, never chroma markup, never a div.
	if !strings.Contains(html, `<pre><code class="language-mermaid">`) {
		t.Fatalf("expected plain mermaid fence in HTML, got %s", html)
	}
	if strings.Contains(html, `<div class="mermaid">`) {
		t.Fatalf("mermaid fence rewritten too early: %s", html)
	}
	if !strings.Contains(html, "A--&gt;B;") {
		t.Fatalf("expected escaped mermaid source, got %s", html)
	}
	if !strings.Contains(html, `class="chroma"`) {
		t.Fatalf("expected chroma highlighter output for go fence, got %s", html)
	}
	if !strings.Contains(html, `<span class="kn">package</span>`) {
		t.Fatalf("expected go syntax tokens in HTML, got %s", html)
	}
}

func TestRenderRewritesMarkdownLinks(t *testing.T) {
	t.Parallel()
	svc := newService()

	content := []byte("[other](other-post.md) [section](notes/deep.md#setup) " +
		"[ext](https://example.com/readme.md) [anchor](#top)\n")

	doc, err := svc.Render(context.Background(), "posts/links.md", time.Unix(3_000, 0), content)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	html := doc.HTML
	if !strings.Contains(html, `href="other-post.html"`) {
		t.Fatalf("expected rewritten .md link, got %s", html)
	}
	if !strings.Contains(html, `href="notes/deep.html#setup"`) {
		t.Fatalf("expected fragment preserved, got %s", html)
	}
	if !strings.Contains(html, `href="https://example.com/readme.md"`) {
		t.Fatalf("external link must not be rewritten, got %s", html)
	}
	if !strings.Contains(html, `href="#top"`) {
		t.Fatalf("anchor link must not be rewritten, got %s", html)
	}
}

func TestRenderCaching(t *testing.T) {
	t.Parallel()
	svc := newService()

	ctx := context.Background()
	path := "posts/cache.md"
	modTime := time.Unix(2_000, 0)

	doc1, err := svc.Render(ctx, path, modTime, []byte("# First"))
	if err != nil {
		t.Fatalf("first render: %v", err)
	}

	doc2, err := svc.Render(ctx, path, modTime, []byte("# Second"))
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if doc2.HTML != doc1.HTML {
		t.Fatalf("expected cached HTML, got different output")
	}

	doc3, err := svc.Render(ctx, path, modTime.Add(time.Second), []byte("# Second"))
	if err != nil {
		t.Fatalf("third render: %v", err)
	}
	if doc3.HTML == doc1.HTML {
		t.Fatalf("expected updated render after mod time change")
	}

	svc.Invalidate(path)
	doc4, err := svc.Render(ctx, path, modTime.Add(time.Second), []byte("# Third"))
	if err != nil {
		t.Fatalf("fourth render: %v", err)
	}
	if !strings.Contains(doc4.HTML, "Third") {
		t.Fatalf("expected fresh render after invalidation, got %s", doc4.HTML)
	}
}
