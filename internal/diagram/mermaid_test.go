package diagram_test

import (
	"strings"
	"testing"

	"github.com/euforicio/stanza/internal/diagram"
)

func TestRewriteSingleBlock(t *testing.T) {
	t.Parallel()

	in := `<pre><code class="language-mermaid">graph TD;
A-->B;
</code></pre>`

	out, n := diagram.Rewrite(in)
	if n != 1 {
		t.Fatalf("expected 1 replacement, got %d", n)
	}
	want := `<div class="mermaid">graph TD;
A-->B;
</div>`
	if out != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out, want)
	}
}

func TestRewriteDecodesEntities(t *testing.T) {
	t.Parallel()

	in := "<pre><code class=\"language-mermaid\">flowchart LR\n  A --&gt; B</code></pre>"

	out, n := diagram.Rewrite(in)
	if n != 1 {
		t.Fatalf("expected 1 replacement, got %d", n)
	}
	if out != "<div class=\"mermaid\">flowchart LR\n  A --> B</div>" {
		t.Fatalf("expected literal arrow in container, got %s", out)
	}
	if strings.Contains(out, "--&gt;") {
		t.Fatalf("arrow left escaped: %s", out)
	}
}

func TestRewriteReescapesUnsafeSource(t *testing.T) {
	t.Parallel()

	in := `<pre><code class="language-mermaid">graph TD; A[&lt;b&gt;bold&lt;/b&gt; &amp; more]</code></pre>`

	out, n := diagram.Rewrite(in)
	if n != 1 {
		t.Fatalf("expected 1 replacement, got %d", n)
	}
	// Open brackets and ampersands must stay escaped so the container's
	// text content round-trips; bare > may stay literal.
	if !strings.Contains(out, "A[&lt;b>bold&lt;/b> &amp; more]") {
		t.Fatalf("unexpected re-escaping: %s", out)
	}
}

func TestRewritePreservesDocumentOrder(t *testing.T) {
	t.Parallel()

	in := `<h2>Diagrams</h2>` +
		`<pre><code class="language-mermaid">graph TD; A;</code></pre>` +
		`<p>between</p>` +
		`<pre><code class="language-mermaid">graph LR; B;</code></pre>` +
		`<p>after</p>`

	out, n := diagram.Rewrite(in)
	if n != 2 {
		t.Fatalf("expected 2 replacements, got %d", n)
	}
	if strings.Contains(out, "language-mermaid") {
		t.Fatalf("matched block left behind: %s", out)
	}

	order := []string{
		"<h2>Diagrams</h2>",
		`<div class="mermaid">graph TD; A;</div>`,
		"<p>between</p>",
		`<div class="mermaid">graph LR; B;</div>`,
		"<p>after</p>",
	}
	rest := out
	for _, part := range order {
		idx := strings.Index(rest, part)
		if idx < 0 {
			t.Fatalf("missing or out of order: %q in %s", part, out)
		}
		rest = rest[idx+len(part):]
	}
}

func TestRewriteNoMatchReturnsInputUnchanged(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"plain paragraph":  `<p>hello   <em>world</em></p>`,
		"other language":   `<pre><code class="language-python">print(1)</code></pre>`,
		"no class at all":  `<pre><code>graph TD;</code></pre>`,
		"marker not a pre": `<div><code class="language-mermaid">graph TD;</code></div>`,
		"prefix only":      `<pre><code class="language-mermaid-x">graph TD;</code></pre>`,
		"case mismatch":    `<pre><code class="Language-Mermaid">graph TD;</code></pre>`,
		"empty":            "",
	}

	for name, in := range cases {
		out, n := diagram.Rewrite(in)
		if n != 0 {
			t.Fatalf("%s: expected no replacements, got %d", name, n)
		}
		if out != in {
			t.Fatalf("%s: input was altered:\n in: %s\nout: %s", name, in, out)
		}
	}
}

func TestRewriteMatchesClassTokenMembership(t *testing.T) {
	t.Parallel()

	in := `<pre><code class="language-mermaid highlight">graph TD; A;</code></pre>`

	out, n := diagram.Rewrite(in)
	if n != 1 {
		t.Fatalf("expected token-membership match, got %d replacements", n)
	}
	if !strings.Contains(out, `<div class="mermaid">graph TD; A;</div>`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestRewriteIsIdempotent(t *testing.T) {
	t.Parallel()

	in := `<pre><code class="language-mermaid">sequenceDiagram
Alice-&gt;&gt;Bob: hi</code></pre>`

	first, n := diagram.Rewrite(in)
	if n != 1 {
		t.Fatalf("expected 1 replacement, got %d", n)
	}

	second, n := diagram.Rewrite(first)
	if n != 0 {
		t.Fatalf("second pass found %d blocks, want 0", n)
	}
	if second != first {
		t.Fatalf("second pass altered output:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestRewriteSkipsMarkedCodeOutsidePre(t *testing.T) {
	t.Parallel()

	in := `<blockquote><code class="language-mermaid">graph TD; A;</code></blockquote>` +
		`<pre><code class="language-mermaid">graph LR; B;</code></pre>`

	out, n := diagram.Rewrite(in)
	if n != 1 {
		t.Fatalf("expected only the pre-wrapped block to match, got %d", n)
	}
	if !strings.Contains(out, `<blockquote><code class="language-mermaid">graph TD; A;</code></blockquote>`) {
		t.Fatalf("non-pre block was altered: %s", out)
	}
	if !strings.Contains(out, `<div class="mermaid">graph LR; B;</div>`) {
		t.Fatalf("pre block was not rewritten: %s", out)
	}
}

func TestRewriteToleratesMalformedMarkup(t *testing.T) {
	t.Parallel()

	in := `<div><p>unterminated paragraph` +
		`<pre><code class="language-mermaid">graph TD; A;</code></pre>`

	out, n := diagram.Rewrite(in)
	if n == 0 {
		// Falling back to the original string is an acceptable recovery.
		if out != in {
			t.Fatalf("fallback must return the input unchanged, got %s", out)
		}
		return
	}
	if !strings.Contains(out, `<div class="mermaid">graph TD; A;</div>`) {
		t.Fatalf("well-formed match not rewritten: %s", out)
	}
}

func TestRewriteNestedMarkupUsesTextContent(t *testing.T) {
	t.Parallel()

	// Defensive: a highlighter that slipped spans into the block still
	// yields the concatenated text content.
	in := `<pre><code class="language-mermaid"><span>graph</span> <span>TD;</span></code></pre>`

	out, n := diagram.Rewrite(in)
	if n != 1 {
		t.Fatalf("expected 1 replacement, got %d", n)
	}
	if !strings.Contains(out, `<div class="mermaid">graph TD;</div>`) {
		t.Fatalf("unexpected output: %s", out)
	}
}
