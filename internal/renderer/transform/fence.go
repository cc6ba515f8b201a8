// Package transform provides custom rendering transformations for markdown elements.
package transform

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// diagramLanguages lists fence languages that must reach the browser as plain
// code blocks. chroma ships lexers for some of them, so without this pass the
// highlighter would rewrite the fences into span soup that the post-render
// diagram hook can no longer recognize.
var diagramLanguages = map[string]struct{}{
	"mermaid": {},
}

// DiagramFences replaces fenced diagram blocks with raw nodes that serialize
// as <pre><code class="language-LANG">, keeping them out of the highlighter.
type DiagramFences struct{}

// NewDiagramFences constructs the AST transformer.
func NewDiagramFences() parser.ASTTransformer {
	return &DiagramFences{}
}

// Transform implements parser.ASTTransformer.
func (t *DiagramFences) Transform(node *ast.Document, reader text.Reader, _ parser.Context) {
	if node == nil {
		return
	}
	t.walk(node, reader)
}

func (t *DiagramFences) walk(parent ast.Node, reader text.Reader) {
	for child := parent.FirstChild(); child != nil; {
		next := child.NextSibling()

		if block, ok := child.(*ast.FencedCodeBlock); ok {
			if lang, ok := diagramLanguage(block, reader.Source()); ok {
				replacement := &DiagramFence{
					Language: lang,
					Source:   blockSource(block, reader),
				}
				replacement.SetBlankPreviousLines(block.HasBlankPreviousLines())
				parent.ReplaceChild(parent, block, replacement)
				child = next
				continue
			}
		}

		if child.HasChildren() {
			t.walk(child, reader)
		}
		child = next
	}
}

func diagramLanguage(block *ast.FencedCodeBlock, source []byte) (string, bool) {
	lang := strings.ToLower(strings.TrimSpace(string(block.Language(source))))
	_, ok := diagramLanguages[lang]
	return lang, ok
}

func blockSource(block *ast.FencedCodeBlock, reader text.Reader) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		segment := block.Lines().At(i)
		buf.Write(segment.Value(reader.Source()))
	}
	return buf.String()
}

// DiagramFence is a pinned diagram code block included directly in the AST.
type DiagramFence struct {
	ast.BaseBlock
	Language string
	Source   string
}

// KindDiagramFence represents a pinned diagram fence node kind.
var KindDiagramFence = ast.NewNodeKind("DiagramFence")

// Kind implements ast.Node.
func (b *DiagramFence) Kind() ast.NodeKind {
	return KindDiagramFence
}

// IsRaw marks the node as raw content.
func (b *DiagramFence) IsRaw() bool {
	return true
}

// Dump aids debugging.
func (b *DiagramFence) Dump(source []byte, level int) {
	ast.DumpHelper(b, source, level, map[string]string{
		"Language": b.Language,
		"Source":   fmt.Sprintf("%d bytes", len(b.Source)),
	}, nil)
}

// DiagramFenceRenderer writes pinned fences into HTML output.
type DiagramFenceRenderer struct{}

// NewDiagramFenceRenderer returns a renderer for pinned diagram fences.
func NewDiagramFenceRenderer() renderer.NodeRenderer {
	return &DiagramFenceRenderer{}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *DiagramFenceRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindDiagramFence, r.renderDiagramFence)
}

func (r *DiagramFenceRenderer) renderDiagramFence(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	fence := node.(*DiagramFence)

	_, _ = w.WriteString(`<pre><code class="language-`)
	_, _ = w.Write(util.EscapeHTML([]byte(fence.Language)))
	_, _ = w.WriteString(`">`)
	_, _ = w.Write(util.EscapeHTML([]byte(fence.Source)))
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}
