// Package diagram rewrites fenced mermaid code blocks in rendered HTML into
// the container markup the client-side mermaid library picks up at page load.
package diagram

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// languageClass is the class token the markdown renderer puts on fenced
	// mermaid source.
	languageClass = "language-mermaid"
	// containerClass marks a rewritten block for the client-side renderer.
	containerClass = "mermaid"
)

// Rewrite replaces every <pre><code class="language-mermaid"> block in the
// fragment with a <div class="mermaid"> holding the decoded diagram source,
// at the exact position of the <pre>. It returns the rewritten fragment and
// the number of replaced blocks.
//
// With zero matches, or when the fragment cannot be parsed, the input string
// is returned untouched so callers never observe serialization drift. Nothing
// outside the replaced blocks is altered.
func Rewrite(fragment string) (string, int) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return fragment, 0
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}

	codes := findDiagramCode(body)
	if len(codes) == 0 {
		return fragment, 0
	}

	replaced := 0
	for _, code := range codes {
		pre := code.Parent
		if pre.Parent == nil {
			// Wrapper already replaced; a <pre> holds exactly one code
			// child in well-formed renderer output, so this only guards
			// against hand-written markup.
			continue
		}
		container := newContainer(textContent(code))
		pre.Parent.InsertBefore(container, pre)
		pre.Parent.RemoveChild(pre)
		replaced++
	}
	if replaced == 0 {
		return fragment, 0
	}

	var buf strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return fragment, 0
		}
	}
	return buf.String(), replaced
}

// findDiagramCode collects, in document order, every code element carrying
// the mermaid language class whose immediate parent is a <pre>. A marked code
// element under any other parent is not a diagram block and is skipped.
func findDiagramCode(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isDiagramCode(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func isDiagramCode(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Code {
		return false
	}
	parent := n.Parent
	if parent == nil || parent.Type != html.ElementNode || parent.DataAtom != atom.Pre {
		return false
	}
	return hasClassToken(n, languageClass)
}

// hasClassToken matches on whitespace-separated class list membership rather
// than whole-attribute equality, so `class="language-mermaid highlight"`
// still counts. Tokens compare exactly: no prefixes, no case folding.
func hasClassToken(n *html.Node, token string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" || attr.Namespace != "" {
			continue
		}
		for _, t := range strings.Fields(attr.Val) {
			if t == token {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func newContainer(source string) *html.Node {
	div := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "class", Val: containerClass}},
	}
	div.AppendChild(&html.Node{Type: html.RawNode, Data: escapeSource(source)})
	return div
}

// escapeSource escapes the minimum HTML text content requires: ampersands and
// open brackets. A bare `>` is valid in text, and leaving it alone keeps
// diagram arrows like `-->` literal in the serialized container. The browser
// hands the client library identical text either way.
func escapeSource(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	return strings.ReplaceAll(s, "<", "&lt;")
}
