// Package stanza provides a static blog generator. Markdown posts and pages
// are rendered through goldmark, wrapped in layout templates, and written to
// an output directory ready for any static host.
//
// Fenced ```mermaid code blocks are rewritten after rendering into
// <div class="mermaid"> containers that the client-side mermaid library
// hydrates at page load; no diagram rendering happens at build time.
//
// Regenerate the syntax highlighting stylesheet after changing the chroma
// style with:
//
//	go generate
package stanza

//go:generate sh -c "go run ./tools/generate-chroma-css > static/css/chroma.css"
