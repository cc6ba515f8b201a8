// Package main generates the chroma stylesheet for syntax highlighting.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

func main() {
	name := "github-dark"
	if len(os.Args) > 1 {
		name = os.Args[1]
	}

	style := styles.Get(name)
	if style == nil {
		fmt.Fprintf(os.Stderr, "style %q not found\n", name)
		os.Exit(1)
	}

	formatter := html.New(
		html.WithClasses(true),
		html.ClassPrefix(""),
	)

	if err := formatter.WriteCSS(os.Stdout, style); err != nil {
		fmt.Fprintf(os.Stderr, "generate css: %v\n", err)
		os.Exit(1)
	}
}
