// Package content models the source tree of a site: markdown posts and pages
// discovered under the content root, plus the rendered documents the builder
// hands to post-render hooks.
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Kind classifies a document for hook dispatch and layout selection.
type Kind string

// Document kinds. Posts live under posts/ in the content root; everything
// else is a page. Generated artifacts (feed, search index) are pages too,
// mirroring how static generators treat non-HTML outputs.
const (
	KindPost Kind = "post"
	KindPage Kind = "page"
)

// postsDir is the content subdirectory whose markdown files become posts.
const postsDir = "posts"

// Document is one output file in flight through the build. Content starts as
// the rendered markdown fragment and is mutated in place by post-render hooks
// before the layout template wraps it.
type Document struct {
	Kind       Kind
	SourcePath string // absolute path of the markdown source, empty for generated docs
	RelPath    string // slash path relative to the content root
	OutputPath string // slash path relative to the output root
	Title      string
	Summary    string
	Tags       []string
	Date       time.Time
	Modified   time.Time
	Content    string // rendered output, read/write for hooks
}

// OutputExt returns the document's output extension, e.g. ".html".
func (d *Document) OutputExt() string {
	return path.Ext(d.OutputPath)
}

// Options control content scanning.
type Options struct {
	IncludeHidden bool
	ExcludeDirs   []string
}

var defaultExcludedDirs = []string{
	"node_modules",
	"vendor",
	".git",
	".hg",
	".svn",
	".idea",
	".vscode",
}

// Scan walks the content root and returns one Document per markdown source,
// ordered by relative path. Frontmatter fields are filled in later by the
// builder once each file has been rendered.
func Scan(ctx context.Context, root string, opts Options) ([]*Document, error) {
	if root == "" {
		return nil, errors.New("content root must be provided")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", absRoot)
	}

	exclude := make(map[string]struct{})
	for _, name := range defaultExcludedDirs {
		exclude[strings.ToLower(name)] = struct{}{}
	}
	for _, name := range opts.ExcludeDirs {
		if name = strings.TrimSpace(name); name != "" {
			exclude[strings.ToLower(name)] = struct{}{}
		}
	}

	var docs []*Document
	walkErr := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if p == absRoot {
				return nil
			}
			if _, skip := exclude[strings.ToLower(name)]; skip {
				return fs.SkipDir
			}
			if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}

		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			return nil
		}
		if !isMarkdownPath(name) {
			return nil
		}

		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", p, err)
		}
		rel = filepath.ToSlash(rel)

		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", rel, err)
		}

		docs = append(docs, &Document{
			Kind:       kindFor(rel),
			SourcePath: p,
			RelPath:    rel,
			OutputPath: outputPathFor(rel),
			Modified:   fi.ModTime(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan content: %w", walkErr)
	}

	sort.Slice(docs, func(i, j int) bool {
		return strings.Compare(strings.ToLower(docs[i].RelPath), strings.ToLower(docs[j].RelPath)) < 0
	})
	return docs, nil
}

func kindFor(rel string) Kind {
	if rel == postsDir || strings.HasPrefix(rel, postsDir+"/") {
		return KindPost
	}
	return KindPage
}

func outputPathFor(rel string) string {
	ext := path.Ext(rel)
	return strings.TrimSuffix(rel, ext) + ".html"
}

func isMarkdownPath(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}
