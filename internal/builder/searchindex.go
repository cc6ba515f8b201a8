package builder

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/euforicio/stanza/internal/content"
)

type searchEntry struct {
	Path     string    `json:"path"`
	Source   string    `json:"source"`
	Title    string    `json:"title"`
	Summary  string    `json:"summary,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	Modified time.Time `json:"modified"`
}

type searchIndex struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Entries     []searchEntry `json:"entries"`
}

// writeSearchIndex emits a JSON index client-side search can consume.
func writeSearchIndex(outputDir string, generatedAt time.Time, docs []*content.Document) error {
	index := searchIndex{GeneratedAt: generatedAt}
	for _, doc := range docs {
		index.Entries = append(index.Entries, searchEntry{
			Path:     doc.OutputPath,
			Source:   doc.RelPath,
			Title:    doc.Title,
			Summary:  doc.Summary,
			Tags:     doc.Tags,
			Modified: doc.Modified,
		})
	}

	payload, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("encode search index: %w", err)
	}
	return writeOutputFile(outputDir, searchIndexJ, payload)
}
