package builder

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/euforicio/stanza/internal/content"
)

// feedLimit caps how many posts the Atom feed carries.
const feedLimit = 20

type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	Xmlns    string      `xml:"xmlns,attr"`
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle,omitempty"`
	ID       string      `xml:"id"`
	Updated  string      `xml:"updated"`
	Links    []atomLink  `xml:"link"`
	Entries  []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

type atomEntry struct {
	Title   string       `xml:"title"`
	ID      string       `xml:"id"`
	Updated string       `xml:"updated"`
	Link    atomLink     `xml:"link"`
	Summary string       `xml:"summary,omitempty"`
	Content *atomContent `xml:"content,omitempty"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

// renderFeed builds the Atom document for the newest posts. Entry content is
// the rendered (and hook-transformed) HTML of each post.
func renderFeed(site siteViewData, posts []*content.Document) (string, error) {
	base := site.BaseURL
	if base == "" {
		base = "/"
	} else {
		base += "/"
	}

	feed := atomFeed{
		Xmlns:    "http://www.w3.org/2005/Atom",
		Title:    site.Title,
		Subtitle: site.Subtitle,
		ID:       base,
		Updated:  site.GeneratedAt.Format(time.RFC3339),
		Links: []atomLink{
			{Href: base + feedXML, Rel: "self", Type: "application/atom+xml"},
			{Href: base},
		},
	}

	for i, post := range posts {
		if i >= feedLimit {
			break
		}
		href := base + post.OutputPath
		feed.Entries = append(feed.Entries, atomEntry{
			Title:   post.Title,
			ID:      href,
			Updated: post.Date.Format(time.RFC3339),
			Link:    atomLink{Href: href},
			Summary: post.Summary,
			Content: &atomContent{Type: "html", Body: post.Content},
		})
	}

	payload, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode feed: %w", err)
	}
	return xml.Header + string(payload) + "\n", nil
}
