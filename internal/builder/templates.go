package builder

import (
	"embed"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// siteViewData carries site-wide values into every template.
type siteViewData struct {
	Title       string
	Subtitle    string
	BaseURL     string
	AssetPrefix string
	GeneratedAt time.Time
}

type pageViewData struct {
	Title     string
	URL       string
	Canonical string
	Date      time.Time
	Tags      []string
	HTML      template.HTML
	IsPost    bool
}

type layoutViewData struct {
	Site siteViewData
	Page pageViewData
}

type postListItem struct {
	Title   string
	URL     string
	Summary string
	Date    time.Time
	Tags    []string
}

type indexViewData struct {
	Site  siteViewData
	Posts []postListItem
}

type templateRenderer struct {
	tmpl *template.Template
}

func newTemplateRenderer() (*templateRenderer, error) {
	funcs := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"year": func(t time.Time) int {
			return t.Year()
		},
	}

	base, err := template.New("site").Funcs(funcs).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, err
	}
	return &templateRenderer{tmpl: base}, nil
}

func (r *templateRenderer) render(w io.Writer, name string, data any) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}
