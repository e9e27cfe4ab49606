package delivery

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFiles embed.FS

var (
	deniedPage   = mustPage("templates/denied.html")
	expiredPage  = mustPage("templates/expired.html")
	documentPage = mustPage("templates/document.html")
)

// Each page is parsed into its own set so the shared block names
// ("title", "body") do not collide.
func mustPage(name string) *template.Template {
	return template.Must(template.ParseFS(templateFiles, "templates/layout.html", name))
}

type denialData struct {
	LoginURL string
	HomeURL  string
}

type fileLinks struct {
	Name        string
	ViewURL     string
	DownloadURL string
}

type documentData struct {
	Title string
	Files []fileLinks
}

// render executes into a buffer first so a template error never leaves a
// half-written page.
func render(w http.ResponseWriter, t *template.Template, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "private, no-store")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "no-referrer")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(buf.Bytes())
	return err
}
