// Package render turns a month-grouped archive into the static site: one
// page per month, a top index linking them, and the two stylesheets. Layout
// follows the generated docs/ tree that Vercel or GitHub Pages serves as-is.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"bskyarchive/pkg/archive"
	"bskyarchive/pkg/logger"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// jst is the display zone for post timestamps. Grouping stays on the
// timestamp's own calendar date; only the rendered string is shifted.
var jst = time.FixedZone("JST", 9*60*60)

// displayTimeLayout formats a post timestamp for the page
const displayTimeLayout = "2006-01-02 15:04"

// Renderer writes the static site under a single output directory
type Renderer struct {
	outputDir    string
	buildVersion string
	templates    *template.Template
	logger       logger.Logger
}

// postView is one post as the month template sees it. Text arrives already
// escaped from classification, so it crosses as template.HTML untouched.
type postView struct {
	Epoch       int64
	DisplayTime string
	Text        template.HTML
	Permalink   string
	IsReply     bool
}

type monthPage struct {
	Key          string
	BuildVersion string
	Posts        []postView
}

type monthEntry struct {
	Key   string
	Count int
}

type indexPage struct {
	BuildVersion string
	Months       []monthEntry
}

// NewRenderer creates a renderer targeting outputDir. buildVersion is
// appended to asset URLs as a cache buster.
func NewRenderer(outputDir, buildVersion string, log logger.Logger) (*Renderer, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	templates, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{
		outputDir:    outputDir,
		buildVersion: buildVersion,
		templates:    templates,
		logger:       log,
	}, nil
}

// Render writes the stylesheets, every month page, and the top index. An
// empty archive still produces a valid site with an empty month list.
func (r *Renderer) Render(arc archive.Archive) error {
	if err := EnsureStylesheets(r.outputDir); err != nil {
		return err
	}

	for _, key := range arc.Keys {
		if err := r.renderMonth(key, arc.Months[key]); err != nil {
			return err
		}
	}

	if err := r.renderIndex(arc); err != nil {
		return err
	}

	r.logger.InfoWithFields("site rendered", map[string]interface{}{
		"posts":  arc.TotalPosts(),
		"months": len(arc.Keys),
		"dir":    r.outputDir,
	})
	return nil
}

// renderMonth writes {outputDir}/{key}/index.html
func (r *Renderer) renderMonth(key string, posts []archive.Post) error {
	page := monthPage{
		Key:          key,
		BuildVersion: r.buildVersion,
		Posts:        make([]postView, 0, len(posts)),
	}
	for _, p := range posts {
		page.Posts = append(page.Posts, postView{
			Epoch:       p.CreatedAt.Unix(),
			DisplayTime: p.CreatedAt.In(jst).Format(displayTimeLayout),
			Text:        template.HTML(p.Text),
			Permalink:   p.Permalink,
			IsReply:     p.IsReply,
		})
	}

	dir := filepath.Join(r.outputDir, key)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create month directory %s: %w", key, err)
	}

	return r.writeTemplate(filepath.Join(dir, "index.html"), "month.html.tmpl", page)
}

// renderIndex writes the top-level month list
func (r *Renderer) renderIndex(arc archive.Archive) error {
	page := indexPage{
		BuildVersion: r.buildVersion,
		Months:       make([]monthEntry, 0, len(arc.Keys)),
	}
	for _, key := range arc.Keys {
		page.Months = append(page.Months, monthEntry{Key: key, Count: len(arc.Months[key])})
	}

	return r.writeTemplate(filepath.Join(r.outputDir, "index.html"), "index.html.tmpl", page)
}

// writeTemplate renders into a buffer first so a template error never
// leaves a truncated page behind.
func (r *Renderer) writeTemplate(path, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	r.logger.DebugWithFields("page written", map[string]interface{}{
		"path": path,
	})
	return nil
}
