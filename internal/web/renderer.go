package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"strconv"
	"time"

	"github.com/2beens/weighttracker/internal/chart"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*.js
var staticFS embed.FS

const (
	pageIndex    = "index.html"
	pageChart    = "chart.html"
	pageTable    = "table.html"
	pageNotFound = "404.html"
)

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format(chart.DateLayout)
	},
	"clock": func(t time.Time) string {
		return t.Format("15:04")
	},
	"value": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
	"glyph": func(d chart.Direction) string {
		return d.Glyph()
	},
	"inc": func(i int) int {
		return i + 1
	},
	"labels": slotLabels,
	"values": slotValues,
}

// Renderer holds one template set per page, each combined with the base layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		pages: make(map[string]*template.Template),
	}
	for _, page := range []string{pageIndex, pageChart, pageTable, pageNotFound} {
		tmpl, err := template.New(page).
			Funcs(templateFuncs).
			ParseFS(templatesFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render executes the page into memory; nothing is written on failure.
func (r *Renderer) Render(page string, data any) ([]byte, error) {
	tmpl, ok := r.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown page: %s", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", page, err)
	}
	return buf.Bytes(), nil
}

// StaticFS returns the embedded js files, rooted so that /static/chart.js maps to chart.js.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// static is a compile time embedded dir
		panic(err)
	}
	return sub
}

func slotLabels(slots []chart.DaySlot) (string, error) {
	labels := make([]string, 0, len(slots))
	for _, s := range slots {
		labels = append(labels, s.Date.Format(chart.DateLayout))
	}
	b, err := json.Marshal(labels)
	return string(b), err
}

// slotValues marshals the series with null for days without a value,
// which Chart.js bridges with spanGaps.
func slotValues(slots []chart.DaySlot) (string, error) {
	values := make([]*float64, 0, len(slots))
	for _, s := range slots {
		values = append(values, s.Value)
	}
	b, err := json.Marshal(values)
	return string(b), err
}
