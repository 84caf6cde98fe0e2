// Package widget renders the Recent Swaps card as HTML fragments. One
// SwapList capability comes in two variants: a virtualized full list and a
// four-row preview with a View All control.
package widget

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"time"

	"swapboard/internal/explorer"
	"swapboard/internal/format"
	"swapboard/internal/metrics"
	"swapboard/internal/model"

	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Variant string

const (
	Full    Variant = "full"
	Preview Variant = "preview"
)

var Variants = []Variant{Full, Preview}

var ErrUnknownVariant = errors.New("unknown widget variant")

func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case Full, Preview:
		return Variant(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// MintExpandPath expands a widget that has no instance yet.
const MintExpandPath = "/widgets/recent-swaps/preview/expand"

// PreviewRows is how many swaps the preview variant ever shows.
const PreviewRows = 4

// Props is the input of one render pass.
type Props struct {
	Trades []model.SwapEvent
	Rates  format.RateSource
	Now    time.Time
	Layout Layout

	// full variant scroll viewport
	Offset int
	Height int

	// preview variant
	Instance string
	State    ViewState
}

// SwapList renders the Recent Swaps card for one variant.
type SwapList interface {
	Variant() Variant
	Render(w io.Writer, p Props) error
}

type Renderer struct {
	tmpl   *template.Template
	linker *explorer.Linker
	log    *zap.Logger
}

func NewRenderer(linker *explorer.Linker, logger *zap.Logger) (*Renderer, error) {
	if linker == nil {
		return nil, errors.New("widget: nil explorer linker")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.New("widget").
		Funcs(template.FuncMap{"colWidth": colWidth, "tip": tip}).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse widget templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, linker: linker, log: logger}, nil
}

// List returns the SwapList for v.
func (r *Renderer) List(v Variant) (SwapList, error) {
	switch v {
	case Full:
		return fullList{r: r}, nil
	case Preview:
		return previewList{r: r}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
}

// Fragment renders v into a byte slice, for websocket pushes.
func (r *Renderer) Fragment(v Variant, p Props) ([]byte, error) {
	list, err := r.List(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := list.Render(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) execute(w io.Writer, v Variant, view any) error {
	start := time.Now()
	var buf bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&buf, string(v), view)
	metrics.WidgetRenderDuration.WithLabelValues(string(v)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WidgetRenders.WithLabelValues(string(v), "error").Inc()
		return fmt.Errorf("render %s: %w", v, err)
	}
	metrics.WidgetRenders.WithLabelValues(string(v), "ok").Inc()
	_, err = buf.WriteTo(w)
	return err
}

func normalize(p Props) Props {
	if p.Now.IsZero() {
		p.Now = time.Now()
	}
	if p.Layout == "" {
		p.Layout = MediumUp
	}
	return p
}

// FullView is the template input of the full variant.
type FullView struct {
	Layout  Layout
	Loading bool
	Columns []Column
	Window  Window
	Rows    []Row
}

type fullList struct{ r *Renderer }

func (fullList) Variant() Variant { return Full }

// View builds the full variant: every swap counts toward the list, only the
// rows inside the viewport are materialized.
func (l fullList) View(p Props) FullView {
	p = normalize(p)
	v := FullView{Layout: p.Layout, Columns: Columns}
	if len(p.Trades) == 0 {
		v.Loading = true
		return v
	}
	v.Window = Visible(len(p.Trades), p.Offset, p.Height)
	v.Rows = make([]Row, 0, v.Window.Len())
	for i := v.Window.Start; i < v.Window.End; i++ {
		v.Rows = append(v.Rows, l.r.row(i, p.Trades[i], p))
	}
	return v
}

func (l fullList) Render(w io.Writer, p Props) error {
	return l.r.execute(w, Full, l.View(p))
}

// PreviewView is the template input of the preview variant.
type PreviewView struct {
	Layout    Layout
	Loading   bool
	Instance  string
	Expanded  bool
	ExpandURL string
	Rows      []Row
}

type previewList struct{ r *Renderer }

func (previewList) Variant() Variant { return Preview }

func (l previewList) View(p Props) PreviewView {
	p = normalize(p)
	v := PreviewView{
		Layout:    p.Layout,
		Instance:  p.Instance,
		Expanded:  p.State.Expanded,
		ExpandURL: ExpandPath(p.Instance),
	}
	if len(p.Trades) == 0 {
		v.Loading = true
		return v
	}
	n := min(PreviewRows, len(p.Trades))
	v.Rows = make([]Row, 0, n)
	for i := 0; i < n; i++ {
		v.Rows = append(v.Rows, l.r.row(i, p.Trades[i], p))
	}
	return v
}

func (l previewList) Render(w io.Writer, p Props) error {
	return l.r.execute(w, Preview, l.View(p))
}

// ExpandPath is where the View All control of instance posts to. Fragments
// rendered without an instance post to MintExpandPath.
func ExpandPath(instance string) string {
	if instance == "" {
		return MintExpandPath
	}
	return "/widgets/recent-swaps/preview/" + instance + "/expand"
}
