package widget

import "strconv"

type Layout string

const (
	Small    Layout = "sm"
	MediumUp Layout = "md-up"
)

// MediumBreakpoint is the narrowest viewport, in px, that gets the table layout.
const MediumBreakpoint = 768

func LayoutForWidth(px int) Layout {
	if px > 0 && px < MediumBreakpoint {
		return Small
	}
	return MediumUp
}

// ParseLayout picks the layout from an explicit size name, falling back to a
// viewport width. Anything unrecognised gets the table layout.
func ParseLayout(size, width string) Layout {
	switch Layout(size) {
	case Small, MediumUp:
		return Layout(size)
	}
	if px, err := strconv.Atoi(width); err == nil {
		return LayoutForWidth(px)
	}
	return MediumUp
}

type Column struct {
	Label string
	Width string
}

// Columns of the md-up table; Signer is the maker side, Sender the taker side.
var Columns = []Column{
	{Label: "Trade", Width: "10%"},
	{Label: "Signer Token", Width: "25%"},
	{Label: "", Width: "5%"},
	{Label: "Sender Token", Width: "25%"},
	{Label: "Value", Width: "20%"},
	{Label: "Time", Width: "15%"},
	{Label: "Details", Width: "10%"},
}

func colWidth(i int) string {
	if i < 0 || i >= len(Columns) {
		return "auto"
	}
	return Columns[i].Width
}

// Tooltip shows Shown in place and Full on hover.
type Tooltip struct {
	Shown string
	Full  string
}

func tip(shown, full string) Tooltip { return Tooltip{Shown: shown, Full: full} }
