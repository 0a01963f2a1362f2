// Package render draws cube grids for terminals.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	rubik "github.com/SeamusWaldron/rubik_server"
)

// Sticker colors in the standard western scheme, keyed by face symbol.
var stickerColors = map[rubik.Sticker]lipgloss.Color{
	'U': lipgloss.Color("15"),  // white
	'R': lipgloss.Color("196"), // red
	'F': lipgloss.Color("34"),  // green
	'D': lipgloss.Color("226"), // yellow
	'L': lipgloss.Color("208"), // orange
	'B': lipgloss.Color("27"),  // blue
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Renderer draws grids as an unfolded net.
type Renderer struct {
	// Plain disables colors and draws the symbols only.
	Plain bool

	cells map[rubik.Sticker]lipgloss.Style
}

// New returns a renderer. Plain renderers draw the same layout as
// rubik.Grid.Net.
func New(plain bool) *Renderer {
	r := &Renderer{Plain: plain, cells: make(map[rubik.Sticker]lipgloss.Style)}
	for sym, color := range stickerColors {
		r.cells[sym] = lipgloss.NewStyle().
			Background(color).
			Foreground(lipgloss.Color("0")).
			Bold(true)
	}
	return r
}

// cell draws one sticker, two columns wide so the net looks square.
func (r *Renderer) cell(s rubik.Sticker) string {
	text := s.String() + " "
	if r.Plain {
		return text
	}
	if style, ok := r.cells[s]; ok {
		return style.Render(text)
	}
	return text
}

func (r *Renderer) row(g rubik.Grid, f rubik.Face, row int) string {
	var b strings.Builder
	for col := 0; col < 3; col++ {
		b.WriteString(r.cell(g[f][row][col]))
	}
	return b.String()
}

// Net draws g with U on top, the L F R B band in the middle and D below.
func (r *Renderer) Net(g rubik.Grid) string {
	const pad = "      "
	var lines []string

	for row := 0; row < 3; row++ {
		lines = append(lines, pad+r.row(g, rubik.FaceU, row))
	}
	for row := 0; row < 3; row++ {
		var b strings.Builder
		for _, f := range []rubik.Face{rubik.FaceL, rubik.FaceF, rubik.FaceR, rubik.FaceB} {
			b.WriteString(r.row(g, f, row))
		}
		lines = append(lines, b.String())
	}
	for row := 0; row < 3; row++ {
		lines = append(lines, pad+r.row(g, rubik.FaceD, row))
	}

	return strings.Join(lines, "\n")
}

// Summary draws the net under a title line with the facelet string.
func (r *Renderer) Summary(title string, g rubik.Grid) string {
	var b strings.Builder
	if r.Plain {
		b.WriteString(title)
	} else {
		b.WriteString(titleStyle.Render(title))
	}
	b.WriteString("\n\n")
	b.WriteString(r.Net(g))
	b.WriteString("\n\n")

	status := "scrambled"
	if g.IsSolved() {
		status = "solved"
	}
	line := g.String() + "  (" + status + ")"
	if r.Plain {
		b.WriteString(line)
	} else {
		b.WriteString(labelStyle.Render(line))
	}
	b.WriteString("\n")
	return b.String()
}
