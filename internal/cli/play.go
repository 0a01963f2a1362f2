package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	rubik "github.com/SeamusWaldron/rubik_server"
	"github.com/SeamusWaldron/rubik_server/internal/logging"
	"github.com/SeamusWaldron/rubik_server/internal/render"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	phaseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	moveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// keyMoves maps keys to moves: lower case turns clockwise, upper case
// turns counter-clockwise.
var keyMoves = map[string]rubik.Move{
	"r": rubik.R, "R": rubik.RPrime,
	"l": rubik.L, "L": rubik.LPrime,
	"u": rubik.U, "U": rubik.UPrime,
	"d": rubik.D, "D": rubik.DPrime,
	"f": rubik.F, "F": rubik.FPrime,
	"b": rubik.B, "B": rubik.BPrime,
	"m": rubik.M, "M": rubik.MPrime,
}

const recentMoves = 20

// Messages
type solveMsg struct {
	result rubik.SolveResult
	err    error
}

type playModel struct {
	cube     *rubik.Cube
	renderer *render.Renderer
	moves    []rubik.Move
	hint     string
	solving  bool
	err      error
	quitting bool
}

func newPlayModel(cube *rubik.Cube, plain bool) *playModel {
	return &playModel{
		cube:     cube,
		renderer: render.New(plain),
	}
}

func (m *playModel) Init() tea.Cmd {
	return nil
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "s":
			if m.solving {
				return m, nil
			}
			m.solving = true
			m.err = nil
			return m, m.solveCmd()

		case "x":
			m.cube.Reset()
			m.moves = nil
			m.hint = ""
			m.err = nil
			return m, nil

		case "z":
			if len(m.moves) == 0 {
				return m, nil
			}
			last := m.moves[len(m.moves)-1]
			m.apply(last.Inverse())
			m.moves = m.moves[:len(m.moves)-2]
			return m, nil
		}

		if move, ok := keyMoves[key]; ok {
			m.apply(move)
		}

	case solveMsg:
		m.solving = false
		if msg.err != nil {
			m.err = msg.err
			m.hint = ""
			return m, nil
		}
		if msg.result.Empty() {
			m.hint = "already solved"
		} else {
			m.hint = msg.result.Solution
		}
	}

	return m, nil
}

// apply turns the cube and records the move. Any hint is stale afterwards.
func (m *playModel) apply(move rubik.Move) {
	if _, err := m.cube.ApplyMove(move.String()); err != nil {
		m.err = err
		return
	}
	m.moves = append(m.moves, move)
	m.hint = ""
	m.err = nil
}

func (m *playModel) solveCmd() tea.Cmd {
	cube := m.cube
	return func() tea.Msg {
		res, err := cube.Solve(context.Background())
		return solveMsg{result: res, err: err}
	}
}

func (m *playModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	g := m.cube.Grid()

	b.WriteString(titleStyle.Render("Rubik's Cube"))
	b.WriteString("\n\n")
	b.WriteString(m.renderer.Net(g))
	b.WriteString("\n\n")

	if g.IsSolved() {
		b.WriteString(fmt.Sprintf("State: %s\n", phaseStyle.Render("SOLVED")))
	} else {
		b.WriteString(fmt.Sprintf("State: %s\n", statusStyle.Render("scrambled")))
	}
	b.WriteString(fmt.Sprintf("Moves: %d\n", m.cube.MoveCount()))

	// Recent moves
	if len(m.moves) > 0 {
		b.WriteString("Recent: ")
		start := 0
		if len(m.moves) > recentMoves {
			start = len(m.moves) - recentMoves
			b.WriteString("... ")
		}
		b.WriteString(moveStyle.Render(rubik.FormatMoves(m.moves[start:])))
		b.WriteString("\n")
	}

	if m.solving {
		b.WriteString(statusStyle.Render("Solving..."))
		b.WriteString("\n")
	} else if m.hint != "" {
		b.WriteString(fmt.Sprintf("Solution: %s\n", phaseStyle.Render(m.hint)))
	}

	// Error
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", describePlayError(m.err))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Turn: r l u d f b m (shift = prime) | s=solve z=undo x=reset q=quit"))
	b.WriteString("\n")

	return b.String()
}

func describePlayError(err error) string {
	var se *rubik.SolveError
	if errors.As(err, &se) && se.Kind == rubik.ErrUnsolvable {
		return "solver rejected cube: " + se.Message
	}
	return err.Error()
}

var playPlain bool

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Turn a cube from the keyboard",
	Long: `Interactive cube in the terminal.

Lower case keys turn a face clockwise and upper case keys turn it
counter-clockwise. Press 's' for a solution from the current state.
With --db the moves are journaled like a served session.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playPlain, "plain", false, "Draw letters without colors")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Logs would scribble over the alt screen.
	a, err := newAppFromConfig(cfg, logging.Discard(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	model := newPlayModel(a.sessions.Default().Cube, playPlain)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
