package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/rubik_server/internal/journal"
)

var (
	historySession string
	historyLimit   int
	historyMoves   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show journaled sessions, moves and solves",
	Long: `Read the journal written by 'rubik serve --db'.

Without --session, lists the most recent sessions. With --session, shows
that session's moves and the solutions it asked for.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historySession, "session", "", "Session ID to show in detail")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of sessions to list")
	historyCmd.Flags().IntVar(&historyMoves, "moves", 40, "Number of trailing moves to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if historySession != "" {
		return showSessionHistory(out, db, historySession)
	}
	return listSessionHistory(out, db, historyLimit)
}

func listSessionHistory(out io.Writer, db *journal.DB, limit int) error {
	sessions, err := journal.NewSessionRepository(db).List(limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-19s  %6s  %6s  %6s  %s\n", "SESSION", "STARTED", "MOVES", "SOLVES", "RESETS", "STATUS")
	for _, s := range sessions {
		status := "open"
		if s.EndedAt != nil {
			status = "ended " + s.EndedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(out, "%-36s  %-19s  %6d  %6d  %6d  %s\n",
			s.SessionID, s.StartedAt.Local().Format(time.DateTime), s.MoveCount, s.SolveCount, s.ResetCount, status)
	}
	return nil
}

func showSessionHistory(out io.Writer, db *journal.DB, sessionID string) error {
	s, err := journal.NewSessionRepository(db).Get(sessionID)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	moves, err := journal.NewMoveRepository(db).ListBySession(sessionID)
	if err != nil {
		return err
	}
	solves, err := journal.NewSolveRepository(db).ListBySession(sessionID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Session: %s\n", s.SessionID)
	fmt.Fprintf(out, "Started: %s\n", s.StartedAt.Local().Format(time.DateTime))
	if s.EndedAt != nil {
		fmt.Fprintf(out, "Ended:   %s\n", s.EndedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(out, "Moves: %d  Solves: %d  Resets: %d\n", s.MoveCount, s.SolveCount, s.ResetCount)

	if len(moves) > 0 {
		shown := moves
		if historyMoves > 0 && len(shown) > historyMoves {
			shown = shown[len(shown)-historyMoves:]
		}
		notations := make([]string, len(shown))
		for i, m := range shown {
			notations[i] = m.Notation
		}
		fmt.Fprintln(out)
		if len(shown) < len(moves) {
			fmt.Fprintf(out, "Last %d moves: ... %s\n", len(shown), strings.Join(notations, " "))
		} else {
			fmt.Fprintf(out, "Moves: %s\n", strings.Join(notations, " "))
		}
		fmt.Fprintf(out, "Latest state: %s\n", moves[len(moves)-1].Facelets)
	}

	if len(solves) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Solves:")
		for _, sv := range solves {
			fmt.Fprintf(out, "  %s  %s (%d steps)\n", sv.CreatedAt.Local().Format(time.DateTime), sv.Solution, sv.StepCount)
		}
	}
	return nil
}
