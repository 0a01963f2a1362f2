package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	rubik "github.com/SeamusWaldron/rubik_server"
	"github.com/SeamusWaldron/rubik_server/internal/render"
)

var (
	applyAlg     string
	applyFrom    string
	applyInverse bool
	applyPlain   bool
)

var applyCmd = &cobra.Command{
	Use:   "apply [moves...]",
	Short: "Apply a move sequence and print the result",
	Long: `Apply moves to a cube and print the unfolded net.

Moves may be given as separate arguments or one quoted string:

  rubik apply "R U R' U'"
  rubik apply --alg sledgehammer
  rubik apply --from <54 facelets> F`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyAlg, "alg", "", "Named algorithm to apply (see 'rubik algorithms')")
	applyCmd.Flags().StringVar(&applyFrom, "from", "", "Start from this facelet string instead of solved")
	applyCmd.Flags().BoolVar(&applyInverse, "inverse", false, "Apply the inverse of the sequence")
	applyCmd.Flags().BoolVar(&applyPlain, "plain", false, "Print letters without colors")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	moves, err := rubik.ParseMoves(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if applyAlg != "" {
		alg, ok := rubik.Algorithms[applyAlg]
		if !ok {
			return fmt.Errorf("unknown algorithm %q", applyAlg)
		}
		moves = append(moves, alg...)
	}
	if len(moves) == 0 {
		return fmt.Errorf("no moves given")
	}
	if applyInverse {
		moves = rubik.InverseSequence(moves)
	}

	start := rubik.Solved()
	if applyFrom != "" {
		start, err = rubik.ParseGrid(applyFrom)
		if err != nil {
			return err
		}
	}

	g := rubik.ApplyAll(start, moves)
	title := fmt.Sprintf("%s (%d moves)", rubik.FormatMoves(moves), len(moves))
	fmt.Fprintln(cmd.OutOrStdout(), render.New(applyPlain).Summary(title, g))
	return nil
}

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the named move sequences",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range rubik.AlgorithmNames() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", name, rubik.FormatMoves(rubik.Algorithms[name]))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}
