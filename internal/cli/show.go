package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	rubik "github.com/SeamusWaldron/rubik_server"
	"github.com/SeamusWaldron/rubik_server/internal/render"
)

var showPlain bool

var showCmd = &cobra.Command{
	Use:   "show [facelets]",
	Short: "Draw a cube state as an unfolded net",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showPlain, "plain", false, "Print letters without colors")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	g := rubik.Solved()
	if len(args) == 1 {
		var err error
		g, err = rubik.ParseGrid(args[0])
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.New(showPlain).Summary("Cube", g))
	return nil
}
