package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

var progressCmd = &cobra.Command{
	Use:   "progress [timeline.json]",
	Short: "Compute progress and status message for a timeline",
	Long: `Reads a JSON array of timeline steps (from a file, or stdin with "-")
and prints the derived percentage and status message. Nothing is stored.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			fatal("Failed to read timeline", err)
		}

		var steps []core.TimelineStep
		if err := json.Unmarshal(data, &steps); err != nil {
			fatal("Failed to decode timeline", err)
		}

		p, ok := core.ComputeProgress(steps)
		if !ok {
			fmt.Println("empty timeline")
			return
		}
		fmt.Printf("%d%% %s\n", p.Percent, p.StatusMessage)
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
}
