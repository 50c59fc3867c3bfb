package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

var (
	updateData string
	updateFile string
)

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Apply a partial update to a client record",
	Long: `Apply a JSON partial update, e.g.

  portal update c1 --data '{"statusMessage":"Filing submitted","progress":80}'

Only the keys present are changed. The notifications produced are printed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw := []byte(updateData)
		if updateFile != "" {
			var err error
			raw, err = os.ReadFile(updateFile)
			if err != nil {
				fatal("Failed to read update", err)
			}
		}
		if len(raw) == 0 {
			fatal("Missing update", fmt.Errorf("use --data or --file"))
		}

		var u core.ClientUpdate
		if err := json.Unmarshal(raw, &u); err != nil {
			fatal("Failed to decode update", err)
		}

		svc := openService()
		res, err := svc.ApplyUpdate(context.Background(), actor(svc), args[0], u)
		if err != nil {
			fatal("Failed to apply update", err)
		}
		printResult(res)
	},
}

func printResult(res core.Result) {
	c := res.Record
	fmt.Printf("%s: progress %d%%, %s, paid %s/%s %s\n",
		c.ID, c.Progress, c.PaymentStatus,
		core.FormatAmount(c.AmountPaid), core.FormatAmount(c.ContractValue), c.Currency)
	for _, n := range res.Notifications {
		fmt.Printf("  [%s] %s: %s\n", n.Type, n.Title, n.Message)
	}
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateData, "data", "", "Update as inline JSON")
	updateCmd.Flags().StringVarP(&updateFile, "file", "f", "", "Read the update from a JSON file")
}
