package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
)

var payCmd = &cobra.Command{
	Use:   "pay [id] [amount]",
	Short: "Record a payment from a client",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			fatal("Invalid amount", err)
		}

		svc := openService()
		res, err := svc.RecordPayment(context.Background(), args[0], amount)
		if err != nil {
			fatal("Failed to record payment", err)
		}
		printResult(res)
	},
}

func init() {
	rootCmd.AddCommand(payCmd)
}
