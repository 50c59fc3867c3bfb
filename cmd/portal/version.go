package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("portal %s\n", portal.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
