package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

var onboardPassword string

var onboardCmd = &cobra.Command{
	Use:   "onboard [file]",
	Short: "Add a client from a JSON or YAML record",
	Long: `Add a client record read from a .json, .yaml or .yml file.
Progress and payment status are derived from the timeline and the amounts.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fatal("Failed to read record", err)
		}

		var c core.ClientEngagement
		switch strings.ToLower(filepath.Ext(args[0])) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, &c)
		default:
			err = json.Unmarshal(data, &c)
		}
		if err != nil {
			fatal("Failed to decode record", err)
		}

		if onboardPassword != "" {
			c.PasswordHash, err = core.HashPassword(onboardPassword)
			if err != nil {
				fatal("Failed to hash password", err)
			}
		}

		svc := openService()
		created, err := svc.Onboard(context.Background(), c)
		if err != nil {
			fatal("Failed to onboard client", err)
		}
		fmt.Printf("Client '%s' onboarded (%s).\n", created.ID, created.CompanyName)
	},
}

func init() {
	rootCmd.AddCommand(onboardCmd)
	onboardCmd.Flags().StringVar(&onboardPassword, "password", "", "Client login password (stored as bcrypt hash)")
}
