package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

var (
	listJSON   bool
	listMatch  string
	showByMail bool
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List client records",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()

		clients := svc.List()
		if listMatch != "" {
			var err error
			clients, err = svc.FindClients(listMatch)
			if err != nil {
				fatal("Invalid --match pattern", err)
			}
		}

		if listJSON {
			printJSON(clients)
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMPANY\tEMAIL\tPROGRESS\tPAYMENT\tBALANCE\tUNREAD")
		for _, c := range clients {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\t%s %s\t%d\n",
				c.ID, c.CompanyName, c.Email, c.Progress, c.PaymentStatus,
				core.FormatAmount(c.Balance()), c.Currency, c.Notifications.Unread())
		}
		w.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one client record as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()

		var (
			c   core.ClientEngagement
			err error
		)
		if showByMail {
			c, err = svc.FindByEmail(args[0])
		} else {
			c, err = svc.Get(args[0])
		}
		if err != nil {
			fatal("Failed to read client", err)
		}
		c.PasswordHash = ""
		printJSON(c)
	},
}

func init() {
	rootCmd.AddCommand(clientsCmd)
	clientsCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	clientsCmd.Flags().StringVar(&listMatch, "match", "", "Glob on email or company name (e.g. \"*@acme.*\")")

	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showByMail, "email", false, "Treat the argument as a login email")
}
