package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

var (
	notifyTitle string
	notifyType  string
	inboxJSON   bool
	readAll     bool
)

var notifyCmd = &cobra.Command{
	Use:   "notify [client-id] [message]",
	Short: "Send a message across the admin/client boundary",
	Long: `As the admin, the message lands in the client's notifications.
With --as <client-id>, it lands in the admin feed.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		typ := core.NotificationType(notifyType)
		if !typ.Valid() {
			fatal("Invalid --type", fmt.Errorf("%q is not one of info, success, alert", notifyType))
		}

		svc := openService()
		n, err := svc.Notify(context.Background(), actor(svc), args[0], core.Message{
			Title: notifyTitle,
			Text:  args[1],
			Type:  typ,
		})
		if err != nil {
			fatal("Failed to send message", err)
		}
		fmt.Printf("Notification '%s' sent: %s\n", n.ID, n.Title)
	},
}

var inboxCmd = &cobra.Command{
	Use:   "inbox [client-id]",
	Short: "Show the admin feed or a client's notifications",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		ref := inboxRef(args)
		in, err := svc.Inbox(ref)
		if err != nil {
			fatal("Failed to read inbox", err)
		}
		if inboxJSON {
			printJSON(in)
			return
		}
		unread, _ := svc.UnreadCount(ref)
		fmt.Printf("%d unread\n", unread)
		for _, n := range in.All() {
			mark := " "
			if !n.Read {
				mark = "*"
			}
			fmt.Printf("%s %s  %-8s %s: %s\n", mark, n.Date.Format("2006-01-02 15:04"), n.Type, n.Title, n.Message)
		}
	},
}

var readCmd = &cobra.Command{
	Use:   "read [notification-id] [client-id]",
	Short: "Mark a notification as read",
	Long: `Mark one notification as read. Without a client id, the admin feed is used.
With --all, every notification of the inbox is marked and no notification id is taken.`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		ctx := context.Background()

		if readAll {
			n, err := svc.MarkAllRead(ctx, inboxRef(args))
			if err != nil {
				fatal("Failed to mark notifications", err)
			}
			fmt.Printf("%d notifications marked as read.\n", n)
			return
		}

		if len(args) == 0 {
			fatal("Missing notification id", fmt.Errorf("pass an id or --all"))
		}
		if err := svc.MarkRead(ctx, inboxRef(args[1:]), args[0]); err != nil {
			fatal("Failed to mark notification", err)
		}
		fmt.Printf("Notification '%s' marked as read.\n", args[0])
	},
}

func inboxRef(args []string) core.InboxRef {
	if len(args) == 0 {
		return core.AdminInbox()
	}
	return core.ClientInbox(args[0])
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.Flags().StringVar(&notifyTitle, "title", "", "Notification title (admin only)")
	notifyCmd.Flags().StringVar(&notifyType, "type", "info", "Notification type (info, success, alert)")

	rootCmd.AddCommand(inboxCmd)
	inboxCmd.Flags().BoolVar(&inboxJSON, "json", false, "Output in JSON format")

	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVar(&readAll, "all", false, "Mark the whole inbox as read")
}
