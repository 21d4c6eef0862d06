package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

func notificationsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Inspect notifications and delivery status",
	}

	root.AddCommand(
		notificationListCmd(),
		notificationGetCmd(),
		notificationReadCmd(),
		notificationDeleteCmd(),
		notificationSendCmd(),
	)

	return root
}

func notificationListCmd() *cobra.Command {
	var f domain.NotificationFilter
	var status, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an owner's notifications, newest first",
		Example: `  pad notifications list --owner alice
  pad notifications list --owner alice --unread --status delivered`,
		RunE: func(_ *cobra.Command, _ []string) error {
			owner, err := ownerID()
			if err != nil {
				return err
			}
			f.Status = domain.NotificationStatus(status)
			f.Category = domain.Category(category)

			page, err := newClient().ListNotifications(context.Background(), owner, f)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(page)
			}
			if len(page.Notifications) == 0 {
				fmt.Println("No notifications found.")
				return nil
			}
			if err := writeNotificationTable(os.Stdout, page.Notifications); err != nil {
				return err
			}
			fmt.Printf("\nShowing %d of %d.\n", len(page.Notifications), page.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().BoolVar(&f.UnreadOnly, "unread", false, "only notifications without a read receipt")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "page size (server default 50)")
	cmd.Flags().IntVar(&f.Offset, "offset", 0, "page offset")

	return cmd
}

func notificationGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show a notification and its delivery attempts",
		Example: `  pad notifications get 9a2e...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := newClient().GetNotification(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(n)
			}
			return writeNotificationDetail(os.Stdout, n)
		},
	}
}

func notificationReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "read <id>",
		Short:   "Mark a delivered notification as read",
		Example: `  pad notifications read 9a2e...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := newClient().MarkRead(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(n)
			}
			fmt.Printf("Notification %s read at %s.\n", n.ID, formatTime(n.ReadAt))
			return nil
		},
	}
}

func notificationDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a notification and its attempts",
		Example: `  pad notifications delete 9a2e...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := newClient().DeleteNotification(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Notification %s deleted.\n", args[0])
			return nil
		},
	}
}

func notificationSendCmd() *cobra.Command {
	var (
		p        domain.SystemPayload
		category string
		priority string
		channels []string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a system notification to an owner",
		Example: `  pad notifications send --owner alice --title "Maintenance tonight" \
    --body "Quotes may be delayed 22:00-23:00 UTC." --category warning --channel email`,
		RunE: func(_ *cobra.Command, _ []string) error {
			owner, err := ownerID()
			if err != nil {
				return err
			}
			if p.Title == "" {
				return fmt.Errorf("--title is required")
			}
			p.Category = domain.Category(category)
			p.Priority = domain.Priority(priority)
			for _, ch := range channels {
				p.Channels = append(p.Channels, domain.Channel(ch))
			}

			res, err := newClient().SendSystemNotification(context.Background(), owner, p)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(res)
			}
			if res.Notification == nil {
				fmt.Printf("Suppressed on every channel (%s).\n", joinChannels(res.Suppressed))
				return nil
			}
			fmt.Printf("Notification %s %s on %s.\n",
				res.Notification.ID, res.Notification.Status, joinChannels(res.Notification.Channels))
			if len(res.Suppressed) > 0 {
				fmt.Printf("Suppressed on %s.\n", joinChannels(res.Suppressed))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Title, "title", "", "notification title")
	cmd.Flags().StringVar(&p.Body, "body", "", "notification body")
	cmd.Flags().StringVar(&category, "category", "", "category (system, task, error, info, warning)")
	cmd.Flags().StringVar(&priority, "priority", "", "priority (low, medium, high)")
	cmd.Flags().StringArrayVar(&channels, "channel", nil, "restrict delivery to a channel (repeatable)")

	return cmd
}
