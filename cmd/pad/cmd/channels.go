package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

func channelsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "channels",
		Short: "Manage an owner's channel contacts",
	}

	root.AddCommand(channelGetCmd(), channelSetCmd())

	return root
}

func channelGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get",
		Short:   "Show an owner's channel contacts",
		Example: `  pad channels get --owner alice`,
		RunE: func(_ *cobra.Command, _ []string) error {
			owner, err := ownerID()
			if err != nil {
				return err
			}
			p, err := newClient().GetChannels(context.Background(), owner)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(p)
			}
			if len(p.Contacts) == 0 {
				fmt.Println("No channels configured.")
				return nil
			}
			return writeChannels(os.Stdout, p)
		},
	}
}

func channelSetCmd() *cobra.Command {
	var specs []string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace an owner's channel contacts",
		Long: "Replace an owner's channel contacts. Each --contact is channel=address;\n" +
			"append :off to keep the address but disable the channel.",
		Example: `  pad channels set --owner alice \
    --contact email=alice@example.com --contact sms=+15551234567:off`,
		RunE: func(_ *cobra.Command, _ []string) error {
			owner, err := ownerID()
			if err != nil {
				return err
			}
			contacts, err := parseContacts(specs)
			if err != nil {
				return err
			}
			p, err := newClient().SetChannels(context.Background(), owner, contacts)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(p)
			}
			return writeChannels(os.Stdout, p)
		},
	}
	cmd.Flags().StringArrayVar(&specs, "contact", nil, "contact as channel=address[:off] (repeatable)")

	return cmd
}

// parseContacts turns channel=address[:off] flags into contacts.
func parseContacts(specs []string) ([]domain.ChannelContact, error) {
	contacts := make([]domain.ChannelContact, 0, len(specs))
	for _, s := range specs {
		ch, addr, ok := strings.Cut(s, "=")
		if !ok || ch == "" {
			return nil, fmt.Errorf("invalid contact %q: want channel=address", s)
		}
		enabled := true
		if trimmed, found := strings.CutSuffix(addr, ":off"); found {
			addr, enabled = trimmed, false
		}
		contacts = append(contacts, domain.ChannelContact{
			Channel: domain.Channel(strings.ToLower(ch)),
			Address: addr,
			Enabled: enabled,
		})
	}
	return contacts, nil
}
