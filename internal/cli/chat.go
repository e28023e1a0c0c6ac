package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newConversationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conversations",
		Short: "List chat conversations",
		Long:  "List property chat threads with unread counts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConversations()
		},
	}
}

func runConversations() error {
	convos, err := newAPIClient().Conversations()
	if err != nil {
		return apiErr(err)
	}

	if isJSON() {
		return printJSON(convos)
	}

	printConversationList(convos)
	return nil
}

func newMessagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages <property-id>",
		Short: "Read a property's chat thread",
		Long:  "Print the chat thread for a property, oldest first, and mark it read.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid property ID %q", args[0])
			}
			return runMessages(id)
		},
	}
}

func runMessages(propertyID int64) error {
	messages, err := newAPIClient().Messages(propertyID)
	if err != nil {
		return apiErr(err)
	}

	if isJSON() {
		return printJSON(messages)
	}

	printMessages(messages)
	return nil
}

func newSendCmd() *cobra.Command {
	var to int64

	cmd := &cobra.Command{
		Use:   "send <property-id> <message...>",
		Short: "Send a chat message",
		Long:  "Send a message on a property's thread. Tenant messages go to the landlord; landlords pick the tenant with --to.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid property ID %q", args[0])
			}
			return runSend(id, to, strings.Join(args[1:], " "))
		},
	}

	cmd.Flags().Int64Var(&to, "to", 0, "receiver user ID (landlord only)")

	return cmd
}

func runSend(propertyID, receiverID int64, content string) error {
	m, err := newAPIClient().SendMessage(propertyID, receiverID, content)
	if err != nil {
		return apiErr(err)
	}

	if isJSON() {
		return printJSON(m)
	}

	fmt.Printf("✓ Sent on property #%d at %s.\n", m.PropertyID, m.Timestamp.Format("15:04"))
	return nil
}
