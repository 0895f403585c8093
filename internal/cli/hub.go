package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/biomebot/internal/bot"
)

func init() {
	cmd := &cobra.Command{
		Use:   "hub [message]",
		Short: "Post to a multi-party room the bot is in",
		Long: "Like chat, but the bot joins in only when its hub availability, generosity and\n" +
			"retention allow. When it stays silent nothing is printed in text mode.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTurns(cmd, args, (*bot.Bot).HubReply)
		},
	}
	cmd.Flags().Bool("watch", false, "Reload the bot file while chatting when it changes")

	RootCmd.AddCommand(cmd)
}
