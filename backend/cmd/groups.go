package cmd

import (
	"fmt"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"yptstats/backend/handshake"
)

func newGroupsCmd() *cobra.Command {
	groups := &cobra.Command{
		Use:   "groups",
		Short: "Inspect and clean up groups owned by the bot",
	}
	groups.AddCommand(newGroupsListCmd())
	groups.AddCommand(newGroupsSweepCmd())
	return groups
}

func newGroupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the bot's groups and their members",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ids, err := a.client.ListGroups(cmd.Context())
			if err != nil {
				return err
			}

			tbl := table.New("Group ID", "Members", "Joined")
			tbl.WithWriter(cmd.OutOrStdout())
			for _, id := range ids {
				members, err := a.client.ListGroupMembers(cmd.Context(), id)
				if err != nil {
					return err
				}
				joined := ""
				for _, m := range members {
					if m.UserID != a.cfg.BotID {
						joined = fmt.Sprintf("%s (%d)", m.Name, m.UserID)
					}
				}
				tbl.AddRow(id, len(members), joined)
			}
			tbl.Print()
			return nil
		},
	}
}

func newGroupsSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete every group owned by the bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			count, err := a.handshake.DeleteAllGroups(cmd.Context(), handshake.DeleteAwait)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d groups\n", count)
			return nil
		},
	}
}
