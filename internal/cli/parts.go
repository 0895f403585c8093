package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/biomebot/internal/config"
)

type partView struct {
	Name         string  `json:"name"`
	Position     int     `json:"position"`
	Registered   bool    `json:"registered"`
	Availability float64 `json:"availability"`
	Generosity   float64 `json:"generosity"`
	Retention    float64 `json:"retention"`
	DictBytes    int     `json:"dict_bytes"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "parts",
		Short: "List parts and edit the default part order",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List parts in the current order",
		RunE:  runPartsList,
	}

	raiseCmd := &cobra.Command{
		Use:   "raise NAME",
		Short: "Move a part one place up the default order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editOrder(cmd, args[0], (*config.BotFile).RaisePart)
		},
	}

	dropCmd := &cobra.Command{
		Use:   "drop NAME",
		Short: "Move a part one place down the default order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editOrder(cmd, args[0], (*config.BotFile).DropPart)
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm NAME",
		Short: "Remove a part from the bot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editOrder(cmd, args[0], (*config.BotFile).RemovePart)
		},
	}

	cmd.AddCommand(listCmd, raiseCmd, dropCmd, rmCmd)
	RootCmd.AddCommand(cmd)
}

func runPartsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	b, _, err := loadBot(ctx, st)
	if err != nil {
		return err
	}

	var views []partView
	for i, name := range b.CurrentOrder() {
		v := partView{Name: name, Position: i + 1}
		if p, ok := b.Part(name); ok {
			v.Registered = true
			v.Availability = p.Availability
			v.Generosity = p.Generosity
			v.Retention = p.Retention
			v.DictBytes = p.DictBytes()
		}
		views = append(views, v)
	}

	w := cmd.OutOrStdout()
	if jsonOutput() {
		if views == nil {
			views = []partView{}
		}
		return printJSON(w, views)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPART\tAVAIL\tGENER\tRETAIN\tDICT")
	for _, v := range views {
		if !v.Registered {
			fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\tnot loaded\n", v.Position, v.Name)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.2f\t%s\n",
			v.Position, v.Name, v.Availability, v.Generosity, v.Retention,
			humanize.Bytes(uint64(v.DictBytes)))
	}
	return tw.Flush()
}

func editOrder(cmd *cobra.Command, name string, edit func(*config.BotFile, string) error) error {
	f, err := config.LoadBot(getBotFile())
	if err != nil {
		return err
	}
	if err := edit(f, name); err != nil {
		return err
	}
	if err := f.Save(""); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(w, map[string]interface{}{"ok": true, "parts": f.Parts})
	}
	for i, p := range f.Parts {
		fmt.Fprintf(w, "%d. %s\n", i+1, p)
	}
	return nil
}
