package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/biomebot/internal/config"
	"github.com/rcliao/biomebot/internal/memory"
	"github.com/rcliao/biomebot/internal/model"
	"github.com/rcliao/biomebot/internal/store"
)

// stateView is a snapshot with its memory decoded for display.
type stateView struct {
	BotID        string          `json:"bot_id"`
	CurrentOrder []string        `json:"current_order"`
	Revision     string          `json:"revision,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Memory       json.RawMessage `json:"memory"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect and manage saved bot state",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saved memory and part order",
		RunE:  runStateShow,
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget saved state; the next turn starts from the bot file",
		RunE:  runStateReset,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved state as JSON",
		Long:  "Export saved state as JSON. With --all, every bot in the sqlite store.",
		RunE:  runStateExport,
	}
	exportCmd.Flags().Bool("all", false, "Export every bot (sqlite only)")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import state from JSON on stdin",
		Long:  "Import state from JSON on stdin. Expects the format produced by export.",
		RunE:  runStateImport,
	}

	cmd.AddCommand(showCmd, resetCmd, exportCmd, importCmd)
	RootCmd.AddCommand(cmd)
}

func runStateShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	f, err := config.LoadBot(getBotFile())
	if err != nil {
		return err
	}
	st, err := openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	snap, err := st.LoadState(ctx, f.ID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no saved state for %s", f.ID)
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput() {
		raw := json.RawMessage(snap.Memory)
		if !json.Valid(raw) {
			raw = json.RawMessage("null")
		}
		return printJSON(w, stateView{
			BotID:        snap.BotID,
			CurrentOrder: snap.CurrentOrder,
			Revision:     snap.Revision,
			UpdatedAt:    snap.UpdatedAt,
			Memory:       raw,
		})
	}

	fmt.Fprintf(w, "bot:      %s\n", snap.BotID)
	fmt.Fprintf(w, "updated:  %s\n", humanize.Time(snap.UpdatedAt))
	fmt.Fprintf(w, "order:    %v\n", snap.CurrentOrder)
	mem, err := memory.Parse("saved memory", snap.Memory)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "queue:    %d pending\n", mem.Pending())
	for _, q := range mem.Queue {
		fmt.Fprintf(w, "  - %s\n", q)
	}
	fmt.Fprintf(w, "tags:     %v\n", mem.TagKeys())
	return nil
}

func runStateReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	f, err := config.LoadBot(getBotFile())
	if err != nil {
		return err
	}
	st, err := openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.DeleteState(ctx, f.ID); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"reset":%q}`+"\n", f.ID)
	return nil
}

func runStateExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	all, _ := cmd.Flags().GetBool("all")

	var snaps []model.Snapshot
	if all {
		s, err := openSQLite()
		if err != nil {
			return err
		}
		defer s.Close()
		if snaps, err = s.ExportAll(ctx, ""); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	} else {
		f, err := config.LoadBot(getBotFile())
		if err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		snap, err := st.LoadState(ctx, f.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("export: %w", err)
		}
		if snap != nil {
			snaps = append(snaps, *snap)
		}
	}

	if snaps == nil {
		snaps = []model.Snapshot{}
	}
	return printJSON(cmd.OutOrStdout(), snaps)
}

func runStateImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	var snaps []model.Snapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	for _, snap := range snaps {
		if snap.BotID == "" {
			return fmt.Errorf("parse json: snapshot without bot_id")
		}
		if err := memory.Validate(snap.BotID, snap.Memory); err != nil {
			return err
		}
	}

	st, err := openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	imported, err := store.Import(ctx, st, snaps)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d}`+"\n", imported)
	return nil
}
