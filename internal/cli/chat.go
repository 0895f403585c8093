package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/biomebot/internal/bot"
	"github.com/rcliao/biomebot/internal/config"
	"github.com/rcliao/biomebot/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the bot one-to-one",
		Long: "Send a message and print the reply. Without a message, reads one message per line\n" +
			"from stdin until EOF, with a line editor when stdin is a terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTurns(cmd, args, (*bot.Bot).Reply)
		},
	}
	cmd.Flags().Bool("watch", false, "Reload the bot file while chatting when it changes")

	RootCmd.AddCommand(cmd)
}

type turnFunc func(*bot.Bot, context.Context, model.Message) (model.Reply, error)

func runTurns(cmd *cobra.Command, args []string, turn turnFunc) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	b, f, err := loadBot(ctx, st)
	if err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		stop, err := watchBot(ctx, f.Path(), b)
		if err != nil {
			return err
		}
		defer stop()
	}

	speaker := uuid.NewString()
	say := func(text string) error {
		r, err := turn(b, ctx, model.Message{
			SpeakerID:   speaker,
			DisplayName: userName,
			Text:        text,
			Timestamp:   time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		return printReply(cmd.OutOrStdout(), r)
	}

	if len(args) > 0 {
		return say(strings.Join(args, " "))
	}

	in := cmd.InOrStdin()
	if in == os.Stdin && readline.DefaultIsTerminal() {
		return interactive(cmd, say)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := say(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func interactive(cmd *cobra.Command, say func(string) error) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          userName + "> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".biomebot_history"),
		HistoryLimit:    500,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          cmd.OutOrStdout(),
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := say(line); err != nil {
			return err
		}
	}
}

// watchBot applies bot file edits to b until the returned stop is called.
func watchBot(ctx context.Context, path string, b *bot.Bot) (func(), error) {
	w, err := config.NewWatcher(path, logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(f *config.BotFile) {
			if err := applyBotFile(ctx, b, f); err != nil {
				logger.Warn("bot file change rejected", zap.Error(err))
			}
		})
	}()
	return func() {
		cancel()
		<-done
	}, nil
}

// printReply writes one reply. Silent replies print nothing in text mode.
func printReply(w io.Writer, r model.Reply) error {
	if jsonOutput() {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	if r.Silent() {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", r.DisplayName, r.Text)
	return err
}
