// Package cli implements the biomebot CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/biomebot/internal/bot"
	"github.com/rcliao/biomebot/internal/chance"
	"github.com/rcliao/biomebot/internal/config"
	"github.com/rcliao/biomebot/internal/logging"
	"github.com/rcliao/biomebot/internal/store"
)

var (
	dbPath     string
	storeFlag  string
	configPath string
	formatFlag string
	userName   string
	verbose    bool
	seed       uint64

	env    *config.Env
	logger = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "biomebot",
	Short: "Rule-based chatbot engine",
	Long: "Talk to a bot built from ordered dictionary parts. Bots are defined in a YAML file;\n" +
		"their memory and part order persist between runs in SQLite or Redis.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		e, err := config.LoadEnv()
		if err != nil {
			return err
		}
		env = e

		l, err := logging.New(env.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $BIOMEBOT_DB or ~/.biomebot/state.db)")
	RootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "State store: sqlite, redis or memory (default: $BIOMEBOT_STORE or sqlite)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Bot file (default: $BIOMEBOT_CONFIG or biomebot.yaml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
	RootCmd.PersistentFlags().StringVarP(&userName, "user", "u", "Guest", "Your display name")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	RootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Random seed, 0 for time based (default: $BIOMEBOT_SEED)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return env.DBPath
}

func getBotFile() string {
	if configPath != "" {
		return configPath
	}
	return env.BotFile
}

func getStoreKind() string {
	if storeFlag != "" {
		return storeFlag
	}
	return env.Store
}

func getSeed() uint64 {
	if seed != 0 {
		return seed
	}
	return env.Seed
}

func openStore(ctx context.Context) (store.StateStore, error) {
	switch kind := getStoreKind(); kind {
	case config.StoreSQLite:
		return store.NewSQLiteStore(getDBPath())
	case config.StoreRedis:
		return store.NewRedisStore(ctx, env.RedisOptions(), env.RedisPrefix)
	case config.StoreMemory:
		return store.NewMapStore(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

func openSQLite() (*store.SQLiteStore, error) {
	if kind := getStoreKind(); kind != config.StoreSQLite {
		return nil, fmt.Errorf("this command needs the sqlite store, not %s", kind)
	}
	return store.NewSQLiteStore(getDBPath())
}

// loadBot builds the bot from the bot file. Parts that fail to load are
// logged and left out.
func loadBot(ctx context.Context, st store.StateStore) (*bot.Bot, *config.BotFile, error) {
	f, err := config.LoadBot(getBotFile())
	if err != nil {
		return nil, nil, err
	}
	settings, err := f.Settings()
	if err != nil {
		return nil, nil, err
	}

	b, err := bot.New(ctx, settings,
		bot.WithStore(st),
		bot.WithRand(chance.New(getSeed())),
		bot.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("load bot: %w", err)
	}

	registerParts(b, f)
	return b, f, nil
}

// applyBotFile pushes edited settings and parts into a running bot. The
// current order is reconciled, not reset.
func applyBotFile(ctx context.Context, b *bot.Bot, f *config.BotFile) error {
	settings, err := f.Settings()
	if err != nil {
		return err
	}
	if err := b.SetParam(ctx, settings, false); err != nil {
		return err
	}
	registerParts(b, f)
	return nil
}

func registerParts(b *bot.Bot, f *config.BotFile) {
	for _, pc := range f.PartSettings {
		ps, err := f.Part(pc.Name)
		if err != nil {
			logger.Warn("part skipped", zap.String("part", pc.Name), zap.Error(err))
			continue
		}
		// SetPart logs its own failures.
		_ = b.SetPart(ps)
	}
}

func jsonOutput() bool {
	return formatFlag == "json"
}

func printJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
