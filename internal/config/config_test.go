package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadEnv_Defaults(t *testing.T) {
	for _, k := range []string{"BIOMEBOT_DB", "BIOMEBOT_STORE", "BIOMEBOT_SEED", "BIOMEBOT_CONFIG", "BIOMEBOT_LOG_LEVEL"} {
		unsetenv(t, k)
	}

	e, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, e.Store)
	assert.Equal(t, DefaultDBPath(), e.DBPath)
	assert.Equal(t, "biomebot.yaml", e.BotFile)
	assert.Equal(t, "warn", e.LogLevel)
	assert.Zero(t, e.Seed)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("BIOMEBOT_DB", "/tmp/x.db")
	t.Setenv("BIOMEBOT_STORE", "redis")
	t.Setenv("BIOMEBOT_REDIS_ADDR", "cache:6380")
	t.Setenv("BIOMEBOT_REDIS_DB", "3")
	t.Setenv("BIOMEBOT_SEED", "42")

	e, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", e.DBPath)
	assert.Equal(t, StoreRedis, e.Store)
	assert.Equal(t, uint64(42), e.Seed)

	opts := e.RedisOptions()
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
}

func TestLoadEnv_Dotenv(t *testing.T) {
	unsetenv(t, "BIOMEBOT_REDIS_PREFIX")
	t.Setenv("BIOMEBOT_LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BIOMEBOT_REDIS_PREFIX=fromfile\nBIOMEBOT_LOG_LEVEL=debug\n"), 0o644))

	e, err := LoadEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "fromfile", e.RedisPrefix)
	assert.Equal(t, "error", e.LogLevel, "process environment wins over dotenv")
}

func TestLoadEnv_UnknownStore(t *testing.T) {
	t.Setenv("BIOMEBOT_STORE", "postgres")
	_, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "unknown store")
}

const sampleBot = `id: biome
displayName: Biome
parts: [greeting, smalltalk]
hub:
  availability: 0.5
  generosity: 0.9
  retention: 0.4
memoryFile: memory.json
partSettings:
  - name: greeting
    availability: 1
    generosity: 0.2
    retention: 0.8
    dict: |
      # greetings
      [[["hello"], ["hi {userName}"]]]
  - name: smalltalk
    availability: 0.7
    generosity: 0.5
    retention: 0.5
    dictFile: dicts/smalltalk.json
`

func writeBot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dicts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bot.yaml"), []byte(sampleBot), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memory.json"), []byte(`{"tags": {}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dicts", "smalltalk.json"), []byte(`[[["weather"], ["sunny"]]]`), 0o644))
	return filepath.Join(dir, "bot.yaml")
}

func TestLoadBot(t *testing.T) {
	path := writeBot(t)
	f, err := LoadBot(path)
	require.NoError(t, err)

	s, err := f.Settings()
	require.NoError(t, err)
	assert.Equal(t, "biome", s.ID)
	assert.Equal(t, []string{"greeting", "smalltalk"}, s.Parts)
	assert.Equal(t, 0.9, s.Hub.Generosity)
	assert.Equal(t, `{"tags": {}}`, s.Memory)

	g, err := f.Part("greeting")
	require.NoError(t, err)
	assert.Contains(t, g.DictSource, `[[["hello"]`)
	assert.Equal(t, 0.8, g.Retention)

	st, err := f.Part("smalltalk")
	require.NoError(t, err)
	assert.Equal(t, `[[["weather"], ["sunny"]]]`, st.DictSource)

	_, err = f.Part("nope")
	assert.Error(t, err)
}

func TestLoadBot_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadBot(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	noID := filepath.Join(dir, "noid.yaml")
	require.NoError(t, os.WriteFile(noID, []byte("displayName: x\n"), 0o644))
	_, err = LoadBot(noID)
	assert.ErrorContains(t, err, "id is required")

	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("id: x\npartSettings:\n  - name: a\n  - name: a\n"), 0o644))
	_, err = LoadBot(dup)
	assert.ErrorContains(t, err, "duplicate part")
}

func TestBotFile_EditOrder(t *testing.T) {
	f, err := LoadBot(writeBot(t))
	require.NoError(t, err)

	require.NoError(t, f.RaisePart("smalltalk"))
	assert.Equal(t, []string{"smalltalk", "greeting"}, f.Parts)
	require.NoError(t, f.RaisePart("smalltalk"))
	assert.Equal(t, []string{"smalltalk", "greeting"}, f.Parts, "front stays front")

	require.NoError(t, f.DropPart("smalltalk"))
	assert.Equal(t, []string{"greeting", "smalltalk"}, f.Parts)
	require.NoError(t, f.DropPart("smalltalk"))
	assert.Equal(t, []string{"greeting", "smalltalk"}, f.Parts, "back stays back")

	assert.Error(t, f.RaisePart("ghost"))
	assert.Error(t, f.DropPart("ghost"))

	require.NoError(t, f.RemovePart("greeting"))
	assert.Equal(t, []string{"smalltalk"}, f.Parts)
	require.Len(t, f.PartSettings, 1)
	assert.Equal(t, "smalltalk", f.PartSettings[0].Name)
	assert.Error(t, f.RemovePart("greeting"))
}

func TestBotFile_SaveRoundTrip(t *testing.T) {
	path := writeBot(t)
	f, err := LoadBot(path)
	require.NoError(t, err)
	require.NoError(t, f.DropPart("greeting"))
	require.NoError(t, f.Save(""))

	back, err := LoadBot(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"smalltalk", "greeting"}, back.Parts)
	assert.Equal(t, "memory.json", back.MemoryFile)
	assert.Equal(t, f.PartSettings, back.PartSettings)
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeBot(t)
	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan *BotFile, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(f *BotFile) {
			select {
			case reloaded <- f:
			default:
			}
		})
	}()

	edited := strings.Replace(sampleBot, "displayName: Biome", "displayName: Biome II", 1)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	select {
	case f := <-reloaded:
		assert.Equal(t, "Biome II", f.DisplayName)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after edit")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_BadEditSkipped(t *testing.T) {
	path := writeBot(t)
	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan *BotFile, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(f *BotFile) {
			select {
			case reloaded <- f:
			default:
			}
		})
	}()
	defer func() {
		cancel()
		<-done
	}()

	require.NoError(t, os.WriteFile(path, []byte("displayName: [unclosed\n"), 0o644))
	select {
	case f := <-reloaded:
		t.Fatalf("unexpected reload %+v", f)
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte(sampleBot), 0o644))
	select {
	case f := <-reloaded:
		assert.Equal(t, "biome", f.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after fix")
	}
}
