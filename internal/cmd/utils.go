package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/api"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/cache"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/config"
)

// newLogger builds the stderr logger shared by all commands. Progress and
// degradation warnings go to stderr so stdout stays clean for report output.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// openSnapshotCache opens the snapshot cache per config. A nil return with a
// nil error means caching is disabled; open failures are reported to the
// caller's logger and treated as disabled.
func openSnapshotCache(cfg *config.Config, log zerolog.Logger) *cache.Cache {
	if cfg.Cache.Disabled {
		return nil
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = config.EnsureDataDir()
		if err != nil {
			log.Warn().Err(err).Msg("snapshot cache unavailable")
			return nil
		}
	}

	c, err := cache.Open(dir)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot cache unavailable")
		return nil
	}
	return c
}

// snapshotStore converts a possibly-nil *cache.Cache into the interface the
// API client takes. A typed nil pointer inside a non-nil interface would
// defeat the client's nil checks.
func snapshotStore(c *cache.Cache) api.SnapshotStore {
	if c == nil {
		return nil
	}
	return c
}
