// Package runtimeinit performs the startup steps shared by the resident tray
// process and the command line tool.
package runtimeinit

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"screen-clipper/src/clipboard"
	"screen-clipper/src/config"
	"screen-clipper/src/language"
	"screen-clipper/src/logutil"
)

type Options struct {
	LoadOptions config.LoadOptions
	// LogDir is where the rotating log file goes when file logging is on.
	LogDir string
	// NeedClipboard initializes the system clipboard. The CLI leaves it off.
	NeedClipboard bool
}

// Runtime is what Bootstrap hands back to the entrypoints.
type Runtime struct {
	Config    *config.Config
	Catalog   *language.Catalog
	Installed []language.Language
}

// Bootstrap loads configuration, configures logging and checks the language
// data directory. A missing data directory is logged, not fatal; recognition
// reports the missing language per request.
func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logutil.Setup(logutil.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		FileLogging: cfg.EnableFileLogging,
		Dir:         opts.LogDir,
	}); err != nil {
		return nil, err
	}

	catalog := language.Default()
	rt := &Runtime{Config: cfg, Catalog: catalog}

	if info, err := os.Stat(cfg.TessdataDir); err != nil || !info.IsDir() {
		log.Warn().Str("dir", cfg.TessdataDir).Msg("language data directory not found")
	} else {
		installed, err := catalog.Installed(cfg.TessdataDir)
		if err != nil {
			log.Warn().Err(err).Str("dir", cfg.TessdataDir).Msg("failed to list installed languages")
		}
		rt.Installed = installed
	}
	log.Info().
		Str("tessdata", cfg.TessdataDir).
		Int("languages", len(rt.Installed)).
		Str("default_language", cfg.DefaultLanguage).
		Msg("runtime configured")

	if opts.NeedClipboard {
		if err := clipboard.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
	}

	return rt, nil
}
