package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"screen-clipper/src/capture"
	"screen-clipper/src/clipboard"
	"screen-clipper/src/config"
	"screen-clipper/src/eventloop"
	"screen-clipper/src/gui"
	"screen-clipper/src/hotkey"
	"screen-clipper/src/logutil"
	"screen-clipper/src/normalize"
	"screen-clipper/src/notification"
	"screen-clipper/src/ocr"
	"screen-clipper/src/ocr/tesseract"
	"screen-clipper/src/overlay"
	"screen-clipper/src/runtimeinit"
	"screen-clipper/src/screenshot"
	"screen-clipper/src/session"
	"screen-clipper/src/singleinstance"
	"screen-clipper/src/tray"
	"screen-clipper/src/worker"
)

const appName = "screen-clipper"

// errAlreadyRunning is returned when another resident owns the port range.
var errAlreadyRunning = errors.New("screen clipper is already running")

type mainOptions struct {
	toggle   bool
	lang     string
	tessdata string
	logLevel string
}

func main() {
	enableDPIAwareness()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := normalizeLegacyArgs(os.Args)
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Select a screen region and copy its text to the clipboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts)
		},
	}

	cmd.Flags().BoolVar(&opts.toggle, "toggle", false, "Toggle the overlays of the running instance and exit")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Initial OCR language code (overrides DEFAULT_LANGUAGE)")
	cmd.Flags().StringVar(&opts.tessdata, "tessdata", "", "Directory holding *.traineddata files (overrides TESSDATA_DIR)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	return cmd
}

// normalizeLegacyArgs accepts single-dash long flags such as -toggle.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"toggle", "lang", "tessdata", "log-level"} {
			single := "-" + name
			switch {
			case arg == single:
				normalized[i] = "-" + single
			case strings.HasPrefix(arg, single+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}

func runWithOptions(ctx context.Context, opts mainOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	loadOptions := config.LoadOptions{
		LanguageOverride:    opts.lang,
		TessdataDirOverride: opts.tessdata,
		LogLevelOverride:    opts.logLevel,
	}

	if opts.toggle {
		// Load .env early so CLIPPER_PORT_* apply to the scan.
		_, _ = config.LoadWithOptions(loadOptions)
		return handleToggleWithDelegation(ctx, singleinstance.NewClient(), func() error {
			return runResident(ctx, loadOptions, true)
		})
	}

	return runResident(ctx, loadOptions, false)
}

// handleToggleWithDelegation forwards TOGGLE to a resident. Without one it
// starts a resident that shows its overlays immediately.
func handleToggleWithDelegation(ctx context.Context, client singleinstance.Client, fallback func() error) error {
	delegated, reply, err := client.Send(ctx, singleinstance.CommandToggle)
	if err != nil {
		return fmt.Errorf("toggle delegation failed: %w", err)
	}
	if delegated {
		log.Debug().Str("reply", reply).Msg("Toggle delegated to resident")
		return nil
	}
	log.Info().Msg("No resident detected, starting one")
	return fallback()
}

func runResident(parent context.Context, loadOptions config.LoadOptions, showOnStart bool) error {
	probe, cancelProbe := context.WithTimeout(parent, 2*time.Second)
	port, found := singleinstance.DetectResidentPort(probe)
	cancelProbe()
	if found {
		fmt.Printf("one is already running on port %d\n", port)
		return errAlreadyRunning
	}

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:   loadOptions,
		LogDir:        executableDir(),
		NeedClipboard: true,
	})
	if err != nil {
		return err
	}
	cfg := rt.Config
	logMonitorConfiguration()

	combo, err := hotkey.Parse(cfg.Hotkey)
	if err != nil {
		return fmt.Errorf("invalid HOTKEY %q: %w", cfg.Hotkey, err)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	srv := singleinstance.NewServer(logutil.WithComponent("singleinstance"))
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to claim resident port: %w", err)
	}
	defer srv.Close()

	renderer, err := gui.New(logutil.WithComponent("gui"))
	if err != nil {
		return fmt.Errorf("failed to start overlay renderer: %w", err)
	}
	defer renderer.Close()

	notifier := notification.New(logutil.WithComponent("notification"))
	lang := session.NewLanguage(cfg.DefaultLanguage)

	engine := tesseract.New(cfg.TessdataDir)
	defer engine.Close()
	ocrLog := logutil.WithComponent("ocr")
	ocrLog.Info().Str("tesseract", engine.Version()).Str("tessdata", cfg.TessdataDir).Msg("OCR engine ready")
	invoker := ocr.NewInvoker(engine, cfg.TessdataDir, ocrLog)

	pipeline, err := session.New(session.Options{
		Capturer:   screenshot.Capturer{},
		Normalizer: normalize.New(nil),
		Recognizer: invoker,
		Target: session.DesktopTarget{
			Clipboard: clipboard.Sink{},
			Notifier:  notifier,
			Names:     rt.Catalog.Name,
		},
		Language:     lang,
		ArtifactPath: cfg.ArtifactPath,
		Settle:       time.Duration(cfg.CaptureSettleMs) * time.Millisecond,
		Deadline:     time.Duration(cfg.OCRDeadlineSec) * time.Second,
		Log:          logutil.WithComponent("session"),
	})
	if err != nil {
		return err
	}

	pool := worker.New(1, logutil.WithComponent("worker"))
	defer pool.Close()

	overlays := overlay.NewSet(renderer, logutil.WithComponent("overlay"))
	coord := capture.New(overlays, pool, pipeline, notifier, logutil.WithComponent("capture"))
	loop := eventloop.New(eventloop.Options{
		Overlays:    overlays,
		Coordinator: coord,
		Monitors:    screenshot.Monitors,
		Server:      srv,
		Pointer:     renderer.Events(),
		Log:         logutil.WithComponent("eventloop"),
	})

	hotkey.Listen(ctx, combo, loop.Toggle, logutil.WithComponent("hotkey"))

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			log.Info().Msg("Signal received, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(ctx)
		tray.Quit()
	}()

	if showOnStart {
		loop.Toggle()
	}

	log.Info().
		Str("hotkey", combo.String()).
		Int("port", srv.Port()).
		Str("language", lang.Get()).
		Msg("Screen Clipper initialized")

	tray.Run(tray.Options{
		Languages:      rt.Installed,
		Current:        lang.Get(),
		Tooltip:        tooltip(combo, rt.Catalog.Name(lang.Get())),
		OnTakeClipping: loop.Toggle,
		OnSelectLanguage: func(code string) {
			lang.Set(code)
			tray.UpdateTooltip(tooltip(combo, rt.Catalog.Name(code)))
		},
		OnQuit: cancel,
		Log:    logutil.WithComponent("tray"),
	})

	cancel()
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("Event loop stopped")
	}
	return nil
}

func tooltip(combo hotkey.Combo, languageName string) string {
	return fmt.Sprintf("Screen Clipper (%s) - Press %s to capture", languageName, combo)
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exe)
}
