package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"screen-clipper/src/config"
	"screen-clipper/src/logutil"
	"screen-clipper/src/normalize"
	"screen-clipper/src/ocr"
	"screen-clipper/src/ocr/tesseract"
	"screen-clipper/src/runtimeinit"
	"screen-clipper/src/session"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

type cliOptions struct {
	filePath    string
	lang        string
	jsonOutput  bool
	noNormalize bool
	out         string
	tessdata    string
	verbose     bool
}

// recognizerFactory builds the recognizer for a tessdata directory. Tests
// replace it.
type recognizerFactory func(tessdataDir string, opts ...ocr.Option) (session.Recognizer, func())

func tesseractRecognizer(tessdataDir string, opts ...ocr.Option) (session.Recognizer, func()) {
	engine := tesseract.New(tessdataDir)
	log := logutil.WithComponent("ocr")
	log.Debug().Str("tesseract", engine.Version()).Msg("OCR engine ready")
	inv := ocr.NewInvoker(engine, tessdataDir, log, opts...)
	return inv, func() { _ = engine.Close() }
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args), os.Stdin, os.Stdout, tesseractRecognizer)
}

func runWithArgs(args []string, stdin io.Reader, stdout io.Writer, newRecognizer recognizerFactory) error {
	if len(args) == 0 {
		args = []string{"clipper-ocr"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, stdin, stdout, newRecognizer)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, stdin io.Reader, stdout io.Writer, newRecognizer recognizerFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clipper-ocr",
		Short:         "Run OCR on an image file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts, stdin, stdout, newRecognizer)
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to image file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Language code (overrides DEFAULT_LANGUAGE)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&opts.noNormalize, "no-normalize", false, "Skip greyscale and deskew")
	cmd.Flags().StringVar(&opts.out, "out", "", "Keep the normalized image at this path (default: a private temp file that is removed)")
	cmd.Flags().StringVar(&opts.tessdata, "tessdata", "", "Directory holding *.traineddata files (overrides TESSDATA_DIR)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"file", "lang", "json", "no-normalize", "out", "tessdata", "verbose"} {
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

func runWithOptions(ctx context.Context, opts cliOptions, stdin io.Reader, stdout io.Writer, newRecognizer recognizerFactory) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logLevel := "error"
	if opts.verbose {
		logLevel = "debug"
	}

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			LanguageOverride:    opts.lang,
			TessdataDirOverride: opts.tessdata,
			LogLevelOverride:    logLevel,
		},
	})
	if err != nil {
		return err
	}
	cfg := rt.Config
	log := logutil.WithComponent("cli")

	data, err := readInput(opts.filePath, stdin)
	if err != nil {
		return err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("input is not a supported image: %w", err)
	}
	log.Debug().Int("bytes", len(data)).Int("width", img.Bounds().Dx()).Int("height", img.Bounds().Dy()).Msg("Input decoded")

	// Never share the resident's artifact path; another process may own it.
	artifact := opts.out
	var invokerOpts []ocr.Option
	if artifact != "" {
		invokerOpts = append(invokerOpts, ocr.KeepInput())
	} else {
		tmp, err := os.MkdirTemp("", "clipper-ocr-*")
		if err != nil {
			return fmt.Errorf("failed to create temp dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		artifact = filepath.Join(tmp, "input.png")
	}

	recognizer, closeRecognizer := newRecognizer(cfg.TessdataDir, invokerOpts...)
	defer closeRecognizer()

	var normalizer session.Normalizer
	if !opts.noNormalize {
		normalizer = normalize.New(nil)
	}

	textOut := stdout
	if opts.jsonOutput {
		textOut = io.Discard
	}

	pipeline, err := session.New(session.Options{
		Normalizer:   normalizer,
		Recognizer:   recognizer,
		Target:       session.StdoutTarget{Writer: textOut},
		Language:     session.NewLanguage(cfg.DefaultLanguage),
		ArtifactPath: artifact,
		Deadline:     time.Duration(cfg.OCRDeadlineSec) * time.Second,
		Log:          logutil.WithComponent("session"),
	})
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := pipeline.RecognizeImage(ctx, uuid.NewString(), img)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("OCR failed: %w", err)
	}
	log.Debug().Dur("elapsed", elapsed).Str("outcome", res.Outcome.String()).Float64("skew", res.Skew).Msg("OCR finished")

	if opts.jsonOutput {
		if err := writeJSON(stdout, res, opts.filePath, cfg.DefaultLanguage, elapsed); err != nil {
			return err
		}
	}

	switch res.Outcome {
	case ocr.TextFound, ocr.NoTextFound:
		return nil
	case ocr.LanguageDataMissing:
		return fmt.Errorf("language data for %q not found in %s", cfg.DefaultLanguage, filepath.Clean(cfg.TessdataDir))
	default:
		return fmt.Errorf("OCR failed: %s", res.Outcome)
	}
}

func readInput(filePath string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if filePath == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	return data, nil
}

type OCRResult struct {
	Text      string  `json:"text"`
	Outcome   string  `json:"outcome"`
	Language  string  `json:"language"`
	Source    string  `json:"source"`
	Skew      float64 `json:"skew_degrees"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
	CharCount int     `json:"character_count"`
}

func writeJSON(w io.Writer, res session.Result, source, lang string, elapsed time.Duration) error {
	out := OCRResult{
		Text:      res.Text,
		Outcome:   res.Outcome.String(),
		Language:  lang,
		Source:    source,
		Skew:      res.Skew,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  elapsed.Seconds(),
		CharCount: len([]rune(res.Text)),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
