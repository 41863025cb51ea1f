// Package cli wires the cobra command tree: the root transcription command
// plus model, config, quick-path, GUI, and version subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mediascribe/internal/config"
	"mediascribe/internal/logging"
	"mediascribe/internal/transcriber"
)

var (
	flagInput      string
	flagOutput     string
	flagModel      string
	flagLanguage   string
	flagTimestamps bool
	flagBatch      bool
	flagVerbose    bool
	flagKeepAudio  bool
)

var (
	statusColor = color.New(color.FgCyan)
	okColor     = color.New(color.FgGreen, color.Bold)
	errColor    = color.New(color.FgRed, color.Bold)
	warnColor   = color.New(color.FgYellow)
)

var rootCmd = &cobra.Command{
	Use:   "mediascribe",
	Short: "Transcribe video and audio files to readable text",
	Long: `mediascribe extracts the audio track from video/audio files, runs it
through a local whisper speech-to-text model, and cleans the result into a
readable transcript.

Models are downloaded on first use and stored under the config directory.

Examples:
  mediascribe -i lecture.mp4
  mediascribe -i lecture.mp4 -o notes.txt -m small -t
  mediascribe -i ~/Movies -b -o ~/Documents/transcripts
  mediascribe gui`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.Flags().StringVarP(&flagInput, "input", "i", "", "input media file, or directory with --batch")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output transcript file or directory")
	rootCmd.Flags().StringVarP(&flagModel, "model", "m", "", "whisper model size ("+transcriber.ModelNames()+")")
	rootCmd.Flags().StringVarP(&flagLanguage, "language", "l", "", `spoken language code, or "auto"`)
	rootCmd.Flags().BoolVarP(&flagTimestamps, "timestamps", "t", false, "prefix each line with its time span")
	rootCmd.Flags().BoolVarP(&flagBatch, "batch", "b", false, "treat input as a directory of media files")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging and raw result dump")
	rootCmd.Flags().BoolVar(&flagKeepAudio, "keep-audio", false, "keep the extracted WAV file")
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		errColor.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// exitError carries a specific exit code without an extra error print.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit code %d", e.code) }

// newLogger builds the slog logger the subcommands share.
func newLogger(cfg *config.Config) *slog.Logger {
	level := "info"
	if flagVerbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, LogDir: cfg.LogDir})
	if err != nil {
		warnColor.Fprintf(os.Stderr, "Logging setup failed (%v), continuing on stderr\n", err)
		logger, _ = logging.New(logging.Options{Level: level})
	}
	return logger
}

// loadConfig applies the ConfigurationError policy: bad settings produce a
// notice and defaults, never a crash.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		if config.Exists() {
			warnColor.Fprintf(os.Stderr, "Config unreadable (%v), using defaults\n", err)
		}
		cfg = config.DefaultConfig()
	}
	cfg.ApplyDotenv()
	return cfg
}
