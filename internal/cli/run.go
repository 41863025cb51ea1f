package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mediascribe/internal/audio"
	"mediascribe/internal/config"
	"mediascribe/internal/pipeline"
	"mediascribe/internal/transcriber"
)

func runRoot(cmd *cobra.Command, args []string) error {
	if flagInput == "" {
		if len(args) > 0 {
			flagInput = args[0]
		} else {
			return errors.New("no input given (use -i <file> or -i <dir> with -b)")
		}
	}

	cfg := loadConfig()
	logger := newLogger(cfg)

	model := flagModel
	if model == "" {
		model = cfg.Model
	}
	if model == "" {
		model = transcriber.DefaultModel
	}
	if _, err := transcriber.Lookup(model); err != nil {
		return err
	}

	language := flagLanguage
	if language == "" {
		language = cfg.Language
	}
	if language == "" {
		language = "auto"
	}

	timestamps := flagTimestamps || cfg.Timestamps
	keepAudio := flagKeepAudio || cfg.KeepAudio

	inputs, err := collectInputs(config.ExpandPath(flagInput))
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Model:      model,
		Language:   language,
		Timestamps: timestamps,
		KeepAudio:  keepAudio,
		Verbose:    flagVerbose,
	}
	jobs := make([]pipeline.Job, 0, len(inputs))
	for _, input := range inputs {
		jobs = append(jobs, pipeline.NewJob(input, config.ExpandPath(flagOutput), opts))
	}

	extractor := audio.NewExtractor(cfg.FFmpegPath, flagVerbose, logger)
	if !extractor.Available() {
		warnColor.Fprintln(os.Stderr, "ffmpeg not found on PATH; falling back to built-in decoders (install ffmpeg for full format support)")
	}

	manager := transcriber.NewManager(cfg.ModelsDir, logger)
	cache := transcriber.NewCache(manager, cfg.WhisperPath, logger)

	var results []pipeline.Result
	if len(jobs) == 1 && isatty.IsTerminal(os.Stdout.Fd()) && !flagVerbose {
		results = runWithLiveView(cmd.Context(), extractor, cache, logger, jobs)
	} else {
		p := pipeline.New(extractor, cache, pipeline.Callbacks{
			OnLog: func(line string) { statusColor.Println(line) },
		}, logger)
		results = p.RunBatch(cmd.Context(), jobs)
	}

	return report(results, len(jobs))
}

// collectInputs resolves the input flag to concrete files.
func collectInputs(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input not found: %s", input)
	}

	if flagBatch {
		if !info.IsDir() {
			return nil, fmt.Errorf("--batch expects a directory, got file %s", input)
		}
		files, err := pipeline.ScanDirectory(input)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no media files found in %s", input)
		}
		statusColor.Printf("Found %d media files in %s\n", len(files), input)
		return files, nil
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory (use -b for batch mode)", input)
	}
	return []string{input}, nil
}

// report prints the outcome and converts failures into the exit code.
func report(results []pipeline.Result, queued int) error {
	var failed, cancelled, succeeded int
	for _, r := range results {
		switch {
		case r.Cancelled():
			cancelled++
		case r.Failed():
			failed++
		default:
			succeeded++
		}
	}

	if queued > 1 || failed > 0 {
		fmt.Println(summaryTable(results))
	}

	switch {
	case cancelled > 0:
		warnColor.Printf("Stopped: %d done, %d cancelled, %d not started\n", succeeded, cancelled, queued-len(results))
	case failed > 0:
		errColor.Printf("%d of %d jobs failed\n", failed, len(results))
	case len(results) == 1:
		okColor.Printf("Transcript saved to %s\n", results[0].OutputPath)
	default:
		okColor.Printf("All %d transcripts saved\n", succeeded)
	}

	if failed > 0 || queued > len(results) {
		return &exitError{code: 1}
	}
	return nil
}

// summaryTable renders the per-file batch summary.
func summaryTable(results []pipeline.Result) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Status", "Duration", "Output"})

	for _, r := range results {
		status := okColor.Sprint("ok")
		output := r.OutputPath
		switch {
		case r.Cancelled():
			status = warnColor.Sprint("cancelled")
			output = ""
		case r.Failed():
			status = errColor.Sprint("failed")
			output = r.Err.Error()
		}
		tw.AppendRow(table.Row{
			r.Job.InputPath,
			status,
			r.Elapsed.Round(100 * time.Millisecond).String(),
			output,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, WidthMax: 60},
	})
	return tw.Render()
}
