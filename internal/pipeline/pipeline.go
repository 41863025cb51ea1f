// Package pipeline sequences audio extraction, transcription, text cleanup
// and write-out for one job at a time, reporting coarse progress along the
// way. Batches run strictly sequentially so at most one model inference is
// ever in flight.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediascribe/internal/audio"
	"mediascribe/internal/logging"
	"mediascribe/internal/textproc"
	"mediascribe/internal/transcriber"
)

// Result is the outcome of one job. Err is nil on success.
type Result struct {
	Job        Job
	Text       string
	Segments   []transcriber.Segment
	Language   string
	OutputPath string
	Elapsed    time.Duration
	Err        error
}

// Failed reports a real failure (cancellation excluded).
func (r Result) Failed() bool { return r.Err != nil && !IsCancelled(r.Err) }

// Cancelled reports a cooperative-stop outcome.
func (r Result) Cancelled() bool { return IsCancelled(r.Err) }

// Callbacks receive progress transitions and printable log lines. Either
// field may be nil. They are invoked on the pipeline's goroutine.
type Callbacks struct {
	OnProgress func(jobID string, stage Stage, percent int, message string)
	OnLog      func(line string)
}

// extractor is the audio front end; *audio.Extractor satisfies it.
type extractor interface {
	Extract(ctx context.Context, inputPath, outputPath string) (string, error)
}

// engineSource hands out loaded transcription engines; *transcriber.Cache
// satisfies it.
type engineSource interface {
	Engine(ctx context.Context, size string) (transcriber.Engine, error)
	Close() error
}

// Pipeline runs jobs. It owns the engine cache for the duration of a batch.
type Pipeline struct {
	extractor extractor
	engines   engineSource
	callbacks Callbacks
	logger    *slog.Logger
}

// New creates a Pipeline on top of the given extractor and engine cache.
func New(ext *audio.Extractor, engines *transcriber.Cache, cb Callbacks, logger *slog.Logger) *Pipeline {
	return newPipeline(ext, engines, cb, logger)
}

func newPipeline(ext extractor, engines engineSource, cb Callbacks, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		extractor: ext,
		engines:   engines,
		callbacks: cb,
		logger:    logging.WithComponent(logger, "pipeline"),
	}
}

// RunBatch processes jobs strictly in order. A per-job failure is recorded
// and the batch continues; a fatal (model-load) failure or a context cancel
// stops before the next job. The engine cache is closed when the batch
// ends.
func (p *Pipeline) RunBatch(ctx context.Context, jobs []Job) []Result {
	defer func() {
		if err := p.engines.Close(); err != nil {
			p.logger.Warn("closing model", logging.Error(err))
		}
	}()

	results := make([]Result, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			break
		}

		result := p.Run(ctx, job)
		results = append(results, result)

		if IsFatal(result.Err) {
			p.log("Model load failed, aborting remaining jobs")
			break
		}
		if result.Cancelled() {
			break
		}
	}
	return results
}

// Run executes the full state machine for one job:
// extracting → transcribing → cleaning → writing → done.
func (p *Pipeline) Run(ctx context.Context, job Job) Result {
	started := time.Now()
	result := Result{Job: job, OutputPath: job.OutputPath}

	finish := func(err error) Result {
		result.Err = err
		result.Elapsed = time.Since(started)
		switch {
		case err == nil:
			p.progress(job, StageDone, 100, "Completed")
		case IsCancelled(err):
			p.progress(job, StageCancelled, 0, "Cancelled")
			p.log(fmt.Sprintf("Cancelled %s", filepath.Base(job.InputPath)))
		default:
			p.progress(job, StageFailed, 0, err.Error())
			p.log(fmt.Sprintf("Error processing %s: %v", filepath.Base(job.InputPath), err))
			p.logger.Error("job failed",
				logging.String("input", job.InputPath),
				logging.Error(err))
		}
		return result
	}

	// Extracting.
	if err := ctx.Err(); err != nil {
		return finish(p.cancelErr(StageQueued, job, err))
	}
	p.log(fmt.Sprintf("Extracting audio from %s", filepath.Base(job.InputPath)))
	p.progress(job, StageExtracting, 5, "Starting audio extraction...")

	wavPath, err := p.extractor.Extract(ctx, job.InputPath, "")
	if err != nil {
		if ctx.Err() != nil {
			return finish(p.cancelErr(StageExtracting, job, ctx.Err()))
		}
		return finish(p.extractionErr(job, err))
	}
	defer func() {
		if job.KeepAudio {
			p.log(fmt.Sprintf("Keeping extracted audio: %s", wavPath))
			return
		}
		if err := os.Remove(wavPath); err == nil {
			p.logger.Debug("removed temp audio", logging.String("path", wavPath))
		}
	}()
	p.progress(job, StageExtracting, 30, "Audio extraction complete")

	// Transcribing.
	if err := ctx.Err(); err != nil {
		return finish(p.cancelErr(StageExtracting, job, err))
	}
	p.log(fmt.Sprintf("Transcribing with %s model...", job.Model))
	p.progress(job, StageTranscribing, 35, fmt.Sprintf("Starting transcription with %s model...", job.Model))

	engine, err := p.engines.Engine(ctx, job.Model)
	if err != nil {
		if ctx.Err() != nil {
			return finish(p.cancelErr(StageTranscribing, job, ctx.Err()))
		}
		return finish(&Error{
			Kind:  KindTranscription,
			Stage: StageTranscribing,
			Path:  job.InputPath,
			Msg:   fmt.Sprintf("load %s model", job.Model),
			Fatal: true,
			Err:   err,
		})
	}

	raw, err := engine.Transcribe(ctx, wavPath, job.Language)
	if err != nil {
		if ctx.Err() != nil {
			return finish(p.cancelErr(StageTranscribing, job, ctx.Err()))
		}
		return finish(&Error{
			Kind:  KindTranscription,
			Stage: StageTranscribing,
			Path:  job.InputPath,
			Msg:   "inference failed",
			Err:   err,
		})
	}
	result.Text = raw.Text
	result.Segments = raw.Segments
	result.Language = raw.Language
	p.progress(job, StageTranscribing, 80, "Transcription complete")

	// Cleaning.
	if err := ctx.Err(); err != nil {
		return finish(p.cancelErr(StageTranscribing, job, err))
	}
	p.log("Processing transcript...")
	p.progress(job, StageCleaning, 85, "Processing transcript...")

	var transcript string
	if job.Timestamps {
		transcript = textproc.CleanSegments(raw.Segments)
	} else {
		transcript = textproc.Clean(raw.Text)
	}

	// Writing.
	if err := ctx.Err(); err != nil {
		return finish(p.cancelErr(StageCleaning, job, err))
	}
	p.progress(job, StageWriting, 90, "Saving transcript...")

	if err := writeTranscript(job.OutputPath, transcript); err != nil {
		return finish(&Error{
			Kind:  KindWrite,
			Stage: StageWriting,
			Path:  job.InputPath,
			Msg:   fmt.Sprintf("write %s", job.OutputPath),
			Err:   err,
		})
	}
	p.log(fmt.Sprintf("Transcript saved to %s", job.OutputPath))

	if job.Verbose {
		if err := p.dumpRaw(job, raw); err != nil {
			p.logger.Warn("raw dump failed", logging.Error(err))
		}
	}

	return finish(nil)
}

func (p *Pipeline) extractionErr(job Job, err error) error {
	pe := &Error{
		Kind:  KindExtraction,
		Stage: StageExtracting,
		Path:  job.InputPath,
		Msg:   "audio extraction failed",
		Err:   err,
	}
	var cmdErr *audio.CommandError
	if errors.As(err, &cmdErr) {
		pe.Stderr = cmdErr.Stderr
	}
	return pe
}

func (p *Pipeline) cancelErr(stage Stage, job Job, cause error) error {
	return &Error{
		Kind:  KindCancelled,
		Stage: stage,
		Path:  job.InputPath,
		Msg:   "stopped",
		Err:   cause,
	}
}

func writeTranscript(path, transcript string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if transcript != "" && !strings.HasSuffix(transcript, "\n") {
		transcript += "\n"
	}
	return os.WriteFile(path, []byte(transcript), 0o644)
}

// rawDump mirrors the underlying model output with second-based timestamps,
// written next to the transcript for debugging.
type rawDump struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []rawDumpSegment `json:"segments"`
}

type rawDumpSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func (p *Pipeline) dumpRaw(job Job, raw *transcriber.Result) error {
	dump := rawDump{Text: raw.Text, Language: raw.Language}
	for _, seg := range raw.Segments {
		dump.Segments = append(dump.Segments, rawDumpSegment{
			Start: seg.Start.Seconds(),
			End:   seg.End.Seconds(),
			Text:  seg.Text,
		})
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}

	path := strings.TrimSuffix(job.OutputPath, filepath.Ext(job.OutputPath)) + "_raw.json"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	p.log(fmt.Sprintf("Raw transcription data saved to %s", path))
	return nil
}

func (p *Pipeline) progress(job Job, stage Stage, percent int, message string) {
	if p.callbacks.OnProgress != nil {
		p.callbacks.OnProgress(job.ID, stage, percent, message)
	}
}

func (p *Pipeline) log(line string) {
	if p.callbacks.OnLog != nil {
		p.callbacks.OnLog(line)
	}
}
