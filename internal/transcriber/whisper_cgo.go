//go:build cgo

package transcriber

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"mediascribe/internal/audio"
)

// whisperEngine runs whisper.cpp in-process through the Go bindings. Device
// selection (GPU vs CPU) is decided by the whisper.cpp build, not here.
type whisperEngine struct {
	model     whisper.Model
	modelPath string
}

func newEngine(opts engineOptions) (Engine, error) {
	model, err := whisper.New(opts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model: %w", err)
	}
	return &whisperEngine{model: model, modelPath: opts.ModelPath}, nil
}

func (e *whisperEngine) Name() string { return "whisper.cpp" }

func (e *whisperEngine) Transcribe(ctx context.Context, wavPath, language string) (*Result, error) {
	// Inference is not preemptible; only refuse to start.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	samples, _, err := audio.ReadWAV(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create whisper context: %w", err)
	}
	if language != "" && language != "auto" {
		if err := wctx.SetLanguage(language); err != nil {
			return nil, fmt.Errorf("set language %q: %w", language, err)
		}
	}

	start := time.Now()
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("process audio: %w", err)
	}

	var segments []Segment
	var text strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if err != nil {
			break
		}
		segments = append(segments, Segment{
			Start: segment.Start,
			End:   segment.End,
			Text:  strings.TrimSpace(segment.Text),
		})
		if text.Len() > 0 {
			text.WriteByte(' ')
		}
		text.WriteString(strings.TrimSpace(segment.Text))
	}
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })

	detected := language
	if detected == "" {
		detected = "auto"
	}

	return &Result{
		Text:     text.String(),
		Segments: segments,
		Language: detected,
		Elapsed:  time.Since(start),
	}, nil
}

func (e *whisperEngine) Close() error {
	if e.model == nil {
		return nil
	}
	err := e.model.Close()
	e.model = nil
	return err
}
