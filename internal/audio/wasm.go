package audio

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"codeberg.org/gruf/go-ffmpreg/ffmpreg"
	"codeberg.org/gruf/go-ffmpreg/wasm"
	"github.com/tetratelabs/wazero"

	"mediascribe/internal/logging"
)

// convertWASM runs the embedded WebAssembly ffmpeg build. Slower than the
// native binary but needs nothing installed.
func (e *Extractor) convertWASM(ctx context.Context, inputPath, outputPath string) error {
	e.logger.Info("converting with embedded ffmpeg", logging.String("input", filepath.Base(inputPath)))

	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return err
	}
	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return err
	}
	inputDir := filepath.Dir(absInput)
	outputDir := filepath.Dir(absOutput)

	args := wasm.Args{
		Stdout: io.Discard,
		Stderr: io.Discard,
		Args: []string{
			"-i", absInput,
			"-y",
			"-vn",
			"-ar", fmt.Sprintf("%d", SampleRate),
			"-ac", fmt.Sprintf("%d", Channels),
			"-c:a", "pcm_s16le",
			absOutput,
		},
		Config: func(cfg wazero.ModuleConfig) wazero.ModuleConfig {
			return cfg.WithFSConfig(wazero.NewFSConfig().
				WithDirMount(inputDir, inputDir).
				WithDirMount(outputDir, outputDir))
		},
	}

	rc, err := ffmpreg.Ffmpeg(ctx, args)
	if err != nil {
		return fmt.Errorf("embedded ffmpeg: %w", err)
	}
	if rc != 0 {
		return fmt.Errorf("embedded ffmpeg exited with code %d", rc)
	}
	return nil
}
