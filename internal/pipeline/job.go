package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Stage is one step of the per-job state machine.
type Stage string

const (
	StageQueued       Stage = "queued"
	StageExtracting   Stage = "extracting"
	StageTranscribing Stage = "transcribing"
	StageCleaning     Stage = "cleaning"
	StageWriting      Stage = "writing"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
	StageCancelled    Stage = "cancelled"
)

// Job is one unit of work. Immutable once processing starts.
type Job struct {
	ID         string
	InputPath  string
	OutputPath string
	Model      string
	Language   string
	Timestamps bool
	KeepAudio  bool
	Verbose    bool
}

// Options are the per-run settings shared by every job in a batch.
type Options struct {
	Model      string
	Language   string
	Timestamps bool
	KeepAudio  bool
	Verbose    bool
}

// NewJob builds a Job for inputPath. outputPath may name a file, a
// directory (the transcript name is derived inside it), or be empty (the
// transcript lands next to the input).
func NewJob(inputPath, outputPath string, opts Options) Job {
	return Job{
		ID:         uuid.NewString(),
		InputPath:  inputPath,
		OutputPath: resolveOutputPath(inputPath, outputPath),
		Model:      opts.Model,
		Language:   opts.Language,
		Timestamps: opts.Timestamps,
		KeepAudio:  opts.KeepAudio,
		Verbose:    opts.Verbose,
	}
}

// TranscriptName derives the output file name from the input stem.
func TranscriptName(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		stem = "transcript"
	}
	return stem + "_transcript.txt"
}

func resolveOutputPath(inputPath, outputPath string) string {
	switch {
	case outputPath == "":
		return filepath.Join(filepath.Dir(inputPath), TranscriptName(inputPath))
	case isDir(outputPath):
		return filepath.Join(outputPath, TranscriptName(inputPath))
	default:
		return outputPath
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// mediaExtensions are the container/audio formats batch scanning accepts.
var mediaExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".avi":  true,
	".webm": true,
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".aac":  true,
	".ogg":  true,
}

// ScanDirectory lists the media files directly inside dir, sorted by name.
func ScanDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if mediaExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
