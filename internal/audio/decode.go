package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
)

// convertFallback produces the target WAV without ffmpeg: pure-Go decoders
// for the formats we have libraries for, the embedded WebAssembly ffmpeg for
// everything else.
func (e *Extractor) convertFallback(ctx context.Context, inputPath, outputPath string) error {
	var (
		samples []float32
		rate    int
		err     error
	)

	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".wav":
		samples, rate, err = ReadWAV(inputPath)
	case ".mp3":
		samples, rate, err = readMP3Samples(inputPath)
	case ".flac":
		samples, rate, err = readFLACSamples(inputPath)
	default:
		return e.convertWASM(ctx, inputPath, outputPath)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(inputPath), err)
	}

	if rate != SampleRate {
		samples = Resample(samples, rate, SampleRate)
	}
	return WriteWAV(outputPath, samples, SampleRate)
}

// ReadWAV decodes a WAV file into normalized mono float32 samples and the
// source sample rate. Multi-channel input is averaged down to mono.
func ReadWAV(path string) ([]float32, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode WAV: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	maxVal := float32(int64(1) << (bitDepth - 1))

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	samples := make([]float32, len(buf.Data)/channels)
	for i := range samples {
		var mono int64
		for ch := 0; ch < channels; ch++ {
			mono += int64(buf.Data[i*channels+ch])
		}
		mono /= int64(channels)
		samples[i] = float32(mono) / maxVal
	}

	return samples, buf.Format.SampleRate, nil
}

// readMP3Samples decodes an MP3 into mono float32 samples. go-mp3 always
// emits 16-bit stereo PCM.
func readMP3Samples(path string) ([]float32, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return nil, 0, err
	}

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, err
	}

	const maxInt16 = 32768.0
	numSamples := len(data) / 4
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		left := int16(data[i*4]) | int16(data[i*4+1])<<8
		right := int16(data[i*4+2]) | int16(data[i*4+3])<<8
		mono := (int32(left) + int32(right)) / 2
		samples[i] = float32(mono) / maxInt16
	}

	return samples, decoder.SampleRate(), nil
}

// readFLACSamples decodes a FLAC stream into mono float32 samples.
func readFLACSamples(path string) ([]float32, int, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer stream.Close()

	rate := int(stream.Info.SampleRate)
	channels := int(stream.Info.NChannels)
	maxVal := float32(int64(1) << (stream.Info.BitsPerSample - 1))

	var samples []float32
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			var mono int64
			for ch := 0; ch < channels; ch++ {
				mono += int64(frame.Subframes[ch].Samples[i])
			}
			mono /= int64(channels)
			samples = append(samples, float32(mono)/maxVal)
		}
	}

	return samples, rate, nil
}

// Resample converts samples from srcRate to dstRate by linear interpolation.
func Resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	newLen := int(float64(len(samples)) / ratio)
	resampled := make([]float32, newLen)

	for i := 0; i < newLen; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := float32(srcPos - float64(srcIdx))

		if srcIdx+1 < len(samples) {
			resampled[i] = samples[srcIdx]*(1-frac) + samples[srcIdx+1]*frac
		} else if srcIdx < len(samples) {
			resampled[i] = samples[srcIdx]
		}
	}

	return resampled
}

// WriteWAV encodes mono float32 samples as a 16-bit PCM WAV file.
func WriteWAV(path string, samples []float32, sampleRate int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, sampleRate, 16, Channels, 1)
	defer encoder.Close()

	buf := &gaudio.IntBuffer{
		Data:           make([]int, len(samples)),
		Format:         &gaudio.Format{SampleRate: sampleRate, NumChannels: Channels},
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		buf.Data[i] = int(s * 32767)
	}

	return encoder.Write(buf)
}
