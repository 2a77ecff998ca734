// Package audiotool provides the AudioTool collaborator (spec §6): fingerprint
// extraction and silence detection from a media file. The core
// (pairmatch/season/silence) depends only on the AudioTool interface; this
// package supplies the concrete ffmpeg-backed adapter, grounded on
// CineVault's internal/fingerprint and internal/detection shell-out style.
package audiotool

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/introscan/introscan/internal/pairmatch"
	"github.com/introscan/introscan/internal/timerange"
)

// AudioTool is the external collaborator contract the core analysis depends
// on. Implementations may shell out to ffmpeg, chromaprint, or anything
// else; the core never cares.
type AudioTool interface {
	// Fingerprint returns the fingerprint stream for filePath. An empty
	// stream (with no error, or with a FingerprintError) means
	// "unfingerprintable" (spec §3).
	Fingerprint(ctx context.Context, filePath string) ([]uint32, error)

	// DetectSilence returns silent regions within [0, durationSeconds], in
	// ascending start order.
	DetectSilence(ctx context.Context, filePath string, durationSeconds float64) ([]timerange.TimeRange, error)
}

// FingerprintError wraps a per-episode fingerprinting failure. The season
// analyzer catches this specifically and substitutes an empty stream
// (spec §7).
type FingerprintError struct {
	FilePath string
	Err      error
}

func (e *FingerprintError) Error() string {
	return fmt.Sprintf("fingerprint %s: %v", e.FilePath, e.Err)
}

func (e *FingerprintError) Unwrap() error {
	return e.Err
}

// windowSeconds matches spec §3's fixed fingerprint rate.
const windowSeconds = pairmatch.SamplesToSeconds

// FFmpegTool implements AudioTool by shelling out to ffmpeg, following the
// astats/silencedetect filter approach used throughout CineVault's
// detection and fingerprint packages.
type FFmpegTool struct {
	FFmpegPath string
}

// NewFFmpegTool constructs an adapter using the given ffmpeg binary path.
func NewFFmpegTool(ffmpegPath string) *FFmpegTool {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegTool{FFmpegPath: ffmpegPath}
}

// Fingerprint hashes successive windowSeconds-wide audio-stats windows with
// xxhash into one uint32 fingerprint point per window, matching spec §3's
// "0.128s per element" fixed rate.
func (f *FFmpegTool) Fingerprint(ctx context.Context, filePath string) ([]uint32, error) {
	cmd := exec.CommandContext(ctx, f.FFmpegPath,
		"-i", filePath,
		"-af", fmt.Sprintf("asetnsamples=n=%d,astats=metadata=1:reset=1", windowSamples()),
		"-vn", "-f", "null", "-",
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &FingerprintError{FilePath: filePath, Err: err}
	}

	return fingerprintFromAstats(output), nil
}

// windowSamples is a placeholder sample count for asetnsamples; the exact
// value is immaterial to the core algorithm, which only cares that each
// stream element represents windowSeconds of audio.
func windowSamples() int {
	const sampleRate = 44100
	return int(float64(sampleRate) * windowSeconds)
}

var astatsBlockRe = regexp.MustCompile(`\[Parsed_astats_\d+.*?\]`)

// fingerprintFromAstats splits the astats metadata dump into per-window
// blocks and hashes each block into a single uint32 fingerprint point.
func fingerprintFromAstats(output []byte) []uint32 {
	blocks := splitAstatsBlocks(output)
	stream := make([]uint32, 0, len(blocks))
	for _, block := range blocks {
		sum := xxhash.Sum64(block)
		stream = append(stream, uint32(sum))
	}
	return stream
}

// splitAstatsBlocks groups astats log lines by the "Parsed_astats" marker
// that precedes each window's stats dump.
func splitAstatsBlocks(output []byte) [][]byte {
	var blocks [][]byte
	var current []byte
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		line := scanner.Text()
		if astatsBlockRe.MatchString(line) {
			if len(current) > 0 {
				blocks = append(blocks, current)
			}
			current = nil
		}
		current = append(current, []byte(line+"\n")...)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?\d+\.?\d*)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?\d+\.?\d*)`)
)

// DetectSilence runs ffmpeg's silencedetect filter over [0, durationSeconds]
// and parses the start/end pairs in ascending start order, matching
// CineVault's detection.parseSilenceDetect.
func (f *FFmpegTool) DetectSilence(ctx context.Context, filePath string, durationSeconds float64) ([]timerange.TimeRange, error) {
	cmd := exec.CommandContext(ctx, f.FFmpegPath,
		"-t", fmt.Sprintf("%.3f", durationSeconds),
		"-i", filePath,
		"-af", "silencedetect=n=-50dB:d=0.1",
		"-vn", "-f", "null", "-",
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("detect silence: %w", err)
	}

	return parseSilenceDetect(string(output)), nil
}

func parseSilenceDetect(output string) []timerange.TimeRange {
	var ranges []timerange.TimeRange
	var start float64
	haveStart := false

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if m := silenceStartRe.FindStringSubmatch(line); len(m) == 2 {
			start, _ = strconv.ParseFloat(m[1], 64)
			haveStart = true
			continue
		}
		if m := silenceEndRe.FindStringSubmatch(line); len(m) == 2 && haveStart {
			end, _ := strconv.ParseFloat(m[1], 64)
			ranges = append(ranges, timerange.TimeRange{Start: start, End: end})
			haveStart = false
		}
	}
	return ranges
}
