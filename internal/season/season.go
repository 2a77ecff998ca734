// Package season orchestrates the per-season pairwise comparison pipeline
// (spec §4.6): it fingerprints every episode, searches for the best shared
// intro between episode pairs, hands the result to the silence adjuster, and
// merges the outcome into the process-wide intro store.
package season

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/introscan/introscan/internal/audiotool"
	"github.com/introscan/introscan/internal/episode"
	"github.com/introscan/introscan/internal/intro"
	"github.com/introscan/introscan/internal/introselect"
	"github.com/introscan/introscan/internal/pairmatch"
	"github.com/introscan/introscan/internal/silence"
)

// ErrCacheMiss is raised when the per-season fingerprint cache lacks a key
// needed during comparison. It is always caught at the season boundary: the
// season is abandoned with a warning, never propagated to the driver
// (spec §7).
var ErrCacheMiss = errors.New("season: fingerprint cache miss")

// silenceLookaheadSeconds widens the silence-detection window past introEnd
// so a qualifying silence just beyond the detected boundary is still seen
// (spec §4.7: "[0, introEnd + 2]").
const silenceLookaheadSeconds = 2

// Config bundles the tunables an Analyzer needs beyond the AudioTool and
// store collaborators.
type Config struct {
	Params                       pairmatch.AnalysisParams
	SilenceDetectionMinDuration  float64
	AnalyzeSeasonZero            bool
}

// Analyzer runs the season-level pipeline against a shared AudioTool and a
// process-wide intro Store.
type Analyzer struct {
	Tool    audiotool.AudioTool
	Store   *intro.Store
	Persist func(map[uuid.UUID]intro.Intro) error
	Config  Config
}

// AnalyzeSeason runs the full pipeline for one season and returns the number
// of episodes processed (spec §4.6's "count of episodes ... as processed").
//
// episodes must already be verified (queue collaborator's job, out of
// scope here); AnalyzeSeason only checks the ≤1-episode and season-zero
// preconditions.
func (a *Analyzer) AnalyzeSeason(ctx context.Context, seriesName string, seasonNumber int, episodes []episode.Episode) (int, error) {
	if seasonNumber == 0 && !a.Config.AnalyzeSeasonZero {
		return 0, nil
	}
	if len(episodes) <= 1 {
		log.Printf("season: %s season %d has %d verified episode(s), no analysis", seriesName, seasonNumber, len(episodes))
		return len(episodes), nil
	}

	fingerprints, cancelled := a.fingerprintAll(ctx, seriesName, seasonNumber, episodes)
	if cancelled {
		return len(episodes), nil
	}

	seasonIntros, err := a.compareAll(episodes, fingerprints)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			log.Printf("season: %s season %d abandoned: %v", seriesName, seasonNumber, err)
			return len(episodes), nil
		}
		return len(episodes), err
	}

	select {
	case <-ctx.Done():
		return len(episodes), nil
	default:
	}

	a.adjustSilence(ctx, seasonIntros, episodes)

	if err := a.Store.Merge(seasonIntros, a.Persist); err != nil {
		return len(episodes), fmt.Errorf("merge season intros: %w", err)
	}

	return len(episodes), nil
}

// fingerprintAll fingerprints every episode, substituting an empty stream on
// a per-episode FingerprintError, and returns true if cancellation was
// observed between episodes.
func (a *Analyzer) fingerprintAll(ctx context.Context, seriesName string, seasonNumber int, episodes []episode.Episode) (map[uuid.UUID][]uint32, bool) {
	fingerprints := make(map[uuid.UUID][]uint32, len(episodes))

	for _, ep := range episodes {
		select {
		case <-ctx.Done():
			return fingerprints, true
		default:
		}

		stream, err := a.Tool.Fingerprint(ctx, ep.FilePath)
		if err != nil {
			log.Printf("season: %s s%02d: fingerprint failed for %q: %v", seriesName, seasonNumber, ep.Name, err)
			stream = nil
		}
		fingerprints[ep.ID] = stream
	}

	return fingerprints, false
}

// compareAll implements the work-list / nested-scan procedure of spec §4.6
// step 2: each episode is compared against the remainder of the list until
// the first valid, within-limit match is found.
func (a *Analyzer) compareAll(episodes []episode.Episode, fingerprints map[uuid.UUID][]uint32) (intro.SeasonIntros, error) {
	seasonIntros := make(intro.SeasonIntros)

	for i := 0; i < len(episodes); i++ {
		current := episodes[i]
		currentFP, ok := fingerprints[current.ID]
		if !ok {
			return nil, fmt.Errorf("%w: episode %s", ErrCacheMiss, current.ID)
		}

		for j := i + 1; j < len(episodes); j++ {
			other := episodes[j]
			otherFP, ok := fingerprints[other.ID]
			if !ok {
				return nil, fmt.Errorf("%w: episode %s", ErrCacheMiss, other.ID)
			}

			if !episode.Comparable(currentFP, otherFP) {
				continue
			}

			lhsRanges, rhsRanges := pairmatch.Compare(currentFP, otherFP, a.Config.Params)
			currentIntro, otherIntro := introselect.Longest(current.ID, lhsRanges, other.ID, rhsRanges)

			if !currentIntro.Valid() || currentIntro.Duration() > a.Config.Params.MaximumIntroDuration {
				continue
			}

			seasonIntros.Update(current.ID, currentIntro)
			seasonIntros.Update(other.ID, otherIntro)
			break
		}
	}

	return seasonIntros, nil
}

// adjustSilence runs the silence-based end adjuster (spec §4.7) over every
// episode that received a seasonIntros entry.
func (a *Analyzer) adjustSilence(ctx context.Context, seasonIntros intro.SeasonIntros, episodes []episode.Episode) {
	byID := make(map[uuid.UUID]episode.Episode, len(episodes))
	for _, ep := range episodes {
		byID[ep.ID] = ep
	}

	for id, in := range seasonIntros {
		ep, ok := byID[id]
		if !ok {
			continue
		}

		silences, err := a.Tool.DetectSilence(ctx, ep.FilePath, in.End+silenceLookaheadSeconds)
		if err != nil {
			log.Printf("season: silence detection failed for %q: %v", ep.Name, err)
			continue
		}

		seasonIntros[id] = silence.Adjust(in, silences, a.Config.SilenceDetectionMinDuration)
	}
}
