package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/introscan/introscan/internal/edl"
	"github.com/introscan/introscan/internal/episode"
	"github.com/introscan/introscan/internal/intro"
	"github.com/introscan/introscan/internal/season"
)

// EventNotifier broadcasts progress events, satisfied by notifyws.Hub.
type EventNotifier interface {
	Broadcast(event string, data interface{})
}

// SeasonPayload carries everything AnalyzeSeasonHandler needs to run one
// season: the episode list is handed in directly rather than looked up,
// since episode discovery is the queue collaborator's job (spec §6), out of
// scope for this task. ProcessTask still drops episodes whose file is
// missing on disk before analysis.
type SeasonPayload struct {
	Series   string            `json:"series"`
	Number   int               `json:"number"`
	Episodes []episode.Episode `json:"episodes"`
}

// AnalyzeSeasonHandler runs season.Analyzer.AnalyzeSeason as an asynq task,
// grounded on CineVault's PhashLibraryHandler (ctx-cancellation checkpoints,
// throttled task:update broadcasts) and ScanHandler (task:update lifecycle).
type AnalyzeSeasonHandler struct {
	Analyzer *season.Analyzer
	EDL      *edl.Manager
	Notifier EventNotifier
}

func NewAnalyzeSeasonHandler(analyzer *season.Analyzer, edlMgr *edl.Manager, notifier EventNotifier) *AnalyzeSeasonHandler {
	return &AnalyzeSeasonHandler{Analyzer: analyzer, EDL: edlMgr, Notifier: notifier}
}

func (h *AnalyzeSeasonHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p SeasonPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	taskID := fmt.Sprintf("season:%s:%d", p.Series, p.Number)
	taskDesc := fmt.Sprintf("Analyzing %s season %d", p.Series, p.Number)

	verified := episode.VerifyAll(p.Episodes)
	if len(verified) < len(p.Episodes) {
		log.Printf("Job: %s season %d: %d/%d episodes missing on disk, skipped",
			p.Series, p.Number, len(p.Episodes)-len(verified), len(p.Episodes))
	}

	if h.Notifier != nil {
		h.Notifier.Broadcast("task:update", map[string]interface{}{
			"task_id": taskID, "task_type": TaskAnalyzeSeason,
			"status": "running", "progress": 0, "description": taskDesc,
		})
	}

	start := time.Now()
	processed, err := h.Analyzer.AnalyzeSeason(ctx, p.Series, p.Number, verified)
	if err != nil {
		if h.Notifier != nil {
			h.Notifier.Broadcast("task:update", map[string]interface{}{
				"task_id": taskID, "task_type": TaskAnalyzeSeason,
				"status": "failed", "progress": 0, "description": taskDesc,
			})
		}
		return fmt.Errorf("analyze season: %w", err)
	}

	log.Printf("Job: %s season %d analyzed, %d episode(s) processed in %s",
		p.Series, p.Number, processed, time.Since(start).Round(time.Millisecond))

	if h.EDL != nil {
		intros := make(map[string]intro.Intro, len(verified))
		for _, in := range h.Analyzer.Store.Snapshot() {
			intros[in.EpisodeID.String()] = in
		}
		if err := h.EDL.UpdateEDLFiles(verified, intros); err != nil {
			log.Printf("Job: %s season %d: edl emission failed: %v", p.Series, p.Number, err)
		}
	}

	if h.Notifier != nil {
		h.Notifier.Broadcast("season:complete", map[string]interface{}{
			"series": p.Series, "number": p.Number, "processed": processed,
		})
		h.Notifier.Broadcast("task:update", map[string]interface{}{
			"task_id": taskID, "task_type": TaskAnalyzeSeason,
			"status": "complete", "progress": 100, "description": taskDesc,
		})
	}

	return nil
}
