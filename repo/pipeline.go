package repo

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"crm-api/domain"
	"crm-api/storage"
)

// PipelineRepo is the pipeline-item repository, the authoritative record of
// each contact's funnel stage.
type PipelineRepo struct {
	*Collection[domain.PipelineItem]
}

// Pipeline builds the pipeline repository.
func Pipeline(store storage.CollectionStore, logger *log.Logger) *PipelineRepo {
	return &PipelineRepo{Collection: newCollection(store, storage.CollectionPipeline, logger, hooks[domain.PipelineItem]{
		getID: func(p domain.PipelineItem) string { return p.ID },
		setID: func(p *domain.PipelineItem, id string) { p.ID = id },
		onCreate: func(p *domain.PipelineItem, now time.Time) {
			p.CreatedAt = now
			p.LastActivity = now
			if p.Stage == "" {
				p.Stage = domain.StageNew
			}
		},
		onUpdate: func(p *domain.PipelineItem, now time.Time) {
			p.LastActivity = now
		},
	})}
}

// MoveStage assigns the item to a stage and refreshes its last activity.
// Any origin/destination pair is accepted; the funnel imposes no transition
// table.
func (r *PipelineRepo) MoveStage(ctx context.Context, userID, id string, stage domain.Stage) (domain.PipelineItem, error) {
	var moved domain.PipelineItem
	err := r.mutate(ctx, userID, func(items []domain.PipelineItem) ([]domain.PipelineItem, error) {
		for i := range items {
			if items[i].ID == id {
				items[i].Stage = stage
				items[i].LastActivity = r.now()
				moved = items[i]
				return items, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return domain.PipelineItem{}, err
	}
	return moved, nil
}
