package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/recordroom/vinyl-lister/internal/imagehost"
	"github.com/recordroom/vinyl-lister/internal/models"
)

// Reanalyze runs the analyzer again for one record, telling it to avoid the
// previous identification. The record is researching for the duration and
// ends in success or error. Only success and error records can be
// re-analyzed; anything else is models.ErrConflict.
func (p *Processor) Reanalyze(ctx context.Context, sessionID, recordID string) (*models.AnalysisResult, error) {
	var folderID, hint, label string
	var hasImages bool
	err := p.store.UpdateRecord(sessionID, recordID, func(r *models.Record) error {
		if err := r.Transition(models.RecordResearching); err != nil {
			return err
		}
		folderID, label = r.FolderID, r.CustomLabel
		if r.AIData != nil {
			hint = r.AIData.DiscogsURL
		}
		hasImages = len(r.Images) > 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.wg.Add(1)
	defer p.wg.Done()

	// The analysis must finish even if the caller goes away, or the record
	// would stay researching.
	ctx = context.WithoutCancel(ctx)
	slog.Info("Re-analyzing record", "session_id", sessionID, "record_id", recordID, "exclude", hint)

	ai, entries, err := p.AnalyzeFolder(ctx, folderID, hint)
	var refs []models.ImageRef
	if err == nil && !hasImages {
		refs, err = p.attachImages(ctx, entries, imagehost.PictureName(ai, label))
	}
	if err != nil {
		p.failRecord(sessionID, recordID, err)
		return nil, err
	}

	err = p.store.UpdateRecord(sessionID, recordID, func(r *models.Record) error {
		if err := r.Transition(models.RecordSuccess); err != nil {
			return err
		}
		r.AIData = ai
		r.Error = ""
		if refs != nil {
			r.Images = refs
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store analysis: %w", err)
	}
	copied := *ai
	return &copied, nil
}
