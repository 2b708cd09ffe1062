package listing

import (
	"context"
	"log/slog"
	"strings"

	"github.com/recordroom/vinyl-lister/internal/models"
	"github.com/recordroom/vinyl-lister/internal/storage"
)

// FolderRenamer marks a folder as handled in the file store.
type FolderRenamer interface {
	RenameFolder(ctx context.Context, folderID, newName string) error
}

// Gateway applies operator edits to records.
type Gateway struct {
	store   *storage.SessionStore
	renamer FolderRenamer
	marker  string
}

func NewGateway(store *storage.SessionStore, renamer FolderRenamer, marker string) *Gateway {
	return &Gateway{store: store, renamer: renamer, marker: marker}
}

// Save merges patch into the record's user input and marks it saved. Only
// success and error records can be saved; pending and researching records
// return models.ErrConflict. The folder rename that follows is best effort.
//
// Two saves of the same record are applied in arrival order and the later
// one wins on overlapping fields.
func (g *Gateway) Save(ctx context.Context, sessionID, recordID string, patch models.UserInputPatch) error {
	var folderID, folderName string
	err := g.store.UpdateRecord(sessionID, recordID, func(r *models.Record) error {
		if err := r.Transition(models.RecordSaved); err != nil {
			return err
		}
		if r.UserInput == nil {
			r.UserInput = &models.UserInput{}
		}
		r.UserInput.Merge(patch)
		folderID, folderName = r.FolderID, r.FolderName
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Record saved", "session_id", sessionID, "record_id", recordID)

	if g.renamer == nil || folderID == "" {
		return nil
	}
	newName := ProcessedName(g.marker, folderName)
	if newName == folderName {
		return nil
	}
	if err := g.renamer.RenameFolder(context.WithoutCancel(ctx), folderID, newName); err != nil {
		slog.Warn("Failed to mark folder as processed", "folder_id", folderID, "name", newName, "error", err)
	}
	return nil
}

// ProcessedName prefixes name with marker unless it already carries it.
func ProcessedName(marker, name string) string {
	if marker == "" || strings.Contains(name, marker) {
		return name
	}
	return marker + " " + name
}
