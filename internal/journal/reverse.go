package journal

import (
	"os"

	"github.com/anivault/anivault/internal/apperr"
	"github.com/anivault/anivault/internal/model"
)

// Reverse replays a plan's journal in reverse order and undoes every
// successful move/copy/link outcome: a move is moved back from DestPath to
// SourcePath; a copy or link only has its DestPath removed, since the
// original SourcePath was never touched. It returns the count of operations
// reversed.
func Reverse(dir, planID string) (int, error) {
	entries, err := Read(dir, planID)
	if err != nil {
		return 0, err
	}

	reversed := 0
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Kind != model.JournalOutcome || !e.Success {
			continue
		}

		switch e.Item.Action {
		case model.ActionMove:
			if err := os.Rename(e.Item.DestPath, e.Item.SourcePath); err != nil {
				if os.IsNotExist(err) {
					// Already reversed or never landed; treat as a no-op rather
					// than aborting the rest of the rollback.
					continue
				}
				return reversed, apperr.Wrap(apperr.KindStorageFailure, err, "reverse move").
					WithField("dest", e.Item.DestPath)
			}
		case model.ActionCopy, model.ActionLink:
			if err := os.Remove(e.Item.DestPath); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return reversed, apperr.Wrap(apperr.KindStorageFailure, err, "reverse "+string(e.Item.Action)).
					WithField("dest", e.Item.DestPath)
			}
		default:
			continue
		}
		reversed++
	}
	return reversed, nil
}
