package organizer

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/anivault/anivault/internal/apperr"
	"github.com/anivault/anivault/internal/fsutil"
	"github.com/anivault/anivault/internal/journal"
	"github.com/anivault/anivault/internal/log"
	"github.com/anivault/anivault/internal/model"
)

// Execute applies a plan's items against the filesystem, writing an intent
// record before and an outcome record after each item. A dry-run plan is
// never executed: Execute returns nil without touching the filesystem or
// the journal.
func Execute(ctx context.Context, jr *journal.Journal, targetRoot string, plan model.Plan) error {
	if plan.DryRun {
		return nil
	}
	logger := log.WithComponent("organizer")

	for _, item := range plan.Items {
		if err := ctx.Err(); err != nil {
			return apperr.Wrap(apperr.KindCancellation, err, "organizer execution cancelled")
		}

		if _, err := jr.RecordIntent(plan.RunID, plan.ID, item); err != nil {
			return err
		}

		opErr := applyItem(targetRoot, item)

		if _, jerr := jr.RecordOutcome(plan.RunID, plan.ID, item, opErr); jerr != nil {
			return jerr
		}

		if opErr != nil {
			logger.Error().Err(opErr).Str("source", item.SourcePath).Str("dest", item.DestPath).
				Msg("organizer item failed")
			continue
		}
		logger.Info().Str("source", item.SourcePath).Str("dest", item.DestPath).
			Str("action", string(item.Action)).Msg("organizer item applied")
	}

	return nil
}

func applyItem(targetRoot string, item model.PlanItem) error {
	if item.Action == model.ActionSkip {
		return nil
	}

	confined, err := fsutil.ConfineAbsPath(targetRoot, item.DestPath)
	if err != nil {
		return apperr.Wrap(apperr.KindPolicyViolation, err, "destination escapes target root")
	}

	if err := os.MkdirAll(filepath.Dir(confined), 0o750); err != nil {
		return apperr.Wrap(apperr.KindStorageFailure, err, "create destination directory")
	}

	switch item.Action {
	case model.ActionMove:
		if err := os.Rename(item.SourcePath, confined); err != nil {
			return apperr.Wrap(apperr.KindStorageFailure, err, "move file")
		}
	case model.ActionCopy:
		if err := copyFile(item.SourcePath, confined); err != nil {
			return apperr.Wrap(apperr.KindStorageFailure, err, "copy file")
		}
	case model.ActionLink:
		if err := os.Link(item.SourcePath, confined); err != nil {
			return apperr.Wrap(apperr.KindStorageFailure, err, "link file")
		}
	default:
		return apperr.New(apperr.KindPolicyViolation, "unknown plan item action").WithField("action", string(item.Action))
	}
	return nil
}

// copyFile duplicates src to dst, leaving src in place. Used for the "copy"
// operation, where unlike "move" the original file must survive.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
