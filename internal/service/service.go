// Package service implements the application's business rules on top of the
// repositories.
package service

import (
	"context"
	"mime/multipart"

	"pulse/internal/models"
	"pulse/internal/observability"
)

// Uploader stores and discards user uploads.
type Uploader interface {
	Store(ctx context.Context, kind UploadKind, ownerID uint, file *multipart.FileHeader) (string, error)
	Discard(ctx context.Context, publicPath string)
}

// recordOutcome counts a social mutation by the error it produced.
func recordOutcome(action, success string, err error) {
	outcome := success
	switch {
	case err == nil:
	case models.IsCode(err, models.CodeConflict):
		outcome = observability.OutcomeConflict
	case models.IsCode(err, models.CodeNotFound):
		outcome = observability.OutcomeNotFound
	case models.IsCode(err, models.CodeValidation):
		outcome = observability.OutcomeRejected
	default:
		outcome = observability.OutcomeError
	}
	observability.RecordSocialAction(action, outcome)
}
