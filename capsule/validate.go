package capsule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gagliardetto/solana-go"

	"github.com/inspikalu/sol-capsule/models"
)

const (
	MaxFileSize = 10 << 20

	MinReleaseDays = 365
	MaxReleaseDays = 3650
)

var AllowedContentTypes = []string{"image/jpeg", "image/png", "image/gif"}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ReleaseWindow returns the first and last allowed release days.
func ReleaseWindow(now time.Time) (time.Time, time.Time) {
	today := startOfDay(now)
	return today.AddDate(0, 0, MinReleaseDays), today.AddDate(0, 0, MaxReleaseDays)
}

func ValidateSession(session Session) error {
	if strings.TrimSpace(session.RPCEndpoint) == "" {
		return newPreconditionError("rpc endpoint is required")
	}
	if session.Wallet == nil {
		return newPreconditionError("wallet provider is required")
	}
	if session.Owner != "" {
		if _, err := solana.PublicKeyFromBase58(session.Owner); err != nil {
			return newPreconditionError("owner address is invalid")
		}
	}
	return nil
}

// ValidateRequest checks everything that can be checked without a network
// call. The release date is compared by calendar day in UTC.
func ValidateRequest(session Session, request models.CapsuleRequest, now time.Time) error {
	if err := ValidateSession(session); err != nil {
		return err
	}
	if request.File == nil {
		return newPreconditionError("file is required")
	}
	if strings.TrimSpace(request.Description) == "" {
		return newPreconditionError("description is required")
	}
	if request.ReleaseDate.IsZero() {
		return newPreconditionError("release date is required")
	}

	minDate, maxDate := ReleaseWindow(now)
	release := startOfDay(request.ReleaseDate)
	if release.Before(minDate) || release.After(maxDate) {
		return newPreconditionError(fmt.Sprintf("release date must be between %s and %s",
			minDate.Format(models.ReleaseDateLayout), maxDate.Format(models.ReleaseDateLayout)))
	}
	return nil
}

// ValidateFile sniffs the content type and enforces the selection policy.
// It returns the detected content type.
func ValidateFile(file *models.CapsuleFile) (string, error) {
	if file == nil || len(file.Data) == 0 {
		return "", newPreconditionError("file is required")
	}
	if file.Size() > MaxFileSize {
		return "", newPreconditionError(fmt.Sprintf("file size must be at most %d MB", MaxFileSize>>20))
	}

	detected := mimetype.Detect(file.Data)
	contentType := detected.String()
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if !slices.Contains(AllowedContentTypes, contentType) {
		return "", newPreconditionError(fmt.Sprintf("file type %s is not allowed", contentType))
	}
	return contentType, nil
}
