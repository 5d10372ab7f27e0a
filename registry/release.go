package registry

import (
	"fmt"
	"time"

	"github.com/inspikalu/sol-capsule/models"
)

// ReleaseTime parses a metadata release date as midnight UTC.
func ReleaseTime(releaseDate string) (time.Time, error) {
	return time.ParseInLocation(models.ReleaseDateLayout, releaseDate, time.UTC)
}

// IsReleased reports whether the release moment is at or before now. An
// unparsable date is never released.
func IsReleased(releaseDate string, now time.Time) bool {
	release, err := ReleaseTime(releaseDate)
	if err != nil {
		return false
	}
	return !release.After(now)
}

// TimeLeft formats the remaining time as "<d>d <h>h left", or "Released".
func TimeLeft(releaseDate string, now time.Time) string {
	release, err := ReleaseTime(releaseDate)
	if err != nil {
		return "unknown"
	}
	diff := release.Sub(now)
	if diff <= 0 {
		return "Released"
	}
	days := int64(diff / (24 * time.Hour))
	hours := int64((diff % (24 * time.Hour)) / time.Hour)
	return fmt.Sprintf("%dd %dh left", days, hours)
}
