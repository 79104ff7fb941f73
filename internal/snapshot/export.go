package snapshot

import "time"

// ExportFileName names an export taken at now, using the UTC calendar date.
func ExportFileName(now time.Time) string {
	return "flashcard-data-" + now.UTC().Format("2006-01-02") + ".json"
}
