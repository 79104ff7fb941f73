package sqlite

import (
	"time"

	"github.com/Masterminds/squirrel"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// timestamp is the layout updated_at is stored in.
const timestamp = "2006-01-02 15:04:05.000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestamp)
}
