package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Crawler timestamps arrive as epoch seconds or milliseconds in the same
// field; anything above this magnitude is treated as milliseconds.
const millisThreshold = 1e10

const myriad = 10000

// ParseTimestamp converts a crawler timestamp string to a time. Numeric
// values are epoch seconds or milliseconds; other formats go through lenient
// date parsing. Unparseable input falls back to now so a bad timestamp never
// drops a record.
func ParseTimestamp(raw string, now func() time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now()
	}

	if epoch, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if epoch > millisThreshold {
			return time.UnixMilli(epoch)
		}

		return time.Unix(epoch, 0)
	}

	if t, err := dateparse.ParseAny(raw); err == nil {
		return t
	}

	return now()
}

// ParseCount converts a crawler engagement count to an int. Weibo renders
// large counts with a 万 (ten thousand) suffix, e.g. "1.5万" for 15000.
// Unparseable input yields 0.
func ParseCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if suffix, ok := strings.CutSuffix(raw, "万"); ok {
		value, err := strconv.ParseFloat(strings.TrimSpace(suffix), 64)
		if err != nil {
			return 0
		}

		return int(math.Round(value * myriad))
	}

	if value, err := strconv.Atoi(raw); err == nil {
		return value
	}

	if value, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(value)
	}

	return 0
}
