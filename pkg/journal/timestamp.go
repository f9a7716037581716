package journal

import "time"

const timestampLayout = "Jan 2, 2006 3:04:05 PM"

// FormatTimestamp renders a millisecond epoch value in loc. A nil loc means
// the viewer's local zone.
func FormatTimestamp(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(timestampLayout)
}
