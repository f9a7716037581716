package journal

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	windowSegment = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)

	day  = 24 * time.Hour
	week = 7 * day

	windowUnits = map[string]time.Duration{
		"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
		"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
		"d": day, "day": day, "days": day,
		"w": week, "wk": week, "wks": week, "week": week, "weeks": week,
	}
)

// ParseWindow reads a look-back window such as "3d", "2 weeks" or "1w2d6h".
// An empty window is zero, meaning no limit.
func ParseWindow(s string) (time.Duration, error) {
	rest := strings.ToLower(strings.TrimSpace(s))
	var total time.Duration
	for rest != "" {
		m := windowSegment.FindStringSubmatch(rest)
		if m == nil {
			return 0, fmt.Errorf("journal: bad window segment %q", strings.TrimSpace(rest))
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("journal: bad window value %q: %w", m[1], err)
		}
		unit, ok := windowUnits[m[2]]
		if !ok {
			return 0, fmt.Errorf("journal: unknown window unit %q", m[2])
		}
		if n > int64(math.MaxInt64-total)/int64(unit) {
			return 0, fmt.Errorf("journal: window %q is too long", strings.TrimSpace(s))
		}
		total += time.Duration(n) * unit
		rest = strings.TrimSpace(rest[len(m[0]):])
	}
	return total, nil
}

// FormatWindow renders d with the largest units first, e.g. "1w2d6h".
func FormatWindow(d time.Duration) string {
	if d < time.Minute {
		return "0m"
	}
	var b strings.Builder
	for _, u := range []struct {
		label string
		size  time.Duration
	}{{"w", week}, {"d", day}, {"h", time.Hour}, {"m", time.Minute}} {
		if n := d / u.size; n > 0 {
			fmt.Fprintf(&b, "%d%s", n, u.label)
			d -= n * u.size
		}
	}
	return b.String()
}

// Since returns a copy of j holding only the entries created at or after
// cutoff. Order is preserved.
func (j *Journal) Since(cutoff time.Time) *Journal {
	out := *j
	out.Entries = []Entry{}
	ms := cutoff.UnixMilli()
	for _, e := range j.Entries {
		if e.CreatedAtMs >= ms {
			out.Entries = append(out.Entries, e)
		}
	}
	return &out
}
