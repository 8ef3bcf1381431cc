// Package interval parses the scan agent's "[#d][#h][#m][#s]" duration
// spec, preserving the original parser's asymmetric overflow rule: a unit
// is bounds-checked only against the coarser units that are also present
// in the spec string (hours against days; minutes against days and hours;
// seconds against days, hours and minutes). "90s" is valid on
// its own (90 seconds) but invalid once minutes are also given, because at
// that point 90s should have been written as "1m30s".
package interval

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var pattern = regexp.MustCompile(`^(?:(\d+)d)?(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?$`)

// Parse parses spec into a duration, applying the overflow rule above.
// An empty spec parses to zero. A spec that doesn't match the grammar, or
// that fails a present-coarser-unit overflow check, returns an error.
func Parse(spec string) (time.Duration, error) {
	m := pattern.FindStringSubmatch(spec)
	if m == nil {
		return 0, fmt.Errorf("interval: %q is not of the form [#d][#h][#m][#s]", spec)
	}

	var total time.Duration
	hasDays := m[1] != ""
	hasHours := m[2] != ""
	hasMinutes := m[3] != ""

	if hasDays {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("interval: invalid day count in %q: %w", spec, err)
		}
		total += time.Duration(n) * 24 * time.Hour
	}

	if hasHours {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, fmt.Errorf("interval: invalid hour count in %q: %w", spec, err)
		}
		h := time.Duration(n) * time.Hour
		if hasDays && h >= 24*time.Hour {
			return 0, fmt.Errorf("interval: hours exceeds 23 when days also specified in %q", spec)
		}
		total += h
	}

	if hasMinutes {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return 0, fmt.Errorf("interval: invalid minute count in %q: %w", spec, err)
		}
		mins := time.Duration(n) * time.Minute
		if hasDays && mins >= 24*time.Hour {
			return 0, fmt.Errorf("interval: minutes exceeds 1439 when days also specified in %q", spec)
		}
		if hasHours && mins >= time.Hour {
			return 0, fmt.Errorf("interval: minutes exceeds 59 when hours also specified in %q", spec)
		}
		total += mins
	}

	if m[4] != "" {
		n, err := strconv.Atoi(m[4])
		if err != nil {
			return 0, fmt.Errorf("interval: invalid second count in %q: %w", spec, err)
		}
		secs := time.Duration(n) * time.Second
		if hasDays && secs >= 24*time.Hour {
			return 0, fmt.Errorf("interval: seconds exceeds 86399 when days also specified in %q", spec)
		}
		if hasHours && secs >= time.Hour {
			return 0, fmt.Errorf("interval: seconds exceeds 3599 when hours also specified in %q", spec)
		}
		if hasMinutes && secs >= time.Minute {
			return 0, fmt.Errorf("interval: seconds exceeds 59 when minutes also specified in %q", spec)
		}
		total += secs
	}

	return total, nil
}
