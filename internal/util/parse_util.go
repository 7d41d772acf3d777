package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseInterval converts configuration interval strings into time.Duration.
// It accepts Go duration syntax ("10s", "1m30s") as well as bare integers,
// which are read as seconds ("30" => 30s) for compatibility with configs
// that specify intervals as plain second counts.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty interval string")
	}

	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative interval: %s", s)
		}
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: use '10s', '5m' or a bare second count", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative interval: %s", s)
	}
	return d, nil
}
