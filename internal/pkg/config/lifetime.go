package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Lifetime is a duration that also accepts a day suffix ("1d", "7d") in
// addition to everything time.ParseDuration understands. A bare integer is
// taken as seconds.
type Lifetime time.Duration

func (l Lifetime) Duration() time.Duration { return time.Duration(l) }

func (l *Lifetime) UnmarshalText(text []byte) error {
	d, err := ParseLifetime(string(text))
	if err != nil {
		return err
	}
	*l = Lifetime(d)
	return nil
}

func ParseLifetime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty lifetime")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid lifetime %q", s)
		}
		return time.Duration(n * float64(24*time.Hour)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid lifetime %q", s)
	}
	return d, nil
}
