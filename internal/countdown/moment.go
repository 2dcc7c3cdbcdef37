package countdown

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Moment is a remaining duration split into display parts
type Moment struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Parts in display order days, hours, minutes, seconds
func (m Moment) Parts() [4]int {
	return [4]int{m.Days, m.Hours, m.Minutes, m.Seconds}
}

func (m Moment) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", m.Days, m.Hours, m.Minutes, m.Seconds)
}

// Duration of moment
func (m Moment) Duration() time.Duration {
	return time.Duration(m.Days)*24*time.Hour +
		time.Duration(m.Hours)*time.Hour +
		time.Duration(m.Minutes)*time.Minute +
		time.Duration(m.Seconds)*time.Second
}

// IsZero reports if all parts are zero
func (m Moment) IsZero() bool {
	return m == Moment{}
}

// Validate checks parts are not negative and hours, minutes and seconds are in range
func (m Moment) Validate() error {
	switch {
	case m.Days < 0:
		return fmt.Errorf("days %d is negative", m.Days)
	case m.Hours < 0 || m.Hours > 23:
		return fmt.Errorf("hours %d not in 0-23", m.Hours)
	case m.Minutes < 0 || m.Minutes > 59:
		return fmt.Errorf("minutes %d not in 0-59", m.Minutes)
	case m.Seconds < 0 || m.Seconds > 59:
		return fmt.Errorf("seconds %d not in 0-59", m.Seconds)
	}
	return nil
}

// Tick returns moment one second earlier, borrowing from minutes, hours and
// days. Once days would go negative the zero moment is returned.
func (m Moment) Tick() Moment {
	m.Seconds--
	if m.Seconds >= 0 {
		return m
	}
	m.Seconds += 60
	m.Minutes--
	if m.Minutes >= 0 {
		return m
	}
	m.Minutes += 60
	m.Hours--
	if m.Hours >= 0 {
		return m
	}
	m.Hours += 24
	m.Days--
	if m.Days >= 0 {
		return m
	}
	return Moment{}
}

// FromDuration splits d into a moment, negative durations are zero
// Fractions of a second are truncated.
func FromDuration(d time.Duration) Moment {
	if d <= 0 {
		return Moment{}
	}
	n := int64(d / time.Second)
	s := n % 60
	n /= 60
	mi := n % 60
	n /= 60
	h := n % 24
	n /= 24
	return Moment{Days: int(n), Hours: int(h), Minutes: int(mi), Seconds: int(s)}
}

// Until returns moment left from now to deadline
func Until(now, deadline time.Time) Moment {
	return FromDuration(deadline.Sub(now))
}

// maxSeconds is the longest moment that fits a time.Duration
const maxSeconds = int64(math.MaxInt64 / int64(time.Second))

var partSeconds = [4]int64{24 * 60 * 60, 60 * 60, 60, 1}

// ParseMoment parses [[[dd:]hh:]mm:]ss, each part a non negative integer.
// Parts are normalized, "90" is 1 minute 30 seconds.
func ParseMoment(s string) (Moment, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 4 {
		return Moment{}, fmt.Errorf("invalid moment %q", s)
	}
	// right aligned, seconds last
	var secs int64
	for i := range parts {
		p := parts[len(parts)-1-i]
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || v < 0 {
			return Moment{}, fmt.Errorf("invalid moment %q", s)
		}
		unit := partSeconds[3-i]
		if v > (maxSeconds-secs)/unit {
			return Moment{}, fmt.Errorf("moment %q too large", s)
		}
		secs += v * unit
	}
	return FromDuration(time.Duration(secs) * time.Second), nil
}
