package cache

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidTTL is returned for lifetimes that cannot be normalized to a
// non-negative number of seconds no greater than MaxTTL.
var ErrInvalidTTL = errors.New("cache: invalid ttl")

// MaxTTL is the longest accepted lifetime, one hundred 365-day years.
// Every store can add it to the current time without overflowing.
const MaxTTL Seconds = 100 * 365 * 24 * 60 * 60

// TTL is an entry lifetime. A nil TTL never expires.
// Implementations are Seconds, Duration and Interval.
type TTL interface {
	seconds() (int64, error)
}

// Seconds is a lifetime in whole seconds; 0 never expires.
type Seconds int64

func (s Seconds) seconds() (int64, error) {
	if s < 0 {
		return 0, fmt.Errorf("%w: %d seconds", ErrInvalidTTL, int64(s))
	}
	return int64(s), nil
}

// Duration converts d to a lifetime truncated toward zero to whole seconds.
func Duration(d time.Duration) TTL {
	return Seconds(d / time.Second)
}

// Interval is a calendar interval. It is normalized by adding it to the
// Unix epoch in UTC and reading back the timestamp, so a month is the
// length of January 1970.
type Interval struct {
	Years   int
	Months  int
	Weeks   int
	Days    int
	Hours   int
	Minutes int
	Seconds int
	// Invert subtracts the interval instead of adding it.
	Invert bool
}

// intervalUnits holds the shortest length in seconds of each Interval
// field, in declaration order.
var intervalUnits = [7]int64{365 * 86400, 28 * 86400, 7 * 86400, 86400, 3600, 60, 1}

func (iv Interval) seconds() (int64, error) {
	fields := [7]int{iv.Years, iv.Months, iv.Weeks, iv.Days, iv.Hours, iv.Minutes, iv.Seconds}
	for i, n := range fields {
		if limit := int64(MaxTTL) / intervalUnits[i]; int64(n) > limit || int64(n) < -limit {
			return 0, fmt.Errorf("%w: interval %+v exceeds %d seconds", ErrInvalidTTL, iv, int64(MaxTTL))
		}
	}

	sign := 1
	if iv.Invert {
		sign = -1
	}
	epoch := time.Unix(0, 0).UTC()
	t := epoch.AddDate(sign*iv.Years, sign*iv.Months, sign*(iv.Weeks*7+iv.Days))
	clock := int64(iv.Hours)*3600 + int64(iv.Minutes)*60 + int64(iv.Seconds)

	total := t.Unix() + int64(sign)*clock
	if total < 0 {
		return 0, fmt.Errorf("%w: interval %+v is negative", ErrInvalidTTL, iv)
	}
	return total, nil
}

var intervalPattern = regexp.MustCompile(
	`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseInterval parses an ISO 8601 duration such as "P1DT12H" or "PT30M".
func ParseInterval(s string) (Interval, error) {
	m := intervalPattern.FindStringSubmatch(s)
	if m == nil || s == "P" || s[len(s)-1] == 'T' {
		return Interval{}, fmt.Errorf("%w: malformed interval %q", ErrInvalidTTL, s)
	}

	parts := make([]int, 7)
	for i, raw := range m[1:] {
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Interval{}, fmt.Errorf("%w: interval %q: %v", ErrInvalidTTL, s, err)
		}
		parts[i] = n
	}
	return Interval{
		Years:   parts[0],
		Months:  parts[1],
		Weeks:   parts[2],
		Days:    parts[3],
		Hours:   parts[4],
		Minutes: parts[5],
		Seconds: parts[6],
	}, nil
}

// normalizeTTL reduces ttl to the integer seconds handed to the store.
func normalizeTTL(ttl TTL) (int64, error) {
	if ttl == nil {
		return 0, nil
	}
	secs, err := ttl.seconds()
	if err != nil {
		return 0, err
	}
	if secs > int64(MaxTTL) {
		return 0, fmt.Errorf("%w: %d seconds exceeds %d", ErrInvalidTTL, secs, int64(MaxTTL))
	}
	return secs, nil
}
