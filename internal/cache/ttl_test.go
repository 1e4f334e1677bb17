package cache

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTTL(t *testing.T) {
	cases := []struct {
		name string
		ttl  TTL
		want int64
	}{
		{"nil never expires", nil, 0},
		{"seconds", Seconds(90), 90},
		{"duration truncates", Duration(2999 * time.Millisecond), 2},
		{"sub-second duration", Duration(400 * time.Millisecond), 0},
		{"interval hours", Interval{Hours: 1, Minutes: 30}, 5400},
		{"interval days and weeks", Interval{Weeks: 1, Days: 1}, 8 * 86400},
		{"interval month is january", Interval{Months: 1}, 31 * 86400},
		{"interval year 1970", Interval{Years: 1}, 365 * 86400},
		{"longest lifetime", MaxTTL, int64(MaxTTL)},
		{"longest clock interval", Interval{Hours: int(MaxTTL / 3600)}, int64(MaxTTL) / 3600 * 3600},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeTTL(tc.ttl)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeTTL_Invalid(t *testing.T) {
	_, err := normalizeTTL(Seconds(-1))
	require.ErrorIs(t, err, ErrInvalidTTL)

	_, err = normalizeTTL(Interval{Days: 1, Invert: true})
	require.ErrorIs(t, err, ErrInvalidTTL)

	_, err = normalizeTTL(Duration(-time.Second))
	require.ErrorIs(t, err, ErrInvalidTTL)

	_, err = normalizeTTL(MaxTTL + 1)
	require.ErrorIs(t, err, ErrInvalidTTL)

	_, err = normalizeTTL(Seconds(math.MaxInt64))
	require.ErrorIs(t, err, ErrInvalidTTL)

	_, err = normalizeTTL(Duration(math.MaxInt64))
	require.ErrorIs(t, err, ErrInvalidTTL)

	iv, err := ParseInterval("PT5200000H")
	require.NoError(t, err)
	_, err = normalizeTTL(iv)
	require.ErrorIs(t, err, ErrInvalidTTL)

	for _, iv := range []Interval{
		{Years: math.MaxInt32},
		{Days: math.MaxInt},
		{Seconds: math.MinInt},
		{Years: 100, Days: 30},
	} {
		_, err = normalizeTTL(iv)
		require.ErrorIs(t, err, ErrInvalidTTL, "%+v", iv)
	}
}

func TestParseInterval(t *testing.T) {
	iv, err := ParseInterval("P1Y2M3W4DT5H6M7S")
	require.NoError(t, err)
	require.Equal(t, Interval{Years: 1, Months: 2, Weeks: 3, Days: 4, Hours: 5, Minutes: 6, Seconds: 7}, iv)

	iv, err = ParseInterval("PT30M")
	require.NoError(t, err)
	got, err := normalizeTTL(iv)
	require.NoError(t, err)
	require.EqualValues(t, 1800, got)
}

func TestParseInterval_Malformed(t *testing.T) {
	for _, s := range []string{"", "P", "PT", "P1DT", "1D", "P1H", "PT1D", "P-1D", "P1.5D"} {
		_, err := ParseInterval(s)
		require.ErrorIs(t, err, ErrInvalidTTL, s)
	}
}
