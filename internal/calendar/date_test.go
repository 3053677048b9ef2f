package calendar

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	d, err := Parse("2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 9, d.Day())
	assert.Equal(t, "2024-03-09", d.String())

	_, err = Parse("09/03/2024")
	assert.Error(t, err)
}

func TestIn(t *testing.T) {
	// 23:30 UTC on Jan 1 is already Jan 2 in Tokyo.
	instant := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", In(instant, nil).String())
	assert.Equal(t, "2024-01-02", In(instant, tokyo).String())
}

func TestAddDaysAndStartOfMonth(t *testing.T) {
	d := MustParse("2024-03-01")
	assert.Equal(t, "2024-02-29", d.AddDays(-1).String())
	assert.Equal(t, "2024-02-23", d.AddDays(-7).String())
	assert.Equal(t, "2024-03-01", MustParse("2024-03-31").StartOfMonth().String())
	assert.Equal(t, 7, d.DaysSince(d.AddDays(-7)))
}

func TestJSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}

	out, err := json.Marshal(payload{Date: MustParse("2024-12-31")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-12-31"}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-01-15"}`), &in))
	assert.Equal(t, "2025-01-15", in.Date.String())

	require.NoError(t, json.Unmarshal([]byte(`{"date":null}`), &in))
	assert.True(t, in.Date.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"date":"tomorrow"}`), &in))
}

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want string
	}{
		{name: "time", src: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), want: "2024-05-06"},
		{name: "string", src: "2024-05-06", want: "2024-05-06"},
		{name: "timestamp_string", src: "2024-05-06 00:00:00+00:00", want: "2024-05-06"},
		{name: "bytes", src: []byte("2024-05-06"), want: "2024-05-06"},
		{name: "nil", src: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.want, d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestValue(t *testing.T) {
	v, err := MustParse("2024-05-06").Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestClockToday(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	instant := time.Date(2024, 7, 1, 2, 0, 0, 0, time.UTC)
	clock := Clock{Now: func() time.Time { return instant }, Location: ny}
	assert.Equal(t, "2024-06-30", clock.Today().String())

	assert.Equal(t, "2024-07-01", Fixed(instant).Today().String())
}

func TestWindow(t *testing.T) {
	today := MustParse("2024-03-10")

	w := LastDays(today, 7)
	assert.Equal(t, "2024-03-04", w.From.String())
	assert.True(t, w.Contains(today))
	assert.True(t, w.Contains(w.From))
	assert.False(t, w.Contains(today.AddDays(1)))
	assert.False(t, w.Contains(w.From.AddDays(-1)))

	days := w.Days()
	require.Len(t, days, 7)
	assert.Equal(t, "2024-03-04", days[0].String())
	assert.Equal(t, "2024-03-10", days[6].String())

	open := Since(today.AddDays(-7))
	assert.True(t, open.Contains(today.AddDays(30)))
	assert.Nil(t, open.Days())
}
