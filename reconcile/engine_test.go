package reconcile

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/library-occupancy/bucket"
	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
)

type stubLive struct {
	snap   occupancy.Snapshot
	origin occupancy.Origin
}

func (s stubLive) Current() (occupancy.Snapshot, occupancy.Origin) { return s.snap, s.origin }

func live(origin occupancy.Origin, main int) stubLive {
	return stubLive{snap: occupancy.Snapshot{Values: occupancy.Values{}.With(occupancy.Main, main)}, origin: origin}
}

// fullDay has one row per bucket with main = 10 + index
func fullDay() occupancy.Series {
	rows := make([]occupancy.SeriesRow, 0, bucket.PerDay)
	for i, k := range bucket.All() {
		rows = append(rows, occupancy.SeriesRow{
			Bucket: k,
			Values: occupancy.Values{}.With(occupancy.Main, 10+i).With(occupancy.North, i),
		})
	}
	return occupancy.NewSeries(rows)
}

func at(hh, mm int) time.Time {
	return time.Date(2024, 5, 2, hh, mm, 0, 0, time.UTC)
}

func TestView_SeriesForToday_SubstitutesAtMostOneRow(t *testing.T) {
	e := NewEngine(live(occupancy.OriginLive, 99), WithLocation(time.UTC))
	raw := fullDay()
	e.SetSeries(occupancy.Today, raw)

	for _, k := range bucket.All() {
		now := k.Start(at(0, 0)).Add(7 * time.Minute)
		v := e.At(now)
		got := v.SeriesFor(occupancy.Main, occupancy.Today)
		want := raw.Points(occupancy.Main)
		require.Len(t, got, len(want))

		diffs := 0
		for i := range got {
			if got[i] != want[i] {
				diffs++
				assert.Equal(t, k, got[i].Bucket)
				assert.Equal(t, v.CurrentOccupancy(occupancy.Main), got[i].Occupancy)
			}
		}
		assert.LessOrEqual(t, diffs, 1, "bucket %s", k)
	}
}

func TestView_SeriesForToday_NoMatchingRow(t *testing.T) {
	e := NewEngine(live(occupancy.OriginLive, 99), WithLocation(time.UTC))
	e.SetSeries(occupancy.Today, occupancy.NewSeries([]occupancy.SeriesRow{
		{Bucket: bucket.MustParse("08:00"), Values: occupancy.Values{}.With(occupancy.Main, 20)},
	}))

	v := e.At(at(14, 10))
	assert.Equal(t, []occupancy.Point{{Bucket: "08:00", Occupancy: 20}}, v.SeriesFor(occupancy.Main, occupancy.Today))
	assert.Equal(t, 99, v.CurrentOccupancy(occupancy.Main))
}

func TestView_SeriesForTomorrow_Unchanged(t *testing.T) {
	e := NewEngine(live(occupancy.OriginLive, 99), WithLocation(time.UTC))
	raw := fullDay()
	e.SetSeries(occupancy.Tomorrow, raw)

	assert.Equal(t, raw.Points(occupancy.Main), e.At(at(9, 0)).SeriesFor(occupancy.Main, occupancy.Tomorrow))
	assert.Empty(t, e.At(at(9, 0)).SeriesFor(occupancy.Main, occupancy.Today))
}

func TestView_CurrentOccupancyFallback(t *testing.T) {
	tests := []struct {
		name string
		live Live
		want int
	}{
		{"live", live(occupancy.OriginLive, 70), 70},
		{"cache", live(occupancy.OriginCache, 45), 45},
		{"none", stubLive{origin: occupancy.OriginNone, snap: occupancy.Snapshot{Values: occupancy.Values{}.With(occupancy.Main, 5)}}, 0},
		{"no_live_feed", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.live, WithLocation(time.UTC))
			assert.Equal(t, tt.want, e.At(at(12, 0)).CurrentOccupancy(occupancy.Main))
		})
	}
}

func TestView_ColorClass(t *testing.T) {
	e := NewEngine(live(occupancy.OriginLive, 81), WithLocation(time.UTC))
	v := e.At(at(12, 45))
	require.Equal(t, bucket.Key("12:30"), v.Bucket())

	cur := v.ColorClass(bucket.MustParse("12:30"), occupancy.Main)
	assert.Equal(t, bucket.Current, cur.Relation)
	require.NotNil(t, cur.Level)
	assert.Equal(t, occupancy.High, *cur.Level)

	past := v.ColorClass(bucket.MustParse("12:00"), occupancy.Main)
	assert.Equal(t, bucket.Past, past.Relation)
	assert.Nil(t, past.Level)

	assert.Equal(t, bucket.Future, v.ColorClass(bucket.MustParse("13:00"), occupancy.Main).Relation)
	assert.Equal(t, bucket.Future, v.ColorClassOn(occupancy.Tomorrow, bucket.MustParse("00:00"), occupancy.Main).Relation)
	assert.Equal(t, bucket.Current, v.ColorClassOn(occupancy.Today, bucket.MustParse("12:30"), occupancy.Main).Relation)

	// north has no live value, so the current level is low
	lvl := v.ColorClass(bucket.MustParse("12:30"), occupancy.North).Level
	require.NotNil(t, lvl)
	assert.Equal(t, occupancy.Low, *lvl)
}

func TestEngine_UsesClockAndLocation(t *testing.T) {
	stockholm, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)

	e := NewEngine(nil, WithLocation(stockholm), WithClock(func() time.Time { return at(7, 5) }))
	// 07:05 UTC is 09:05 in Stockholm during summer time
	assert.Equal(t, bucket.Key("09:00"), e.Current().Bucket())
	assert.Equal(t, stockholm, e.Location())
}

func TestEngine_ConvenienceMethods(t *testing.T) {
	e := NewEngine(live(occupancy.OriginCache, 30), WithLocation(time.UTC), WithClock(func() time.Time { return at(0, 10) }))
	e.SetSeries(occupancy.Today, fullDay())

	assert.Equal(t, 30, e.CurrentOccupancy(occupancy.Main))
	assert.Equal(t, 30, e.SeriesFor(occupancy.Main, occupancy.Today)[0].Occupancy)
	assert.Equal(t, bucket.Current, e.ColorClass("00:00", occupancy.Main).Relation)
	assert.Equal(t, occupancy.OriginCache, e.Current().Origin())
}

func TestEngine_Comparison(t *testing.T) {
	e := NewEngine(nil)
	_, ok := e.Comparison()
	assert.False(t, ok)

	e.SetComparison(occupancy.Comparison{Date: "2024-11-20"})
	c, ok := e.Comparison()
	require.True(t, ok)
	assert.Equal(t, "2024-11-20", c.Date)
}
