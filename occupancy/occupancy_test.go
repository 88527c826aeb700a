package occupancy

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/library-occupancy/bucket"
)

func TestParseArea(t *testing.T) {
	a, err := ParseArea("SouthEast")
	require.NoError(t, err)
	assert.Equal(t, SouthEast, a)

	a, err = ParseArea(" newton ")
	require.NoError(t, err)
	assert.Equal(t, Newton, a)

	_, err = ParseArea("basement")
	require.Error(t, err)
}

func TestValuesFromMap_Normalises(t *testing.T) {
	raw := map[string]any{
		"main":      float64(40),
		"southEast": "12",
		"north":     nil,
		"south":     "n/a",
		"newton":    15.6,
		"angdomen":  "42.7",
		"unrelated": 99,
	}
	v := ValuesFromMap(raw)
	assert.Equal(t, Values{40, 12, 0, 0, 42, 15}, v)
}

func TestValuesFromMap_NonFinite(t *testing.T) {
	v := ValuesFromMap(map[string]any{"main": math.NaN(), "north": math.Inf(1)})
	assert.Equal(t, Values{}, v)
}

func TestPercent_TruncatesAndClamps(t *testing.T) {
	assert.Equal(t, 42, Percent(42.7))
	assert.Equal(t, -3, Percent(-3.9))
	assert.Equal(t, math.MaxInt32, Percent(1e300))
	assert.Equal(t, math.MinInt32, Percent(-1e300))
	assert.Equal(t, math.MaxInt32, ValuesFromMap(map[string]any{"main": "1e40"}).Get(Main))
}

func TestValues_JSONAlwaysHasAllAreas(t *testing.T) {
	b, err := json.Marshal(Values{}.With(North, 20))
	require.NoError(t, err)
	assert.JSONEq(t, `{"main":0,"southEast":0,"north":20,"south":0,"angdomen":0,"newton":0}`, string(b))

	var v Values
	require.NoError(t, json.Unmarshal([]byte(`{"main":7}`), &v))
	assert.Equal(t, 7, v.Get(Main))
	assert.Equal(t, 0, v.Get(Newton))
	assert.Equal(t, 0, v.Get(AreaID("nope")))
}

func TestSeries_IsImmutable(t *testing.T) {
	rows := []SeriesRow{{Bucket: "09:00", Values: Values{}.With(Main, 40)}}
	s := NewSeries(rows)
	rows[0].Values = Values{}

	got := s.Rows()
	got[0].Bucket = "10:00"

	r, ok := s.Find("09:00")
	require.True(t, ok)
	assert.Equal(t, 40, r.Values.Get(Main))
	_, ok = s.Find("10:00")
	assert.False(t, ok)
}

func TestSeries_Points(t *testing.T) {
	s := NewSeries([]SeriesRow{
		{Bucket: "09:00", CommitTime: "c1", Values: Values{1, 2, 3, 4, 5, 6}},
		{Bucket: "09:30", CommitTime: "c1", Values: Values{7, 8, 9, 10, 11, 12}},
	})
	assert.Equal(t, []Point{{"09:00", 5}, {"09:30", 11}}, s.Points(Angdomen))
	assert.Equal(t, "c1", s.CommitTime())
	assert.Equal(t, "", Series{}.CommitTime())
}

func TestNewSnapshot(t *testing.T) {
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s := NewSnapshot(map[string]any{"main": 40.0}, at)
	assert.Equal(t, 40, s.Values.Get(Main))
	assert.Equal(t, at, s.ReceivedAt)
}

func TestMetric(t *testing.T) {
	assert.False(t, Known(math.NaN()).Available)
	m := Known(1.234)
	assert.True(t, m.Available)

	rec := AccuracyRecord{}.With(Main, AreaAccuracy{A: m})
	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]map[string]*float64
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Len(t, decoded, AreaCount)
	require.NotNil(t, decoded["main"]["rme"])
	assert.InDelta(t, 1.234, *decoded["main"]["rme"], 1e-9)
	assert.Nil(t, decoded["main"]["mape"])
}

func TestLevelOf(t *testing.T) {
	assert.Equal(t, Low, LevelOf(0))
	assert.Equal(t, Low, LevelOf(50))
	assert.Equal(t, Medium, LevelOf(51))
	assert.Equal(t, Medium, LevelOf(80))
	assert.Equal(t, High, LevelOf(81))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("")
	require.NoError(t, err)
	assert.Equal(t, Today, d)
	d, err = ParseDay("Tomorrow")
	require.NoError(t, err)
	assert.Equal(t, Tomorrow, d)
	_, err = ParseDay("yesterday")
	assert.Error(t, err)
}

func TestSelection_Toggle(t *testing.T) {
	s := Select(Main)
	a, ok := s.Visible()
	require.True(t, ok)
	assert.Equal(t, Main, a)

	s = s.Toggle(North)
	a, _ = s.Visible()
	assert.Equal(t, North, a)

	s = s.Toggle(North)
	_, ok = s.Visible()
	assert.False(t, ok)
	assert.Equal(t, Main, s.Effective())
}

func TestSeriesRow_BucketKeyType(t *testing.T) {
	r := SeriesRow{Bucket: bucket.MustParse("9:45")}
	assert.Equal(t, bucket.Key("09:30"), r.Bucket)
}
