package series

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/library-occupancy/bucket"
	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
)

const comparisonHeader = "Date,Time," +
	"Occupancy_main_real,Occupancy_main_predicted," +
	"Occupancy_southEast_real,Occupancy_southEast_predicted," +
	"Occupancy_north_real,Occupancy_north_predicted," +
	"Occupancy_south_real,Occupancy_south_predicted," +
	"Occupancy_angdomen_real,Occupancy_angdomen_predicted," +
	"Occupancy_newton_real,Occupancy_newton_predicted\n"

func TestParse_SingleRow(t *testing.T) {
	in := "Date,Time,main,southEast,north,south,angdomen,newton\n2024-01-01,09:00,40,10,20,5,0,15\n"

	s, stats, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	row := s.Row(0)
	assert.Equal(t, bucket.Key("09:00"), row.Bucket)
	assert.Equal(t, "2024-01-01", row.CommitTime)
	assert.Equal(t, occupancy.Values{40, 10, 20, 5, 0, 15}, row.Values)
	assert.Equal(t, ParseStats{Rows: 1}, stats)
}

func TestParse_FeedLayout(t *testing.T) {
	in := "commitTime,time,main,southEast,north,south,angdomen,newton\n" +
		"2024-05-02 06:00:01,08:00,10,11,12,13,14,15\n" +
		"\n" +
		"2024-05-02 06:00:01,08:30,20,21,22,23,24,25\n" +
		"   \n\n"

	s, _, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, "2024-05-02 06:00:01", s.CommitTime())
	assert.Equal(t, []occupancy.Point{{Bucket: "08:00", Occupancy: 12}, {Bucket: "08:30", Occupancy: 22}}, s.Points(occupancy.North))
}

func TestParse_BadCellsDefaultToZero(t *testing.T) {
	in := "Date,Time,main,southEast,north,south,angdomen,newton\n" +
		"2024-01-01,10:00,abc,,20.6,5,0\n"

	s, stats, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, occupancy.Values{0, 0, 20, 5, 0, 0}, s.Row(0).Values)
	assert.Equal(t, 3, stats.BadCells)
}

func TestParse_DropsRowsWithoutBucket(t *testing.T) {
	in := "Date,Time,main\n2024-01-01,noon,10\n2024-01-01,12:00,30\n"

	s, stats, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, bucket.Key("12:00"), s.Row(0).Bucket)
	assert.Equal(t, 1, stats.DroppedRows)
}

func TestParse_HeaderOnlyIsEmptySeries(t *testing.T) {
	s, _, err := Parse(strings.NewReader("Date,Time,main\n"))
	require.NoError(t, err)
	assert.True(t, s.Empty())
}

func TestParse_EmptyPayload(t *testing.T) {
	_, _, err := Parse(strings.NewReader("\n \n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyPayload))
}

func TestParseComparison_BothMarkers(t *testing.T) {
	in := comparisonHeader +
		"2024-11-20,08:00,10,12.5,20,18,30,33,40,41,50,49,60,58\n" +
		"2024-11-20,08:30,11,13,21,19,31,30,41,40,51,50,61,60\n" +
		",RME,,1.25,,2.5,,3.75,,4,,5.125,,6\n" +
		",MAPE,,10.5,,20.25,,30,,40,,50,,60.75\n"

	c, stats, err := ParseComparison(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, "2024-11-20", c.Date)
	require.Equal(t, 2, c.Real.Len())
	require.Equal(t, 2, c.Predicted.Len())
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 10, c.Real.Row(0).Values.Get(occupancy.Main))
	assert.Equal(t, 12, c.Predicted.Row(0).Values.Get(occupancy.Main))

	for _, a := range occupancy.Areas() {
		acc := c.Accuracy.Get(a)
		assert.True(t, acc.A.Available, a)
		assert.True(t, acc.B.Available, a)
	}
	assert.InDelta(t, 1.25, c.Accuracy.Get(occupancy.Main).A.Value, 1e-9)
	assert.InDelta(t, 60.75, c.Accuracy.Get(occupancy.Newton).B.Value, 1e-9)
}

func TestParseComparison_MissingMarker(t *testing.T) {
	in := comparisonHeader +
		"2024-11-20,08:00,10,12,20,18,30,33,40,41,50,49,60,58\n" +
		",MAPE,,10,,20,,30,,40,,50,,60\n"

	c, _, err := ParseComparison(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 1, c.Real.Len())

	for _, a := range occupancy.Areas() {
		acc := c.Accuracy.Get(a)
		assert.False(t, acc.A.Available, a)
		assert.True(t, acc.B.Available, a)
	}
}

func TestParseComparison_NoMarkers(t *testing.T) {
	in := comparisonHeader + "2024-11-20,08:00,10,12,20,18,30,33,40,41,50,49,60,58\n"

	c, _, err := ParseComparison(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Real.Len())
	for _, a := range occupancy.Areas() {
		assert.False(t, c.Accuracy.Get(a).A.Available)
		assert.False(t, c.Accuracy.Get(a).B.Available)
	}
}

func TestParseComparison_PartitionsAtFirstMarker(t *testing.T) {
	in := comparisonHeader +
		"2024-11-20,08:00,10,12,20,18,30,33,40,41,50,49,60,58\n" +
		",MAPE,,10,,20,,30,,40,,50,,60\n" +
		"2024-11-20,09:00,99,99,99,99,99,99,99,99,99,99,99,99\n" +
		",RME,,1,,2,,3,,4,,5,,x\n"

	c, _, err := ParseComparison(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Real.Len())

	newton := c.Accuracy.Get(occupancy.Newton)
	assert.True(t, newton.A.Available)
	assert.InDelta(t, 0, newton.A.Value, 1e-9)
}

func TestParseComparison_MissingPredictedColumn(t *testing.T) {
	in := "Date,Time,Occupancy_main_real,Occupancy_main_predicted\n" +
		"2024-11-20,08:00,10,12\n" +
		",RME,,1.5\n,MAPE,,2.5\n"

	c, _, err := ParseComparison(strings.NewReader(in))
	require.NoError(t, err)
	assert.True(t, c.Accuracy.Get(occupancy.Main).A.Available)
	assert.False(t, c.Accuracy.Get(occupancy.North).A.Available)
	assert.Equal(t, 0, c.Real.Row(0).Values.Get(occupancy.North))
}
