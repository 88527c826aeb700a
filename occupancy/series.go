package occupancy

import (
	"github.com/theoremus-urban-solutions/library-occupancy/bucket"
)

// SeriesRow is one bucket of a loaded feed
type SeriesRow struct {
	Bucket     bucket.Key `json:"time"`
	CommitTime string     `json:"commitTime"`
	Values     Values     `json:"values"`
}

// Point is a single (bucket, occupancy) pair of one area
type Point struct {
	Bucket    bucket.Key `json:"time"`
	Occupancy int        `json:"occupancy"`
}

// Series is an immutable, ordered collection of rows
type Series struct {
	rows []SeriesRow
}

// NewSeries copies rows into a new series
func NewSeries(rows []SeriesRow) Series {
	cp := make([]SeriesRow, len(rows))
	copy(cp, rows)
	return Series{rows: cp}
}

// Len returns the number of rows
func (s Series) Len() int { return len(s.rows) }

// Empty reports whether the series has no rows
func (s Series) Empty() bool { return len(s.rows) == 0 }

// Rows returns a copy of the rows
func (s Series) Rows() []SeriesRow {
	cp := make([]SeriesRow, len(s.rows))
	copy(cp, s.rows)
	return cp
}

// Row returns the i-th row
func (s Series) Row(i int) SeriesRow { return s.rows[i] }

// Find returns the first row for key k
func (s Series) Find(k bucket.Key) (SeriesRow, bool) {
	for _, r := range s.rows {
		if r.Bucket == k {
			return r, true
		}
	}
	return SeriesRow{}, false
}

// CommitTime returns the provenance timestamp of the first row
func (s Series) CommitTime() string {
	if len(s.rows) == 0 {
		return ""
	}
	return s.rows[0].CommitTime
}

// Points projects the series onto one area
func (s Series) Points(a AreaID) []Point {
	out := make([]Point, len(s.rows))
	for i, r := range s.rows {
		out[i] = Point{Bucket: r.Bucket, Occupancy: r.Values.Get(a)}
	}
	return out
}
