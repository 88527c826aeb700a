package reconcile

import (
	"time"

	"github.com/theoremus-urban-solutions/library-occupancy/bucket"
	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
)

// View is an immutable reconciliation pass pinned to one instant
type View struct {
	now      time.Time
	bucket   bucket.Key
	snap     occupancy.Snapshot
	origin   occupancy.Origin
	today    occupancy.Series
	tomorrow occupancy.Series
}

// Now is the instant the view was captured at
func (v View) Now() time.Time { return v.now }

// Bucket is the current bucket
func (v View) Bucket() bucket.Key { return v.bucket }

// Origin tells where the current values come from
func (v View) Origin() occupancy.Origin { return v.origin }

// Snapshot is the live or cached snapshot the view was built from
func (v View) Snapshot() occupancy.Snapshot { return v.snap }

// CurrentOccupancy is the live value for a, else the cached one, else 0
func (v View) CurrentOccupancy(a occupancy.AreaID) int {
	if v.origin == occupancy.OriginNone {
		return 0
	}
	return v.snap.Values.Get(a)
}

// SeriesFor returns tomorrow's forecast unchanged, or today's series with
// the current bucket's value replaced by CurrentOccupancy(a).
func (v View) SeriesFor(a occupancy.AreaID, day occupancy.Day) []occupancy.Point {
	if day == occupancy.Tomorrow {
		return v.tomorrow.Points(a)
	}
	points := v.today.Points(a)
	for i := range points {
		if points[i].Bucket == v.bucket {
			points[i].Occupancy = v.CurrentOccupancy(a)
			break
		}
	}
	return points
}

// ColorClass classifies today's bucket b. The current bucket also carries
// the occupancy level of CurrentOccupancy(a).
func (v View) ColorClass(b bucket.Key, a occupancy.AreaID) ColorHint {
	rel := bucket.Classify(b, v.bucket)
	h := ColorHint{Relation: rel}
	if rel == bucket.Current {
		lvl := occupancy.LevelOf(v.CurrentOccupancy(a))
		h.Level = &lvl
	}
	return h
}

// ColorClassOn classifies bucket b on day; every bucket of tomorrow is Future
func (v View) ColorClassOn(day occupancy.Day, b bucket.Key, a occupancy.AreaID) ColorHint {
	if day == occupancy.Tomorrow {
		return ColorHint{Relation: bucket.Future}
	}
	return v.ColorClass(b, a)
}

// Current returns the current values for all areas
func (v View) Current() occupancy.Values {
	if v.origin == occupancy.OriginNone {
		return occupancy.Values{}
	}
	return v.snap.Values
}
