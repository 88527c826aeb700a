package occupancy

import (
	"encoding/json"
	"math"
)

// Metric is an optional error value. The zero Metric is unavailable.
type Metric struct {
	Value     float64
	Available bool
}

// Known returns an available metric; non-finite values are unavailable
func Known(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Available: true}
}

// MarshalJSON writes the value or null
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Available {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// AreaAccuracy holds the two error metrics of one area.
// A is the relative mean error (RME), B the mean absolute percentage error (MAPE).
type AreaAccuracy struct {
	A Metric `json:"rme"`
	B Metric `json:"mape"`
}

// AccuracyRecord holds the error metrics for every area
type AccuracyRecord struct {
	areas [AreaCount]AreaAccuracy
}

// Get returns the metrics of a; unknown areas are unavailable
func (r AccuracyRecord) Get(a AreaID) AreaAccuracy {
	if i := a.Index(); i >= 0 {
		return r.areas[i]
	}
	return AreaAccuracy{}
}

// With returns a copy of r with the metrics of a replaced
func (r AccuracyRecord) With(a AreaID, acc AreaAccuracy) AccuracyRecord {
	if i := a.Index(); i >= 0 {
		r.areas[i] = acc
	}
	return r
}

// MarshalJSON writes the record keyed by area name
func (r AccuracyRecord) MarshalJSON() ([]byte, error) {
	m := make(map[AreaID]AreaAccuracy, AreaCount)
	for i, a := range areas {
		m[a] = r.areas[i]
	}
	return json.Marshal(m)
}

// Comparison is the parsed real-vs-predicted feed
type Comparison struct {
	// Date is the date column of the first data row
	Date      string
	Real      Series
	Predicted Series
	Accuracy  AccuracyRecord
}
