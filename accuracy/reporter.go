// Package accuracy reports the forecast error metrics of the comparison feed.
package accuracy

import (
	"fmt"

	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
)

// NotAvailable is the display text of a missing metric
const NotAvailable = "N/A"

// Source provides the latest comparison feed, normally a *reconcile.Engine
type Source interface {
	Comparison() (occupancy.Comparison, bool)
}

// Metrics are the two error metrics of one area
type Metrics = occupancy.AreaAccuracy

// AreaReport is the formatted accuracy of one area
type AreaReport struct {
	Area  occupancy.AreaID `json:"area"`
	Label string           `json:"label"`
	RME   string           `json:"rme"`
	MAPE  string           `json:"mape"`
}

// Report is the formatted accuracy of every area
type Report struct {
	Date  string       `json:"date,omitempty"`
	Areas []AreaReport `json:"areas"`
}

// Reporter looks up metrics in the latest comparison feed
type Reporter struct {
	source Source
}

// NewReporter creates a reporter over source
func NewReporter(source Source) *Reporter {
	return &Reporter{source: source}
}

// MetricsFor returns the metrics of a. It reports false when no comparison
// feed is loaded or neither metric is available for a.
func (r *Reporter) MetricsFor(a occupancy.AreaID) (Metrics, bool) {
	c, ok := r.source.Comparison()
	if !ok {
		return Metrics{}, false
	}
	m := c.Accuracy.Get(a)
	return m, m.A.Available || m.B.Available
}

// Format renders the metrics of a with two decimals, or N/A
func (r *Reporter) Format(a occupancy.AreaID) (rme, mape string) {
	m, _ := r.MetricsFor(a)
	return FormatMetric(m.A), FormatMetric(m.B)
}

// Report formats the metrics of all areas
func (r *Reporter) Report() Report {
	var rep Report
	if c, ok := r.source.Comparison(); ok {
		rep.Date = c.Date
	}
	for _, a := range occupancy.Areas() {
		rme, mape := r.Format(a)
		rep.Areas = append(rep.Areas, AreaReport{Area: a, Label: a.Label(), RME: rme, MAPE: mape})
	}
	return rep
}

// FormatMetric renders m as "12.34%" or N/A
func FormatMetric(m occupancy.Metric) string {
	if !m.Available {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", m.Value)
}
