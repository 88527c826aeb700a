package series

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/library-occupancy/bucket"
	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
)

// Tag markers of the comparison feed summary rows
const (
	MarkerRME  = "RME"
	MarkerMAPE = "MAPE"
)

var (
	timeColumns   = []string{"time", "bucketTime", "bucket_time"}
	commitColumns = []string{"date", "commitTime", "commit_time"}
)

// header maps column names to positions
type header []string

func (h header) idx(col string) int {
	for i, name := range h {
		if strings.EqualFold(name, col) {
			return i
		}
	}
	return -1
}

func (h header) first(cols []string) int {
	for _, c := range cols {
		if i := h.idx(c); i >= 0 {
			return i
		}
	}
	return -1
}

// timeIdx is the bucket column, defaulting to the second column
func (h header) timeIdx() int {
	if i := h.first(timeColumns); i >= 0 {
		return i
	}
	if len(h) > 1 {
		return 1
	}
	return -1
}

// commitIdx is the provenance column, defaulting to the first column
func (h header) commitIdx() int {
	if i := h.first(commitColumns); i >= 0 {
		return i
	}
	if ti := h.timeIdx(); ti != 0 && len(h) > 0 {
		return 0
	}
	return -1
}

// readRecords returns the header and the non-blank data records.
// Malformed lines are skipped and counted.
func readRecords(r io.Reader, stats *ParseStats) (header, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var head header
	var recs [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				stats.DroppedRows++
				continue
			}
			return nil, nil, err
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if blank(rec) {
			continue
		}
		if head == nil {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			head = header(rec)
			continue
		}
		recs = append(recs, rec)
	}
	if head == nil {
		return nil, nil, ErrEmptyPayload
	}
	return head, recs, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if f != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// number parses a numeric cell, falling back to 0
func number(row []string, i int, stats *ParseStats) float64 {
	f, err := strconv.ParseFloat(cell(row, i), 64)
	if err != nil {
		stats.BadCells++
		return 0
	}
	return f
}

// Parse reads a today/tomorrow feed
func Parse(r io.Reader) (occupancy.Series, ParseStats, error) {
	var stats ParseStats
	head, recs, err := readRecords(r, &stats)
	if err != nil {
		return occupancy.Series{}, stats, err
	}
	ti, ci := head.timeIdx(), head.commitIdx()
	areaIdx := make([]int, occupancy.AreaCount)
	for i, a := range occupancy.Areas() {
		areaIdx[i] = head.idx(string(a))
	}

	rows := make([]occupancy.SeriesRow, 0, len(recs))
	for _, rec := range recs {
		k, err := bucket.Parse(cell(rec, ti))
		if err != nil {
			stats.DroppedRows++
			continue
		}
		row := occupancy.SeriesRow{Bucket: k, CommitTime: cell(rec, ci)}
		for i, a := range occupancy.Areas() {
			if areaIdx[i] < 0 {
				continue
			}
			row.Values = row.Values.With(a, occupancy.Percent(number(rec, areaIdx[i], &stats)))
		}
		rows = append(rows, row)
	}
	stats.Rows = len(rows)
	return occupancy.NewSeries(rows), stats, nil
}

func comparisonColumn(a occupancy.AreaID, kind string) string {
	return "Occupancy_" + string(a) + "_" + kind
}

// tagged reports whether any field of rec is exactly marker
func tagged(rec []string, marker string) bool {
	for _, f := range rec {
		if f == marker {
			return true
		}
	}
	return false
}

func findTagged(recs [][]string, marker string) int {
	for i, rec := range recs {
		if tagged(rec, marker) {
			return i
		}
	}
	return -1
}

// ParseComparison reads a real-vs-predicted feed
func ParseComparison(r io.Reader) (occupancy.Comparison, ParseStats, error) {
	var stats ParseStats
	head, recs, err := readRecords(r, &stats)
	if err != nil {
		return occupancy.Comparison{}, stats, err
	}

	rmeIdx := findTagged(recs, MarkerRME)
	mapeIdx := findTagged(recs, MarkerMAPE)
	end := len(recs)
	for _, i := range []int{rmeIdx, mapeIdx} {
		if i >= 0 && i < end {
			end = i
		}
	}
	body := recs[:end]

	ti, ci := head.timeIdx(), head.commitIdx()
	realIdx := make([]int, occupancy.AreaCount)
	predIdx := make([]int, occupancy.AreaCount)
	for i, a := range occupancy.Areas() {
		realIdx[i] = head.idx(comparisonColumn(a, "real"))
		predIdx[i] = head.idx(comparisonColumn(a, "predicted"))
	}

	var out occupancy.Comparison
	if len(body) > 0 {
		out.Date = cell(body[0], ci)
	}
	realRows := make([]occupancy.SeriesRow, 0, len(body))
	predRows := make([]occupancy.SeriesRow, 0, len(body))
	for _, rec := range body {
		k, err := bucket.Parse(cell(rec, ti))
		if err != nil {
			stats.DroppedRows++
			continue
		}
		rr := occupancy.SeriesRow{Bucket: k, CommitTime: cell(rec, ci)}
		pr := rr
		for i, a := range occupancy.Areas() {
			if realIdx[i] >= 0 {
				rr.Values = rr.Values.With(a, occupancy.Percent(number(rec, realIdx[i], &stats)))
			}
			if predIdx[i] >= 0 {
				pr.Values = pr.Values.With(a, occupancy.Percent(number(rec, predIdx[i], &stats)))
			}
		}
		realRows = append(realRows, rr)
		predRows = append(predRows, pr)
	}
	stats.Rows = len(realRows)
	out.Real = occupancy.NewSeries(realRows)
	out.Predicted = occupancy.NewSeries(predRows)

	var acc occupancy.AccuracyRecord
	for i, a := range occupancy.Areas() {
		if predIdx[i] < 0 {
			continue
		}
		var aa occupancy.AreaAccuracy
		if rmeIdx >= 0 {
			aa.A = occupancy.Known(number(recs[rmeIdx], predIdx[i], &stats))
		}
		if mapeIdx >= 0 {
			aa.B = occupancy.Known(number(recs[mapeIdx], predIdx[i], &stats))
		}
		acc = acc.With(a, aa)
	}
	out.Accuracy = acc
	return out, stats, nil
}
