package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/theoremus-urban-solutions/library-occupancy/bucket"
	"github.com/theoremus-urban-solutions/library-occupancy/livefeed"
	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
	"github.com/theoremus-urban-solutions/library-occupancy/reconcile"
	"github.com/theoremus-urban-solutions/library-occupancy/utils"
)

type healthResponse struct {
	Status string                                 `json:"status"`
	Live   livefeed.Status                        `json:"live"`
	Feeds  map[reconcile.Feed]reconcile.FeedState `json:"feeds"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Live:   h.liveStatus(),
		Feeds:  h.Engine.FeedStatus(),
	}
	if resp.Live.Degraded {
		resp.Status = "degraded"
	}
	for _, f := range resp.Feeds {
		if f.LastError != "" {
			resp.Status = "degraded"
		}
	}
	h.rb.Write(w, http.StatusOK, h.rb.Build(resp))
}

type areaCurrent struct {
	Area      occupancy.AreaID `json:"area"`
	Label     string           `json:"label"`
	Occupancy int              `json:"occupancy"`
	Level     occupancy.Level  `json:"level"`
}

type occupancyResponse struct {
	Time       string           `json:"time"`
	Bucket     bucket.Key       `json:"bucket"`
	Origin     occupancy.Origin `json:"origin"`
	ReceivedAt string           `json:"receivedAt,omitempty"`
	Degraded   bool             `json:"degraded"`
	Areas      []areaCurrent    `json:"areas"`
}

func (h *handler) handleOccupancy(w http.ResponseWriter, _ *http.Request) {
	v := h.Engine.Current()
	resp := occupancyResponse{
		Time:     utils.Iso8601(v.Now()),
		Bucket:   v.Bucket(),
		Origin:   v.Origin(),
		Degraded: h.liveStatus().Degraded,
	}
	if v.Origin() != occupancy.OriginNone {
		resp.ReceivedAt = utils.Iso8601OrEmpty(v.Snapshot().ReceivedAt)
	}
	for _, a := range occupancy.Areas() {
		n := v.CurrentOccupancy(a)
		resp.Areas = append(resp.Areas, areaCurrent{Area: a, Label: a.Label(), Occupancy: n, Level: occupancy.LevelOf(n)})
	}
	h.rb.Write(w, http.StatusOK, h.rb.Build(resp))
}

type seriesPoint struct {
	Time      bucket.Key `json:"time"`
	Occupancy int        `json:"occupancy"`
	reconcile.ColorHint
}

type seriesResponse struct {
	Area       occupancy.AreaID `json:"area"`
	Day        string           `json:"day"`
	Date       string           `json:"date"`
	CommitTime string           `json:"commitTime,omitempty"`
	Points     []seriesPoint    `json:"points"`
}

func (h *handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	area, err := occupancy.ParseArea(mux.Vars(r)["area"])
	if err != nil {
		h.badRequest(w, err)
		return
	}
	day, err := occupancy.ParseDay(r.URL.Query().Get("day"))
	if err != nil {
		h.badRequest(w, err)
		return
	}

	v := h.Engine.Current()
	offset := 0
	if day == occupancy.Tomorrow {
		offset = 1
	}
	resp := seriesResponse{
		Area:       area,
		Day:        day.String(),
		Date:       utils.DateAfter(v.Now(), h.Engine.Location(), offset),
		CommitTime: h.Engine.Series(day).CommitTime(),
		Points:     []seriesPoint{},
	}
	for _, p := range v.SeriesFor(area, day) {
		resp.Points = append(resp.Points, seriesPoint{
			Time:      p.Bucket,
			Occupancy: p.Occupancy,
			ColorHint: v.ColorClassOn(day, p.Bucket, area),
		})
	}
	h.rb.Write(w, http.StatusOK, h.rb.Build(resp))
}

func (h *handler) handleAccuracy(w http.ResponseWriter, _ *http.Request) {
	h.rb.Write(w, http.StatusOK, h.rb.Build(h.Reporter.Report()))
}

type comparisonResponse struct {
	Date      string            `json:"date"`
	Area      occupancy.AreaID  `json:"area"`
	Visible   bool              `json:"visible"`
	Real      []occupancy.Point `json:"real"`
	Predicted []occupancy.Point `json:"predicted"`
	RME       string            `json:"rme"`
	MAPE      string            `json:"mape"`
}

func (h *handler) handleComparison(w http.ResponseWriter, r *http.Request) {
	var sel occupancy.Selection
	if raw := r.URL.Query().Get("area"); raw != "" {
		a, err := occupancy.ParseArea(raw)
		if err != nil {
			h.badRequest(w, err)
			return
		}
		sel = occupancy.Select(a)
	}
	_, visible := sel.Visible()
	area := sel.Effective()

	c, _ := h.Engine.Comparison()
	rme, mape := h.Reporter.Format(area)
	resp := comparisonResponse{
		Date:      c.Date,
		Area:      area,
		Visible:   visible,
		Real:      c.Real.Points(area),
		Predicted: c.Predicted.Points(area),
		RME:       rme,
		MAPE:      mape,
	}
	h.rb.Write(w, http.StatusOK, h.rb.Build(resp))
}
