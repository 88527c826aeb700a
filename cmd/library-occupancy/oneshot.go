package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/library-occupancy/accuracy"
	"github.com/theoremus-urban-solutions/library-occupancy/bucket"
	"github.com/theoremus-urban-solutions/library-occupancy/config"
	"github.com/theoremus-urban-solutions/library-occupancy/formatter"
	"github.com/theoremus-urban-solutions/library-occupancy/livefeed"
	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
	"github.com/theoremus-urban-solutions/library-occupancy/reconcile"
)

type oneshotPoint struct {
	Time      bucket.Key `json:"time"`
	Occupancy int        `json:"occupancy"`
	reconcile.ColorHint
}

type oneshotResult struct {
	Area     occupancy.AreaID                       `json:"area"`
	Day      string                                 `json:"day"`
	Bucket   bucket.Key                             `json:"bucket"`
	Current  int                                    `json:"current"`
	Origin   occupancy.Origin                       `json:"origin"`
	Live     livefeed.Status                        `json:"live"`
	Feeds    map[reconcile.Feed]reconcile.FeedState `json:"feeds"`
	Series   []oneshotPoint                         `json:"series"`
	Accuracy accuracy.Report                        `json:"accuracy"`
}

func oneshotCommand() *cobra.Command {
	var (
		area string
		day  string
		wait time.Duration
	)
	cmd := &cobra.Command{
		Use:   "oneshot",
		Short: "Load the feeds once, optionally wait for a live snapshot, and print the result as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := occupancy.ParseArea(area)
			if err != nil {
				return err
			}
			d, err := occupancy.ParseDay(day)
			if err != nil {
				return err
			}
			return oneshot(cmd.Context(), config.Config, a, d, wait, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&area, "area", string(occupancy.Main), "area to print the series for")
	cmd.Flags().StringVar(&day, "day", "today", "today|tomorrow")
	cmd.Flags().DurationVar(&wait, "wait", 0, "how long to wait for a live snapshot before printing")
	return cmd
}

func oneshot(ctx context.Context, cfg config.AppConfig, area occupancy.AreaID, day occupancy.Day, wait time.Duration, out io.Writer) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	got := make(chan struct{}, 1)
	a.live.OnSnapshot(func(occupancy.Snapshot) {
		select {
		case got <- struct{}{}:
		default:
		}
	})
	if err := a.live.Start(ctx); err != nil {
		return err
	}
	a.refresher.Refresh(ctx)

	if wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-got:
		case <-timer.C:
		case <-ctx.Done():
		}
		timer.Stop()
	}

	v := a.engine.Current()
	res := oneshotResult{
		Area:     area,
		Day:      day.String(),
		Bucket:   v.Bucket(),
		Current:  v.CurrentOccupancy(area),
		Origin:   v.Origin(),
		Live:     a.live.Status(),
		Feeds:    a.engine.FeedStatus(),
		Series:   []oneshotPoint{},
		Accuracy: a.reporter.Report(),
	}
	for _, p := range v.SeriesFor(area, day) {
		res.Series = append(res.Series, oneshotPoint{Time: p.Bucket, Occupancy: p.Occupancy, ColorHint: v.ColorClassOn(day, p.Bucket, area)})
	}

	rb := formatter.NewResponseBuilder(a.engine.Now)
	buf, err := rb.BuildJSON(rb.Build(res))
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "  "); err != nil {
		return err
	}
	pretty.WriteByte('\n')
	_, err = pretty.WriteTo(out)
	return err
}
