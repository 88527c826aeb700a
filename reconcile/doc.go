// Package reconcile merges the loaded series with the live snapshot.
//
// All answers for one pass come from a View captured at a single instant,
// so the substituted series value and the current-bucket colour hint always
// agree:
//
//	v := engine.At(time.Now())
//	points := v.SeriesFor(occupancy.Main, occupancy.Today)
//	hint := v.ColorClass(v.Bucket(), occupancy.Main)
//
// The Refresher keeps the engine's series fresh by loading the today,
// tomorrow and comparison feeds concurrently.
package reconcile
