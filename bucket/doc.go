// Package bucket defines the fixed 30-minute grid used by every occupancy series.
//
// A Key is a time of day of the form HH:MM where MM is 00 or 30. A day has
// exactly 48 keys. Of maps any instant onto its key and Classify relates a key
// to the key of "now".
//
// Keys carry no date. Tomorrow's series is a separate collection and is never
// classified against today's current key.
package bucket
