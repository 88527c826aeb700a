package occupancy

import "time"

// Snapshot is one normalised live reading for all areas
type Snapshot struct {
	Values     Values    `json:"values"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// NewSnapshot normalises a raw pushed record received at t
func NewSnapshot(raw map[string]any, t time.Time) Snapshot {
	return Snapshot{Values: ValuesFromMap(raw), ReceivedAt: t}
}

// Origin tells where a "current" value came from
type Origin int

const (
	// OriginNone means neither a live nor a cached snapshot exists
	OriginNone Origin = iota
	// OriginCache is a snapshot restored from durable storage
	OriginCache
	// OriginLive is a snapshot pushed during this session
	OriginLive
)

func (o Origin) String() string {
	switch o {
	case OriginCache:
		return "cache"
	case OriginLive:
		return "live"
	default:
		return "none"
	}
}

// MarshalText renders the origin name
func (o Origin) MarshalText() ([]byte, error) { return []byte(o.String()), nil }
