package livefeed

import (
	"context"
	"encoding/json"
	"fmt"
)

// DefaultPath is the topic carrying the current occupancy record
const DefaultPath = "current-occupancy"

// Subscription is an active listener on a Source
type Subscription interface {
	Unsubscribe() error
}

// Source delivers raw records pushed at path. onValue is called for each
// record in arrival order; onError reports a transport failure after which
// the subscription is considered dead.
type Source interface {
	Subscribe(ctx context.Context, path string, onValue func(map[string]any), onError func(error)) (Subscription, error)
}

// decodeRecord parses one JSON payload. A JSON null is no record and
// decodes to nil without an error; callers drop it.
func decodeRecord(payload []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid occupancy payload: %w", err)
	}
	return raw, nil
}

type subscriptionFunc func() error

func (f subscriptionFunc) Unsubscribe() error { return f() }
