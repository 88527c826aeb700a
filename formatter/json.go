package formatter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/library-occupancy/utils"
)

// ResponseBuilder wraps payloads in the API envelope
type ResponseBuilder struct {
	now func() time.Time
}

// NewResponseBuilder creates a builder stamping responses with now;
// nil uses time.Now
func NewResponseBuilder(now func() time.Time) *ResponseBuilder {
	if now == nil {
		now = time.Now
	}
	return &ResponseBuilder{now: now}
}

// Build wraps data in a timestamped envelope
func (rb *ResponseBuilder) Build(data any) *utils.Response {
	return &utils.Response{ResponseTimestamp: utils.Iso8601(rb.now()), Data: data}
}

// BuildError wraps an error message in a timestamped envelope
func (rb *ResponseBuilder) BuildError(msg string) *utils.Response {
	return &utils.Response{ResponseTimestamp: utils.Iso8601(rb.now()), Error: msg}
}

// BuildJSON serializes a response to JSON
func (rb *ResponseBuilder) BuildJSON(res *utils.Response) ([]byte, error) {
	return json.Marshal(res)
}

// Write sends res with the given status code
func (rb *ResponseBuilder) Write(w http.ResponseWriter, status int, res *utils.Response) {
	b, err := rb.BuildJSON(res)
	if err != nil {
		status = http.StatusInternalServerError
		b, _ = rb.BuildJSON(rb.BuildError("failed to encode response"))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
