package utils

// Response is the envelope of every API reply
type Response struct {
	ResponseTimestamp string `json:"responseTimestamp"`
	Data              any    `json:"data,omitempty"`
	Error             string `json:"error,omitempty"`
}
