// Package formatter provides the response envelope and JSON serialization
// for the HTTP API.
package formatter
