// Package utils provides internal utility functions for the occupancy service.
// This package is not intended to be imported by external code.
//
// It contains:
//   - Time formatting and day arithmetic
//   - The API response envelope
package utils
