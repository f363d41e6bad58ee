package model

import "time"

// ScanOutcome records the result of one portal content scan. A failed scan
// is still an outcome: Error carries the reason, Contents stays nil.
type ScanOutcome struct {
	PortalID       PortalID           `json:"portal_id"`
	Contents       []string           `json:"contents,omitempty"`
	RequiredParams map[string]float64 `json:"required_params,omitempty"`
	Error          string             `json:"error,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
}
