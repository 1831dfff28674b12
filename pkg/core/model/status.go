package model

import "strings"

// Status is the closed set of report and prayer-request states. External
// status cells are free text; anything unrecognized parses to
// StatusUnknown rather than silently defaulting.
type Status int

const (
	StatusUnknown Status = iota
	StatusPending
	StatusApproved
	StatusAnswered
)

// Conventional status labels written to the sheet.
const (
	LabelPendingApproval = "Pending AO approval"
	LabelApproved        = "Approved"
	LabelPending         = "Pending"
	LabelAnswered        = "Answered"
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusAnswered:
		return "Answered"
	default:
		return "Unknown"
	}
}

// ParseStatus classifies a raw status cell. Matching is case-insensitive
// and tolerant of decoration like "Pending AO approval".
func ParseStatus(raw string) Status {
	s := normalize(raw)
	switch {
	case s == "":
		return StatusUnknown
	case strings.Contains(s, "answer"):
		return StatusAnswered
	case strings.Contains(s, "approved"):
		return StatusApproved
	case strings.Contains(s, "pending"):
		return StatusPending
	default:
		return StatusUnknown
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
