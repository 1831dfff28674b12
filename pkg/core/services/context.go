// Package services holds the use-case layer: sheet-to-cache sync,
// cache-to-working-table reconciliation, working-table-to-sheet export,
// AO approval, the prayer request lifecycle, and the verse of the day.
// Functions take narrow store/sheet interfaces so the HTTP layer and
// tests can supply their own.
package services

import (
	"strings"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
)

// Role is the logged-in user's role.
type Role string

const (
	RolePastor       Role = "pastor"
	RoleAreaOverseer Role = "ao"
)

// RequestContext carries the per-request user identity and the session's
// dirty months. It replaces ambient session lookups: reconciliation and
// export receive it explicitly.
type RequestContext struct {
	Username      string
	Name          string
	ChurchAddress string
	ChurchID      string
	Role          Role

	// DirtyMonths marks months with pending local edits that the next
	// reconciliation pass must not clobber. Cleared on successful
	// export.
	DirtyMonths map[model.MonthKey]bool
}

// ChurchKey prefers the short church identifier code over the full
// address; the sheet's "church" column carries whichever is available.
func (rc *RequestContext) ChurchKey() string {
	if strings.TrimSpace(rc.ChurchID) != "" {
		return strings.TrimSpace(rc.ChurchID)
	}
	return strings.TrimSpace(rc.ChurchAddress)
}

// IsDirty reports whether the month has pending local edits.
func (rc *RequestContext) IsDirty(year, month int) bool {
	return rc.DirtyMonths[model.MonthKey{Year: year, Month: month}]
}

// MarkDirty flags the month as locally edited.
func (rc *RequestContext) MarkDirty(year, month int) {
	if rc.DirtyMonths == nil {
		rc.DirtyMonths = make(map[model.MonthKey]bool)
	}
	rc.DirtyMonths[model.MonthKey{Year: year, Month: month}] = true
}

// ClearDirty unflags the month after a successful export.
func (rc *RequestContext) ClearDirty(year, month int) {
	delete(rc.DirtyMonths, model.MonthKey{Year: year, Month: month})
}

// IsAreaOverseer reports whether the request is acting in the AO role.
func (rc *RequestContext) IsAreaOverseer() bool {
	return rc.Role == RoleAreaOverseer
}

// normalizeKey is the tolerant comparison used when matching sheet rows
// to a pastor's church: lowercase, trimmed, inner whitespace collapsed.
func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func sameKey(a, b string) bool {
	na, nb := normalizeKey(a), normalizeKey(b)
	return na != "" && na == nb
}
