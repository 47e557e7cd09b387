package types

import (
	"sort"
	"time"
)

// Case is the version-agnostic representation of a case ("zaak"). It is
// fetched per request and never cached across requests.
type Case struct {
	URL              string
	ID               string
	Identification   string
	Name             string
	CaseTypeURL      string
	RegistrationDate time.Time
}

// CaseStatus is one status entry in the history of a case.
type CaseStatus struct {
	URL           string
	StatusTypeURL string
	SetAt         time.Time
	Explanation   string
}

// CaseStatuses is a case's status history ordered newest-first.
type CaseStatuses []CaseStatus

// SortNewestFirst returns a copy of the statuses ordered newest-first.
func SortNewestFirst(statuses []CaseStatus) CaseStatuses {
	out := make(CaseStatuses, len(statuses))
	copy(out, statuses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SetAt.After(out[j].SetAt)
	})
	return out
}

// WasNeverUpdated reports whether the case only has its initial status.
func (s CaseStatuses) WasNeverUpdated() bool {
	return len(s) == 1
}

// Newest returns the most recent status.
func (s CaseStatuses) Newest() (CaseStatus, bool) {
	if len(s) == 0 {
		return CaseStatus{}, false
	}
	return s[0], true
}

// CaseType is derived from the newest status of a case. It may be reused
// within one scenario execution only.
type CaseType struct {
	Identification         string
	Description            string
	IsFinalStatus          bool
	IsNotificationExpected bool
}
