package types

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskOpen   TaskStatus = "open"
	TaskClosed TaskStatus = "gesloten"
)

// IdentificationType names the register an identification value belongs to.
type IdentificationType string

const (
	IdentificationBSN IdentificationType = "bsn"
	IdentificationKVK IdentificationType = "kvk"
)

// Identification identifies the party a task or message is addressed to.
type Identification struct {
	Type  IdentificationType `json:"type"`
	Value string             `json:"value"`
}

// CommonTaskData is the unified representation of a task, independent of the
// object schema version it was stored with.
type CommonTaskData struct {
	CaseURL        string
	CaseID         string
	Title          string
	Status         TaskStatus
	ExpirationDate time.Time
	Identification Identification
}
