package types

import "time"

// Decision is a decision ("besluit") taken on a case.
type Decision struct {
	URL             string
	Identification  string
	CaseURL         string
	DecisionTypeURL string
	Date            time.Time
	EffectiveDate   time.Time
	ExpirationDate  time.Time
	Explanation     string
}

// DecisionType describes the kind of a decision.
type DecisionType struct {
	Name                 string
	GenericName          string
	Category             string
	PublicationIndicated bool
}
