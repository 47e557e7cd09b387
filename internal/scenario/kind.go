// Package scenario holds the closed set of business scenarios a case event
// can trigger. A Kind selects one Scenario value; every Scenario runs the same
// fixed steps in Process and differs only in how it gathers and personalizes
// its data.
package scenario

import "casenotify/internal/config"

// Kind tags one of the supported scenarios.
type Kind int

const (
	NotImplemented Kind = iota
	CaseCreated
	CaseStatusUpdated
	CaseClosed
	TaskAssigned
	MessageReceived
	DecisionMade
)

// String returns the scenario name. The name is also the key of the
// scenario's entry in the notify template mapping.
func (k Kind) String() string {
	switch k {
	case CaseCreated:
		return "caseCreated"
	case CaseStatusUpdated:
		return "caseStatusUpdated"
	case CaseClosed:
		return "caseClosed"
	case TaskAssigned:
		return "taskAssigned"
	case MessageReceived:
		return "messageReceived"
	case DecisionMade:
		return "decisionMade"
	default:
		return "notImplemented"
	}
}

// Kinds lists every scenario that can send a notification.
func Kinds() []Kind {
	return []Kind{CaseCreated, CaseStatusUpdated, CaseClosed, TaskAssigned, MessageReceived, DecisionMade}
}

// For returns the Scenario implementing k. Unknown kinds map to the inert
// not-implemented scenario, so callers always get a usable value.
func For(k Kind) Scenario {
	switch k {
	case CaseCreated:
		return caseScenario(CaseCreated, "Zaak aangemaakt", func(w config.WhitelistConfig) []string { return w.CaseCreated })
	case CaseStatusUpdated:
		return caseScenario(CaseStatusUpdated, "Zaakstatus gewijzigd", func(w config.WhitelistConfig) []string { return w.CaseStatusUpdated })
	case CaseClosed:
		return caseScenario(CaseClosed, "Zaak afgerond", func(w config.WhitelistConfig) []string { return w.CaseClosed })
	case TaskAssigned:
		return taskScenario()
	case MessageReceived:
		return messageScenario()
	case DecisionMade:
		return decisionScenario()
	default:
		return notImplementedScenario()
	}
}
