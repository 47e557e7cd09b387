package scenario

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"casenotify/internal/config"
	"casenotify/internal/notify"
	"casenotify/internal/telemetry"
	"casenotify/internal/types"
)

// DataSource is the query surface scenarios read from. querying.Adapter
// implements it.
type DataSource interface {
	GetCase(ctx context.Context, caseURL string) (types.Case, error)
	GetCaseStatuses(ctx context.Context, caseURL string) (types.CaseStatuses, error)
	GetLastCaseType(ctx context.Context, statuses types.CaseStatuses) (types.CaseType, error)
	GetCaseInitiator(ctx context.Context, c types.Case) (types.CommonPartyData, error)
	GetPartyByReference(ctx context.Context, id types.Identification, caseIdentification string) (types.CommonPartyData, error)
	GetTask(ctx context.Context, objectURL string) (types.CommonTaskData, error)
	GetMessage(ctx context.Context, objectURL string) (types.CommonMessageData, error)
	GetDecision(ctx context.Context, decisionURL string) (types.Decision, error)
	GetDecisionType(ctx context.Context, decisionTypeURL string) (types.DecisionType, error)
}

// Dispatcher sends prepared notification data. notify.Service implements it.
type Dispatcher interface {
	Send(ctx context.Context, data types.NotifyData) notify.Result
}

// CompletionReporter records a sent notification in the case-management
// system. telemetry.Reporter implements it.
type CompletionReporter interface {
	Report(ctx context.Context, r telemetry.Report) types.ProcessingResult
}

// ObjectTypes holds the configured object type identifiers of tasks and
// messages in the object registry.
type ObjectTypes struct {
	Task    uuid.UUID
	Message uuid.UUID
}

// Deps are the collaborators shared by every scenario. A Deps value is built
// once at startup and is read-only afterwards.
type Deps struct {
	Data      DataSource
	Notify    Dispatcher
	Reporter  CompletionReporter
	Whitelist config.WhitelistConfig
	Templates config.TemplateSet
	Objects   ObjectTypes
	Logger    *slog.Logger
}

// Prepared is the data a scenario gathered for one event. Only the parts
// relevant to the scenario are set.
type Prepared struct {
	Party        types.CommonPartyData
	Case         types.Case
	CaseType     types.CaseType
	Task         types.CommonTaskData
	Message      types.CommonMessageData
	Decision     types.Decision
	DecisionType types.DecisionType
}

// Scenario is one member of the closed scenario set. prepare gathers and
// validates data; personalize is a pure function turning it into a struct
// with `notify` tags.
type Scenario struct {
	kind        Kind
	description string
	prepare     func(ctx context.Context, d *Deps, ev types.Event, res Resolution) (Prepared, error)
	personalize func(p Prepared) any
}

// Kind returns the scenario tag.
func (s Scenario) Kind() Kind { return s.kind }

// Description returns the human-readable scenario name used in results and
// contact moments.
func (s Scenario) Description() string { return s.description }

// Personalization renders the prepared data into a fresh placeholder map.
func (s Scenario) Personalization(p Prepared) map[string]any {
	return notify.Personalize(s.personalize(p))
}

// allowed reports whether identification is on the list. A "*" entry allows
// every identification; an empty list allows none.
func allowed(list []string, identification string) bool {
	for _, entry := range list {
		entry = strings.TrimSpace(entry)
		if entry == "*" || strings.EqualFold(entry, identification) {
			return true
		}
	}
	return false
}

// checkCaseType applies the two business validations every case-bound
// scenario shares: the case type must be whitelisted for the scenario and
// must have notifications enabled.
func checkCaseType(k Kind, list []string, ct types.CaseType) error {
	if !allowed(list, ct.Identification) {
		return types.NewAppErrorWithDetails(types.ErrCodeAbortNotWhitelisted,
			"case type "+ct.Identification+" is not whitelisted for "+k.String(), nil,
			map[string]any{"caseType": ct.Identification})
	}
	if !ct.IsNotificationExpected {
		return types.NewAppErrorWithDetails(types.ErrCodeAbortNotificationDisabled,
			"notifications are disabled for case type "+ct.Identification, nil,
			map[string]any{"caseType": ct.Identification})
	}
	return nil
}

func notImplementedScenario() Scenario {
	return Scenario{
		kind:        NotImplemented,
		description: "Scenario niet geïmplementeerd",
		prepare: func(context.Context, *Deps, types.Event, Resolution) (Prepared, error) {
			return Prepared{}, types.NewAppError(types.ErrCodeAbortScenarioNotImplemented,
				"no scenario handles this notification", nil)
		},
		personalize: func(Prepared) any { return nil },
	}
}
