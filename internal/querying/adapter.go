package querying

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"casenotify/internal/config"
	"casenotify/internal/external"
	"casenotify/internal/types"
)

// Adapter is the single entry point scenarios use to read and write backend
// data. It holds one implementation per capability, chosen at construction,
// and never branches on schema versions per call.
type Adapter struct {
	Cases     CaseLookup
	Decisions DecisionLookup
	Parties   PartyLookup
	Tasks     TaskLookup
	Messages  MessageLookup
	Feedback  FeedbackRegister

	probes []versionProbe
	logger *slog.Logger
}

// versionProbe names the endpoint whose API-version header reports a
// dependency's version.
type versionProbe struct {
	label string
	api   external.Registry
	path  string
}

// New builds an Adapter for the configured schema versions.
func New(cfg *config.Config, reg *external.ClientRegistry, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &Adapter{
		Cases:     NewCaseLookup(reg.OpenZaak),
		Decisions: NewDecisionLookup(reg.OpenZaak),
		Messages:  NewMessageLookup(reg.Objecten),
		logger:    logger,
	}

	switch cfg.Objecten.Version {
	case config.SchemaV1:
		a.Tasks = NewTaskLookupV1(reg.Objecten)
	case config.SchemaV2:
		a.Tasks = NewTaskLookupV2(reg.Objecten, cfg.OpenZaak.Domain, cfg.Objecten.CaseURLTemplate)
	default:
		return nil, types.NewAppError(types.ErrCodeInternalConfiguration, "unsupported object registry version", nil)
	}

	var feedbackProbe versionProbe
	switch cfg.OpenKlant.Version {
	case config.SchemaV1:
		if reg.ContactMomenten == nil {
			return nil, types.NewAppError(types.ErrCodeInternalConfiguration, "contact moment registry is not configured", nil)
		}
		a.Parties = NewPartyLookupV1(reg.OpenKlant)
		a.Feedback = NewFeedbackRegisterV1(reg.ContactMomenten, reg.OpenZaak, reg.OpenKlant,
			cfg.ContactMomenten.SourceOrganization, cfg.ContactMomenten.EmployeeID)
		feedbackProbe = versionProbe{label: "ContactMomenten", api: reg.ContactMomenten, path: "/contactmomenten/api/v1/"}
	case config.SchemaV2:
		a.Parties = NewPartyLookupV2(reg.OpenKlant)
		a.Feedback = NewFeedbackRegisterV2(reg.OpenKlant)
		feedbackProbe = versionProbe{label: "ContactMomenten", api: reg.OpenKlant, path: "/klantinteracties/api/v1/"}
	default:
		return nil, types.NewAppError(types.ErrCodeInternalConfiguration, "unsupported party registry version", nil)
	}

	partyProbe := "/klantinteracties/api/v1/"
	if cfg.OpenKlant.Version == config.SchemaV1 {
		partyProbe = "/klanten/api/v1/"
	}

	a.probes = []versionProbe{
		{label: "OpenZaak", api: reg.OpenZaak, path: "/zaken/api/v1/"},
		{label: "OpenKlant", api: reg.OpenKlant, path: partyProbe},
		{label: "Objecten", api: reg.Objecten, path: "/api/v2/objects"},
		feedbackProbe,
	}
	return a, nil
}

// GetCase fetches a case by URL.
func (a *Adapter) GetCase(ctx context.Context, caseURL string) (types.Case, error) {
	return a.Cases.GetCase(ctx, caseURL)
}

// GetCaseStatuses fetches the status history of a case, newest first.
func (a *Adapter) GetCaseStatuses(ctx context.Context, caseURL string) (types.CaseStatuses, error) {
	return a.Cases.GetCaseStatuses(ctx, caseURL)
}

// GetLastCaseType derives the case type from the newest status.
func (a *Adapter) GetLastCaseType(ctx context.Context, statuses types.CaseStatuses) (types.CaseType, error) {
	return a.Cases.GetLastCaseType(ctx, statuses)
}

// GetCaseInitiator resolves the party that initiated a case.
func (a *Adapter) GetCaseInitiator(ctx context.Context, c types.Case) (types.CommonPartyData, error) {
	ident, err := a.Cases.GetCaseInitiator(ctx, c.URL)
	if err != nil {
		return types.CommonPartyData{}, err
	}
	return a.Parties.GetParty(ctx, ident, c.Identification)
}

// GetPartyByBSN looks up a citizen by BSN.
func (a *Adapter) GetPartyByBSN(ctx context.Context, bsn, caseIdentification string) (types.CommonPartyData, error) {
	return a.Parties.GetParty(ctx, types.Identification{Type: types.IdentificationBSN, Value: bsn}, caseIdentification)
}

// GetPartyByReference looks up a party by the identification stored on a
// task or message.
func (a *Adapter) GetPartyByReference(ctx context.Context, id types.Identification, caseIdentification string) (types.CommonPartyData, error) {
	return a.Parties.GetParty(ctx, id, caseIdentification)
}

// GetTask fetches a task object.
func (a *Adapter) GetTask(ctx context.Context, objectURL string) (types.CommonTaskData, error) {
	return a.Tasks.GetTask(ctx, objectURL)
}

// GetMessage fetches a message object.
func (a *Adapter) GetMessage(ctx context.Context, objectURL string) (types.CommonMessageData, error) {
	return a.Messages.GetMessage(ctx, objectURL)
}

// GetDecision fetches a decision.
func (a *Adapter) GetDecision(ctx context.Context, decisionURL string) (types.Decision, error) {
	return a.Decisions.GetDecision(ctx, decisionURL)
}

// GetDecisionType fetches a decision type.
func (a *Adapter) GetDecisionType(ctx context.Context, decisionTypeURL string) (types.DecisionType, error) {
	return a.Decisions.GetDecisionType(ctx, decisionTypeURL)
}

// CreateContactMoment registers a sent notification.
func (a *Adapter) CreateContactMoment(ctx context.Context, in ContactMomentInput) (ContactMoment, []byte, error) {
	return a.Feedback.CreateContactMoment(ctx, in)
}

// LinkCaseToContactMoment links a contact moment to a case.
func (a *Adapter) LinkCaseToContactMoment(ctx context.Context, cm ContactMoment, caseID string) ([]byte, error) {
	return a.Feedback.LinkCaseToContactMoment(ctx, cm, caseID)
}

// LinkPartyToContactMoment links a contact moment to a party.
func (a *Adapter) LinkPartyToContactMoment(ctx context.Context, cm ContactMoment, party PartyRef) ([]byte, error) {
	return a.Feedback.LinkPartyToContactMoment(ctx, cm, party)
}

// Version is the API version reported by one dependency. Empty means the
// version could not be resolved.
type Version struct {
	Name    string
	Version string
}

// Versions probes every dependency concurrently. A dependency that fails to
// answer is reported with an empty version; the probe never fails as a whole.
func (a *Adapter) Versions(ctx context.Context) []Version {
	out := make([]Version, len(a.probes))

	// Each goroutine writes only its own element.
	g, gCtx := errgroup.WithContext(ctx)

	for i, probe := range a.probes {
		out[i].Name = probe.label

		g.Go(func() error {
			version, err := probe.api.Version(gCtx, probe.path)
			if err != nil {
				a.logger.WarnContext(ctx, "version probe failed",
					"dependency", probe.label,
					"error", err,
				)
				// A failed probe must not cancel the other probes.
				return nil
			}
			out[i].Version = version
			return nil
		})
	}

	_ = g.Wait()
	return out
}

// Dependencies lists the labels of the probed dependencies in probe order.
func (a *Adapter) Dependencies() []string {
	labels := make([]string, len(a.probes))
	for i, p := range a.probes {
		labels[i] = p.label
	}
	return labels
}

// Check reports whether the named dependency answers its version endpoint.
func (a *Adapter) Check(ctx context.Context, label string) error {
	for _, p := range a.probes {
		if p.label == label {
			_, err := p.api.Version(ctx, p.path)
			return err
		}
	}
	return types.NewAppError(types.ErrCodeInternalConfiguration, "unknown dependency "+label, nil)
}
