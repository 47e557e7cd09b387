package scenario

import (
	"context"
	"fmt"

	"casenotify/internal/config"
	"casenotify/internal/types"
)

// caseScenario builds the three status-driven case scenarios. They differ in
// name and whitelist only.
func caseScenario(k Kind, description string, whitelist func(config.WhitelistConfig) []string) Scenario {
	return Scenario{
		kind:        k,
		description: description,
		prepare: func(ctx context.Context, d *Deps, ev types.Event, res Resolution) (Prepared, error) {
			c, err := d.Data.GetCase(ctx, ev.MainObject)
			if err != nil {
				return Prepared{}, err
			}

			caseType, err := resolvedCaseType(ctx, d, c, res)
			if err != nil {
				return Prepared{}, err
			}
			if err := checkCaseType(k, whitelist(d.Whitelist), caseType); err != nil {
				return Prepared{}, err
			}

			party, err := d.Data.GetCaseInitiator(ctx, c)
			if err != nil {
				return Prepared{}, err
			}
			return Prepared{Party: party, Case: c, CaseType: caseType}, nil
		},
		personalize: func(p Prepared) any {
			return CasePersonalization{
				PartyFields: partyFields(p.Party),
				CaseFields:  caseFields(p.Case),
				Status:      p.CaseType.Description,
				FinalStatus: p.CaseType.IsFinalStatus,
			}
		},
	}
}

// resolvedCaseType reuses the case type the resolver already derived, and
// fetches it otherwise.
func resolvedCaseType(ctx context.Context, d *Deps, c types.Case, res Resolution) (types.CaseType, error) {
	if res.CaseType != nil {
		return *res.CaseType, nil
	}

	statuses := res.Statuses
	if len(statuses) == 0 {
		var err error
		statuses, err = d.Data.GetCaseStatuses(ctx, c.URL)
		if err != nil {
			return types.CaseType{}, err
		}
	}
	return d.Data.GetLastCaseType(ctx, statuses)
}

func taskScenario() Scenario {
	return Scenario{
		kind:        TaskAssigned,
		description: "Taak toegewezen",
		prepare: func(ctx context.Context, d *Deps, ev types.Event, res Resolution) (Prepared, error) {
			task, err := d.Data.GetTask(ctx, ev.ResourceURL)
			if err != nil {
				return Prepared{}, err
			}
			if task.Status != types.TaskOpen {
				return Prepared{}, types.NewAppError(types.ErrCodeAbortTaskNotOpen,
					fmt.Sprintf("task has status %q", task.Status), nil)
			}

			c, err := d.Data.GetCase(ctx, task.CaseURL)
			if err != nil {
				return Prepared{}, err
			}
			caseType, err := resolvedCaseType(ctx, d, c, res)
			if err != nil {
				return Prepared{}, err
			}
			if err := checkCaseType(TaskAssigned, d.Whitelist.TaskAssigned, caseType); err != nil {
				return Prepared{}, err
			}

			party, err := d.Data.GetPartyByReference(ctx, task.Identification, c.Identification)
			if err != nil {
				return Prepared{}, err
			}
			return Prepared{Party: party, Case: c, CaseType: caseType, Task: task}, nil
		},
		personalize: func(p Prepared) any {
			return TaskPersonalization{
				PartyFields:    partyFields(p.Party),
				CaseFields:     caseFields(p.Case),
				Title:          p.Task.Title,
				ExpirationDate: p.Task.ExpirationDate,
				HasExpiration:  !p.Task.ExpirationDate.IsZero(),
			}
		},
	}
}

// messageScenario is not bound to a case; its telemetry only links the party.
func messageScenario() Scenario {
	return Scenario{
		kind:        MessageReceived,
		description: "Bericht ontvangen",
		prepare: func(ctx context.Context, d *Deps, ev types.Event, _ Resolution) (Prepared, error) {
			if !d.Whitelist.MessageAllowed {
				return Prepared{}, types.NewAppError(types.ErrCodeAbortNotWhitelisted,
					"message notifications are disabled", nil)
			}

			msg, err := d.Data.GetMessage(ctx, ev.ResourceURL)
			if err != nil {
				return Prepared{}, err
			}
			party, err := d.Data.GetPartyByReference(ctx, msg.Identification, "")
			if err != nil {
				return Prepared{}, err
			}
			return Prepared{Party: party, Message: msg}, nil
		},
		personalize: func(p Prepared) any {
			return MessagePersonalization{
				PartyFields:     partyFields(p.Party),
				Subject:         p.Message.Subject,
				PublicationDate: p.Message.PublicationDate,
				Action:          p.Message.ActionPerspective,
			}
		},
	}
}

func decisionScenario() Scenario {
	return Scenario{
		kind:        DecisionMade,
		description: "Besluit genomen",
		prepare: func(ctx context.Context, d *Deps, ev types.Event, res Resolution) (Prepared, error) {
			decision, err := d.Data.GetDecision(ctx, ev.ResourceURL)
			if err != nil {
				return Prepared{}, err
			}
			decisionType, err := d.Data.GetDecisionType(ctx, decision.DecisionTypeURL)
			if err != nil {
				return Prepared{}, err
			}

			c, err := d.Data.GetCase(ctx, decision.CaseURL)
			if err != nil {
				return Prepared{}, err
			}
			caseType, err := resolvedCaseType(ctx, d, c, res)
			if err != nil {
				return Prepared{}, err
			}
			if err := checkCaseType(DecisionMade, d.Whitelist.DecisionMade, caseType); err != nil {
				return Prepared{}, err
			}

			party, err := d.Data.GetCaseInitiator(ctx, c)
			if err != nil {
				return Prepared{}, err
			}
			return Prepared{
				Party:        party,
				Case:         c,
				CaseType:     caseType,
				Decision:     decision,
				DecisionType: decisionType,
			}, nil
		},
		personalize: func(p Prepared) any {
			return DecisionPersonalization{
				PartyFields:    partyFields(p.Party),
				CaseFields:     caseFields(p.Case),
				Identification: p.Decision.Identification,
				Date:           p.Decision.Date,
				EffectiveDate:  p.Decision.EffectiveDate,
				TypeName:       p.DecisionType.Name,
				Category:       p.DecisionType.Category,
			}
		},
	}
}
