package scenario

import (
	"context"

	"casenotify/internal/types"
)

// Resolution is the outcome of classifying an event: the scenario to run
// plus the data the resolver already fetched, so the scenario does not fetch
// it again.
type Resolution struct {
	Kind     Kind
	Scenario Scenario
	Statuses types.CaseStatuses
	// CaseType is nil when the resolver did not need it.
	CaseType *types.CaseType
}

func resolved(k Kind) Resolution {
	return Resolution{Kind: k, Scenario: For(k)}
}

// Resolve classifies ev into exactly one scenario. Events no scenario
// handles resolve to NotImplemented without error. An object event with an
// unknown object type fails with abort_unknown_object_type.
func Resolve(ctx context.Context, data DataSource, objects ObjectTypes, ev types.Event) (Resolution, error) {
	if ev.Action != types.ActionCreate {
		return resolved(NotImplemented), nil
	}

	switch {
	case ev.Channel == types.ChannelCases && ev.Resource == types.ResourceStatus:
		statuses, err := data.GetCaseStatuses(ctx, ev.MainObject)
		if err != nil {
			return Resolution{}, err
		}
		if statuses.WasNeverUpdated() {
			res := resolved(CaseCreated)
			res.Statuses = statuses
			return res, nil
		}

		caseType, err := data.GetLastCaseType(ctx, statuses)
		if err != nil {
			return Resolution{}, err
		}
		k := CaseStatusUpdated
		if caseType.IsFinalStatus {
			k = CaseClosed
		}
		res := resolved(k)
		res.Statuses = statuses
		res.CaseType = &caseType
		return res, nil

	case ev.Channel == types.ChannelObjects && ev.Resource == types.ResourceObject:
		id, ok := ev.ObjectTypeID()
		switch {
		case ok && id == objects.Task:
			return resolved(TaskAssigned), nil
		case ok && id == objects.Message:
			return resolved(MessageReceived), nil
		default:
			return Resolution{}, types.NewAppErrorWithDetails(types.ErrCodeAbortUnknownObjectType,
				"object type is neither a task nor a message", nil,
				map[string]any{"objectType": ev.Attributes.ObjectType})
		}

	case ev.Channel == types.ChannelDecisions && ev.Resource == types.ResourceDecision:
		return resolved(DecisionMade), nil
	}

	return resolved(NotImplemented), nil
}
