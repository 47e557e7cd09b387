package querying

import (
	"context"
	"time"

	"github.com/google/uuid"

	"casenotify/internal/external"
	"casenotify/internal/types"
)

const (
	contactMomentsPath       = "/contactmomenten/api/v1/contactmomenten"
	objectContactMomentsPath = "/contactmomenten/api/v1/objectcontactmomenten"
	klantContactMomentsPath  = "/contactmomenten/api/v1/klantcontactmomenten"
)

// feedbackV1 registers contact moments in the legacy contact moment registry.
// Links to cases and parties are expressed as URLs.
type feedbackV1 struct {
	api                external.Registry
	cases              external.Registry
	parties            external.Registry
	sourceOrganization string
	employeeID         string
}

// NewFeedbackRegisterV1 returns a FeedbackRegister for the legacy contact
// moment registry. cases and parties are used to rebuild resource URLs from
// the ids carried in notification references.
func NewFeedbackRegisterV1(api, cases, parties external.Registry, sourceOrganization, employeeID string) FeedbackRegister {
	return &feedbackV1{
		api:                api,
		cases:              cases,
		parties:            parties,
		sourceOrganization: sourceOrganization,
		employeeID:         employeeID,
	}
}

type contactMomentV1Request struct {
	Bronorganisatie         string `json:"bronorganisatie"`
	Registratiedatum        string `json:"registratiedatum"`
	Kanaal                  string `json:"kanaal"`
	Onderwerp               string `json:"onderwerp,omitempty"`
	Tekst                   string `json:"tekst"`
	Initiatiefnemer         string `json:"initiatiefnemer"`
	MedewerkerIdentificatie struct {
		Identificatie string `json:"identificatie"`
	} `json:"medewerkerIdentificatie"`
}

type createdResource struct {
	URL  string `json:"url"`
	UUID string `json:"uuid"`
}

func (f *feedbackV1) CreateContactMoment(ctx context.Context, in ContactMomentInput) (ContactMoment, []byte, error) {
	req := contactMomentV1Request{
		Bronorganisatie:  f.sourceOrganization,
		Registratiedatum: in.At.UTC().Format(time.RFC3339),
		Kanaal:           string(in.Method),
		Onderwerp:        in.Subject,
		Tekst:            in.Message,
		Initiatiefnemer:  "gemeente",
	}
	req.MedewerkerIdentificatie.Identificatie = f.employeeID

	var out createdResource
	raw, err := f.api.PostJSON(ctx, contactMomentsPath, req, &out)
	if err != nil {
		return ContactMoment{}, raw, err
	}
	return ContactMoment{URL: out.URL, ID: lastSegment(out.URL)}, raw, nil
}

func (f *feedbackV1) LinkCaseToContactMoment(ctx context.Context, cm ContactMoment, caseID string) ([]byte, error) {
	id, err := uuid.Parse(caseID)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidReference, "case id "+caseID+" is not a UUID", err)
	}

	body := map[string]string{
		"contactmoment": cm.URL,
		"object":        caseURLFromID(f.cases, id),
		"objectType":    "zaak",
	}
	return f.api.PostJSON(ctx, objectContactMomentsPath, body, nil)
}

func (f *feedbackV1) LinkPartyToContactMoment(ctx context.Context, cm ContactMoment, party PartyRef) ([]byte, error) {
	klant := party.URL
	if klant == "" {
		if party.ID == "" {
			return nil, types.NewAppError(types.ErrCodeValidationMissingField, "party is required to link a contact moment", nil)
		}
		klant = f.parties.Resolve(klantenPath + "/" + party.ID)
	}

	body := map[string]string{
		"contactmoment": cm.URL,
		"klant":         klant,
		"rol":           "gesprekspartner",
	}
	return f.api.PostJSON(ctx, klantContactMomentsPath, body, nil)
}
