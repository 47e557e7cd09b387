package querying

import (
	"context"
	"time"

	"casenotify/internal/external"
	"casenotify/internal/types"
)

const (
	klantcontactenPath    = "/klantinteracties/api/v1/klantcontacten"
	onderwerpobjectenPath = "/klantinteracties/api/v1/onderwerpobjecten"
	betrokkenenPath       = "/klantinteracties/api/v1/betrokkenen"
)

// feedbackV2 registers customer contacts in the relational party registry.
// Links are expressed as UUID references.
type feedbackV2 struct {
	api external.Registry
}

// NewFeedbackRegisterV2 returns a FeedbackRegister backed by the relational
// party registry.
func NewFeedbackRegisterV2(api external.Registry) FeedbackRegister {
	return &feedbackV2{api: api}
}

type uuidRef struct {
	UUID string `json:"uuid"`
}

type klantcontactRequest struct {
	Kanaal                 string `json:"kanaal"`
	Onderwerp              string `json:"onderwerp"`
	Inhoud                 string `json:"inhoud"`
	IndicatieContactGelukt bool   `json:"indicatieContactGelukt"`
	Taal                   string `json:"taal"`
	Vertrouwelijk          bool   `json:"vertrouwelijk"`
	PlaatsgevondenOp       string `json:"plaatsgevondenOp"`
}

func (f *feedbackV2) CreateContactMoment(ctx context.Context, in ContactMomentInput) (ContactMoment, []byte, error) {
	req := klantcontactRequest{
		Kanaal:                 string(in.Method),
		Onderwerp:              in.Subject,
		Inhoud:                 in.Message,
		IndicatieContactGelukt: true,
		Taal:                   "nld",
		Vertrouwelijk:          false,
		PlaatsgevondenOp:       in.At.UTC().Format(time.RFC3339),
	}

	var out createdResource
	raw, err := f.api.PostJSON(ctx, klantcontactenPath, req, &out)
	if err != nil {
		return ContactMoment{}, raw, err
	}

	id := out.UUID
	if id == "" {
		id = lastSegment(out.URL)
	}
	return ContactMoment{URL: out.URL, ID: id}, raw, nil
}

type onderwerpobjectRequest struct {
	Klantcontact                 uuidRef  `json:"klantcontact"`
	WasKlantcontact              *uuidRef `json:"wasKlantcontact"`
	Onderwerpobjectidentificator struct {
		ObjectID          string `json:"objectId"`
		CodeObjecttype    string `json:"codeObjecttype"`
		CodeRegister      string `json:"codeRegister"`
		CodeSoortObjectID string `json:"codeSoortObjectId"`
	} `json:"onderwerpobjectidentificator"`
}

func (f *feedbackV2) LinkCaseToContactMoment(ctx context.Context, cm ContactMoment, caseID string) ([]byte, error) {
	if caseID == "" {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField, "case id is required to link a contact moment", nil)
	}

	req := onderwerpobjectRequest{Klantcontact: uuidRef{UUID: cm.ID}}
	req.Onderwerpobjectidentificator.ObjectID = caseID
	req.Onderwerpobjectidentificator.CodeObjecttype = "zgw-Zaak"
	req.Onderwerpobjectidentificator.CodeRegister = "openzaak"
	req.Onderwerpobjectidentificator.CodeSoortObjectID = "uuid"

	return f.api.PostJSON(ctx, onderwerpobjectenPath, req, nil)
}

type betrokkeneRequest struct {
	WasPartij       uuidRef `json:"wasPartij"`
	HadKlantcontact uuidRef `json:"hadKlantcontact"`
	Rol             string  `json:"rol"`
	Initiator       bool    `json:"initiator"`
}

func (f *feedbackV2) LinkPartyToContactMoment(ctx context.Context, cm ContactMoment, party PartyRef) ([]byte, error) {
	partyID := party.ID
	if partyID == "" {
		partyID = lastSegment(party.URL)
	}
	if partyID == "" {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField, "party is required to link a contact moment", nil)
	}

	req := betrokkeneRequest{
		WasPartij:       uuidRef{UUID: partyID},
		HadKlantcontact: uuidRef{UUID: cm.ID},
		Rol:             "klant",
		Initiator:       false,
	}
	return f.api.PostJSON(ctx, betrokkenenPath, req, nil)
}
