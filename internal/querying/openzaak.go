package querying

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"casenotify/internal/external"
	"casenotify/internal/types"
)

const (
	casesPath    = "/zaken/api/v1/zaken"
	statusesPath = "/zaken/api/v1/statussen"
	rolesPath    = "/zaken/api/v1/rollen"

	roleInitiator = "initiator"
)

// caseRegistry implements CaseLookup and DecisionLookup on the case registry.
// Its schema is not versioned per deployment.
type caseRegistry struct {
	api external.Registry
}

// NewCaseLookup returns a CaseLookup backed by the case registry.
func NewCaseLookup(api external.Registry) CaseLookup {
	return &caseRegistry{api: api}
}

// NewDecisionLookup returns a DecisionLookup backed by the case registry.
func NewDecisionLookup(api external.Registry) DecisionLookup {
	return &caseRegistry{api: api}
}

type zaakResponse struct {
	URL              string  `json:"url"`
	UUID             string  `json:"uuid"`
	Identificatie    string  `json:"identificatie"`
	Omschrijving     string  `json:"omschrijving"`
	Zaaktype         string  `json:"zaaktype"`
	Registratiedatum zgwTime `json:"registratiedatum"`
}

func (c *caseRegistry) GetCase(ctx context.Context, caseURL string) (types.Case, error) {
	var z zaakResponse
	if err := c.api.GetJSON(ctx, caseURL, &z); err != nil {
		return types.Case{}, notFound(err, types.ErrCodeNotFoundCase, "case")
	}

	id := z.UUID
	if id == "" {
		if parsed, ok := types.LastSegmentUUID(z.URL); ok {
			id = parsed.String()
		}
	}

	return types.Case{
		URL:              z.URL,
		ID:               id,
		Identification:   z.Identificatie,
		Name:             z.Omschrijving,
		CaseTypeURL:      z.Zaaktype,
		RegistrationDate: z.Registratiedatum.Time,
	}, nil
}

type statusResponse struct {
	URL               string  `json:"url"`
	Statustype        string  `json:"statustype"`
	DatumStatusGezet  zgwTime `json:"datumStatusGezet"`
	Statustoelichting string  `json:"statustoelichting"`
}

func (c *caseRegistry) GetCaseStatuses(ctx context.Context, caseURL string) (types.CaseStatuses, error) {
	var p page[statusResponse]
	path := withQuery(statusesPath, url.Values{"zaak": {caseURL}})
	if err := c.api.GetJSON(ctx, path, &p); err != nil {
		return nil, err
	}
	if len(p.Results) == 0 {
		return nil, types.NewAppError(types.ErrCodeNotFoundCaseStatus, "case has no statuses", nil)
	}

	statuses := make([]types.CaseStatus, 0, len(p.Results))
	for _, s := range p.Results {
		statuses = append(statuses, types.CaseStatus{
			URL:           s.URL,
			StatusTypeURL: s.Statustype,
			SetAt:         s.DatumStatusGezet.Time,
			Explanation:   s.Statustoelichting,
		})
	}
	return types.SortNewestFirst(statuses), nil
}

type statusTypeResponse struct {
	URL          string `json:"url"`
	Omschrijving string `json:"omschrijving"`
	Zaaktype     string `json:"zaaktype"`
	IsEindstatus bool   `json:"isEindstatus"`
	Informeren   bool   `json:"informeren"`
}

type caseTypeResponse struct {
	URL           string `json:"url"`
	Identificatie string `json:"identificatie"`
	Omschrijving  string `json:"omschrijving"`
}

// GetLastCaseType derives the case type from the newest status: its status
// type carries the final-status and notification flags, and points to the
// case type that carries the identification used by the whitelists.
func (c *caseRegistry) GetLastCaseType(ctx context.Context, statuses types.CaseStatuses) (types.CaseType, error) {
	newest, ok := statuses.Newest()
	if !ok || newest.StatusTypeURL == "" {
		return types.CaseType{}, types.NewAppError(types.ErrCodeNotFoundCaseType, "case has no status to derive a case type from", nil)
	}

	var st statusTypeResponse
	if err := c.api.GetJSON(ctx, newest.StatusTypeURL, &st); err != nil {
		return types.CaseType{}, notFound(err, types.ErrCodeNotFoundCaseType, "status type")
	}

	var ct caseTypeResponse
	if err := c.api.GetJSON(ctx, st.Zaaktype, &ct); err != nil {
		return types.CaseType{}, notFound(err, types.ErrCodeNotFoundCaseType, "case type")
	}

	return types.CaseType{
		Identification:         ct.Identificatie,
		Description:            st.Omschrijving,
		IsFinalStatus:          st.IsEindstatus,
		IsNotificationExpected: st.Informeren,
	}, nil
}

type roleResponse struct {
	BetrokkeneType          string `json:"betrokkeneType"`
	OmschrijvingGeneriek    string `json:"omschrijvingGeneriek"`
	BetrokkeneIdentificatie struct {
		InpBsn    string `json:"inpBsn"`
		InnNnpID  string `json:"innNnpId"`
		KvkNummer string `json:"kvkNummer"`
	} `json:"betrokkeneIdentificatie"`
}

// GetCaseInitiator returns the identification of the citizen or organization
// that initiated the case.
func (c *caseRegistry) GetCaseInitiator(ctx context.Context, caseURL string) (types.Identification, error) {
	var p page[roleResponse]
	path := withQuery(rolesPath, url.Values{
		"zaak":                 {caseURL},
		"omschrijvingGeneriek": {roleInitiator},
	})
	if err := c.api.GetJSON(ctx, path, &p); err != nil {
		return types.Identification{}, err
	}

	role, err := first(p, types.ErrCodeNotFoundInitiator, "case initiator")
	if err != nil {
		return types.Identification{}, err
	}

	ident := role.BetrokkeneIdentificatie
	switch {
	case ident.InpBsn != "":
		return types.Identification{Type: types.IdentificationBSN, Value: ident.InpBsn}, nil
	case ident.KvkNummer != "":
		return types.Identification{Type: types.IdentificationKVK, Value: ident.KvkNummer}, nil
	case ident.InnNnpID != "":
		return types.Identification{Type: types.IdentificationKVK, Value: ident.InnNnpID}, nil
	default:
		return types.Identification{}, types.NewAppError(types.ErrCodeAbortUnsupportedIdentity,
			"case initiator of type "+role.BetrokkeneType+" has no BSN or KvK number", nil)
	}
}

type besluitResponse struct {
	URL           string  `json:"url"`
	Identificatie string  `json:"identificatie"`
	Zaak          string  `json:"zaak"`
	Besluittype   string  `json:"besluittype"`
	Datum         zgwTime `json:"datum"`
	Ingangsdatum  zgwTime `json:"ingangsdatum"`
	Vervaldatum   zgwTime `json:"vervaldatum"`
	Toelichting   string  `json:"toelichting"`
}

func (c *caseRegistry) GetDecision(ctx context.Context, decisionURL string) (types.Decision, error) {
	var b besluitResponse
	if err := c.api.GetJSON(ctx, decisionURL, &b); err != nil {
		return types.Decision{}, notFound(err, types.ErrCodeNotFoundDecision, "decision")
	}
	if b.Zaak == "" {
		return types.Decision{}, types.NewAppError(types.ErrCodeNotFoundCase, "decision is not linked to a case", nil)
	}

	return types.Decision{
		URL:             b.URL,
		Identification:  b.Identificatie,
		CaseURL:         b.Zaak,
		DecisionTypeURL: b.Besluittype,
		Date:            b.Datum.Time,
		EffectiveDate:   b.Ingangsdatum.Time,
		ExpirationDate:  b.Vervaldatum.Time,
		Explanation:     b.Toelichting,
	}, nil
}

type besluittypeResponse struct {
	Omschrijving         string `json:"omschrijving"`
	OmschrijvingGeneriek string `json:"omschrijvingGeneriek"`
	Besluitcategorie     string `json:"besluitcategorie"`
	PublicatieIndicatie  bool   `json:"publicatieIndicatie"`
}

func (c *caseRegistry) GetDecisionType(ctx context.Context, decisionTypeURL string) (types.DecisionType, error) {
	var bt besluittypeResponse
	if err := c.api.GetJSON(ctx, decisionTypeURL, &bt); err != nil {
		return types.DecisionType{}, notFound(err, types.ErrCodeNotFoundDecisionType, "decision type")
	}

	return types.DecisionType{
		Name:                 bt.Omschrijving,
		GenericName:          bt.OmschrijvingGeneriek,
		Category:             bt.Besluitcategorie,
		PublicationIndicated: bt.PublicatieIndicatie,
	}, nil
}

// caseURLFromID rebuilds the canonical URL of a case on the case registry.
func caseURLFromID(api external.Registry, id uuid.UUID) string {
	return api.Resolve(casesPath + "/" + id.String())
}
