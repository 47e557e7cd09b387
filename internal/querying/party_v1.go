package querying

import (
	"context"
	"net/url"
	"strings"

	"casenotify/internal/external"
	"casenotify/internal/types"
)

const klantenPath = "/klanten/api/v1/klanten"

// partyV1 reads parties from the legacy flat "klanten" schema.
type partyV1 struct {
	api external.Registry
}

// NewPartyLookupV1 returns a PartyLookup for the legacy party registry.
func NewPartyLookupV1(api external.Registry) PartyLookup {
	return &partyV1{api: api}
}

type klantResponse struct {
	URL                   string `json:"url"`
	Voornaam              string `json:"voornaam"`
	VoorvoegselAchternaam string `json:"voorvoegselAchternaam"`
	Achternaam            string `json:"achternaam"`
	Bedrijfsnaam          string `json:"bedrijfsnaam"`
	Emailadres            string `json:"emailadres"`
	Telefoonnummer        string `json:"telefoonnummer"`
	Voorkeurskanaal       string `json:"voorkeurskanaal"`
}

// GetParty looks the party up by BSN or KvK number. The legacy schema has no
// case-specific addresses, so caseIdentification is ignored.
func (p *partyV1) GetParty(ctx context.Context, id types.Identification, _ string) (types.CommonPartyData, error) {
	params := url.Values{}
	switch id.Type {
	case types.IdentificationBSN:
		params.Set("subjectNatuurlijkPersoon__inpBsn", id.Value)
	case types.IdentificationKVK:
		params.Set("subjectNietNatuurlijkPersoon__innNnpId", id.Value)
	default:
		return types.CommonPartyData{}, types.NewAppError(types.ErrCodeAbortUnsupportedIdentity,
			"unsupported identification type "+string(id.Type), nil)
	}

	var pg page[klantResponse]
	if err := p.api.GetJSON(ctx, withQuery(klantenPath, params), &pg); err != nil {
		return types.CommonPartyData{}, err
	}
	k, err := first(pg, types.ErrCodeNotFoundParty, "party")
	if err != nil {
		return types.CommonPartyData{}, err
	}

	name := k.Voornaam
	if name == "" {
		name = k.Bedrijfsnaam
	}

	party := types.NewCommonPartyData(
		lastSegment(k.URL),
		name,
		k.VoorvoegselAchternaam,
		k.Achternaam,
		channelV1(k),
		k.Emailadres,
		k.Telefoonnummer,
	)
	party.URL = k.URL
	return party, nil
}

// channelV1 maps the preferred channel. When none is recorded it is inferred
// from the contact details, email first.
func channelV1(k klantResponse) types.DistributionChannel {
	switch strings.ToLower(strings.TrimSpace(k.Voorkeurskanaal)) {
	case "email", "e-mail":
		return types.DistributionEmail
	case "sms", "telefoon", "telefoonnummer":
		return types.DistributionSMS
	}
	switch {
	case strings.TrimSpace(k.Emailadres) != "":
		return types.DistributionEmail
	case strings.TrimSpace(k.Telefoonnummer) != "":
		return types.DistributionSMS
	default:
		return types.DistributionUnknown
	}
}

// lastSegment returns the last path segment of a resource URL.
func lastSegment(resourceURL string) string {
	trimmed := strings.TrimSuffix(resourceURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
