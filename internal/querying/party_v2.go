package querying

import (
	"context"
	"net/url"
	"strings"

	"casenotify/internal/external"
	"casenotify/internal/types"
)

const partijenPath = "/klantinteracties/api/v1/partijen"

// Digital address kinds in the relational party schema.
const (
	addressEmail = "email"
	addressPhone = "telefoonnummer"
)

// partyV2 reads parties from the relational "partijen" schema, expanding
// their digital addresses in the same request.
type partyV2 struct {
	api external.Registry
}

// NewPartyLookupV2 returns a PartyLookup for the relational party registry.
func NewPartyLookupV2(api external.Registry) PartyLookup {
	return &partyV2{api: api}
}

type digitalAddress struct {
	UUID               string `json:"uuid"`
	URL                string `json:"url"`
	Adres              string `json:"adres"`
	SoortDigitaalAdres string `json:"soortDigitaalAdres"`
	Omschrijving       string `json:"omschrijving"`
}

type partijResponse struct {
	URL                    string `json:"url"`
	UUID                   string `json:"uuid"`
	SoortPartij            string `json:"soortPartij"`
	VoorkeursDigitaalAdres *struct {
		UUID string `json:"uuid"`
	} `json:"voorkeursDigitaalAdres"`
	PartijIdentificatie struct {
		Naam        string `json:"naam"`
		Contactnaam struct {
			Voornaam              string `json:"voornaam"`
			VoorvoegselAchternaam string `json:"voorvoegselAchternaam"`
			Achternaam            string `json:"achternaam"`
		} `json:"contactnaam"`
	} `json:"partijIdentificatie"`
	Expand struct {
		DigitaleAdressen []digitalAddress `json:"digitaleAdressen"`
	} `json:"_expand"`
}

func (p *partyV2) GetParty(ctx context.Context, id types.Identification, caseIdentification string) (types.CommonPartyData, error) {
	params := url.Values{"expand": {"digitaleAdressen"}}
	switch id.Type {
	case types.IdentificationBSN:
		params.Set("partijIdentificator__codeSoortObjectId", "bsn")
		params.Set("soortPartij", "persoon")
	case types.IdentificationKVK:
		params.Set("partijIdentificator__codeSoortObjectId", "kvk_nummer")
		params.Set("soortPartij", "organisatie")
	default:
		return types.CommonPartyData{}, types.NewAppError(types.ErrCodeAbortUnsupportedIdentity,
			"unsupported identification type "+string(id.Type), nil)
	}
	params.Set("partijIdentificator__objectId", id.Value)

	var pg page[partijResponse]
	if err := p.api.GetJSON(ctx, withQuery(partijenPath, params), &pg); err != nil {
		return types.CommonPartyData{}, err
	}
	partij, err := first(pg, types.ErrCodeNotFoundParty, "party")
	if err != nil {
		return types.CommonPartyData{}, err
	}

	preferred := ""
	if partij.VoorkeursDigitaalAdres != nil {
		preferred = partij.VoorkeursDigitaalAdres.UUID
	}
	address, found := selectAddress(partij.Expand.DigitaleAdressen, caseIdentification, preferred)

	channel := types.DistributionUnknown
	var email, phone string
	if found {
		switch address.SoortDigitaalAdres {
		case addressEmail:
			channel, email = types.DistributionEmail, address.Adres
		case addressPhone:
			channel, phone = types.DistributionSMS, address.Adres
		}
	}

	contact := partij.PartijIdentificatie.Contactnaam
	name := contact.Voornaam
	if name == "" {
		name = partij.PartijIdentificatie.Naam
	}

	partyID := partij.UUID
	if partyID == "" {
		partyID = lastSegment(partij.URL)
	}

	party := types.NewCommonPartyData(partyID, name, contact.VoorvoegselAchternaam, contact.Achternaam, channel, email, phone)
	party.URL = partij.URL
	return party, nil
}

// selectAddress picks the digital address to notify, in priority order:
//  1. the address whose description equals the case identification
//  2. the preferred address
//  3. the first email address
//  4. the first phone number
//
// Addresses of other kinds are never selected.
func selectAddress(addresses []digitalAddress, caseIdentification, preferredUUID string) (digitalAddress, bool) {
	usable := make([]digitalAddress, 0, len(addresses))
	for _, a := range addresses {
		if strings.TrimSpace(a.Adres) == "" {
			continue
		}
		if a.SoortDigitaalAdres == addressEmail || a.SoortDigitaalAdres == addressPhone {
			usable = append(usable, a)
		}
	}

	if caseIdentification != "" {
		for _, a := range usable {
			if strings.EqualFold(strings.TrimSpace(a.Omschrijving), caseIdentification) {
				return a, true
			}
		}
	}
	if preferredUUID != "" {
		for _, a := range usable {
			if a.UUID == preferredUUID {
				return a, true
			}
		}
	}
	for _, kind := range []string{addressEmail, addressPhone} {
		for _, a := range usable {
			if a.SoortDigitaalAdres == kind {
				return a, true
			}
		}
	}
	return digitalAddress{}, false
}
