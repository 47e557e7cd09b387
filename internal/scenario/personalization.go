package scenario

import (
	"time"

	"casenotify/internal/types"
)

// PartyFields are the placeholders every template can use to address the
// recipient.
type PartyFields struct {
	Name          string `notify:"klant.voornaam"`
	SurnamePrefix string `notify:"klant.voorvoegselAchternaam"`
	Surname       string `notify:"klant.achternaam"`
}

func partyFields(p types.CommonPartyData) PartyFields {
	return PartyFields{Name: p.Name, SurnamePrefix: p.SurnamePrefix, Surname: p.Surname}
}

// CaseFields are the placeholders describing a case.
type CaseFields struct {
	Identification   string    `notify:"zaak.identificatie"`
	Name             string    `notify:"zaak.omschrijving"`
	RegistrationDate time.Time `notify:"zaak.registratiedatum"`
}

func caseFields(c types.Case) CaseFields {
	return CaseFields{Identification: c.Identification, Name: c.Name, RegistrationDate: c.RegistrationDate}
}

// CasePersonalization feeds the case created, updated and closed templates.
type CasePersonalization struct {
	PartyFields
	CaseFields
	Status      string `notify:"status.omschrijving"`
	FinalStatus bool   `notify:"status.eindstatus"`
}

// TaskPersonalization feeds the task assigned template.
type TaskPersonalization struct {
	PartyFields
	CaseFields
	Title          string    `notify:"taak.titel"`
	ExpirationDate time.Time `notify:"taak.verloopdatum"`
	HasExpiration  bool      `notify:"taak.heeft_verloopdatum"`
}

// MessagePersonalization feeds the message received template.
type MessagePersonalization struct {
	PartyFields
	Subject         string    `notify:"bericht.onderwerp"`
	PublicationDate time.Time `notify:"bericht.datum"`
	Action          string    `notify:"bericht.handelingsperspectief"`
}

// DecisionPersonalization feeds the decision made template.
type DecisionPersonalization struct {
	PartyFields
	CaseFields
	Identification string    `notify:"besluit.identificatie"`
	Date           time.Time `notify:"besluit.datum"`
	EffectiveDate  time.Time `notify:"besluit.ingangsdatum"`
	TypeName       string    `notify:"besluittype.omschrijving"`
	Category       string    `notify:"besluittype.categorie"`
}
