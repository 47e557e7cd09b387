package types

import "strings"

// DistributionChannel is the party's preferred way of being contacted.
type DistributionChannel string

const (
	DistributionEmail   DistributionChannel = "email"
	DistributionSMS     DistributionChannel = "sms"
	DistributionUnknown DistributionChannel = "unknown"
)

// NotifyMethod is the delivery method used for one notification.
type NotifyMethod string

const (
	MethodEmail NotifyMethod = "email"
	MethodSMS   NotifyMethod = "sms"
)

// CommonPartyData is the unified representation of a citizen or organization
// regardless of the party registry schema it came from. Exactly one of
// EmailAddress and TelephoneNumber is set, selected by DistributionChannel.
type CommonPartyData struct {
	URL                 string
	ID                  string
	Name                string
	SurnamePrefix       string
	Surname             string
	DistributionChannel DistributionChannel
	EmailAddress        string
	TelephoneNumber     string
}

// NewCommonPartyData builds a party and enforces the single-contact-detail
// invariant: the address that does not match the channel is dropped.
func NewCommonPartyData(id, name, prefix, surname string, channel DistributionChannel, email, phone string) CommonPartyData {
	p := CommonPartyData{
		ID:                  id,
		Name:                strings.TrimSpace(name),
		SurnamePrefix:       strings.TrimSpace(prefix),
		Surname:             strings.TrimSpace(surname),
		DistributionChannel: channel,
	}
	switch channel {
	case DistributionEmail:
		p.EmailAddress = strings.TrimSpace(email)
	case DistributionSMS:
		p.TelephoneNumber = strings.TrimSpace(phone)
	}
	return p
}

// Method returns the notification method matching the distribution channel.
func (p CommonPartyData) Method() (NotifyMethod, error) {
	switch {
	case p.DistributionChannel == DistributionEmail && p.EmailAddress != "":
		return MethodEmail, nil
	case p.DistributionChannel == DistributionSMS && p.TelephoneNumber != "":
		return MethodSMS, nil
	default:
		return "", NewAppError(ErrCodeAbortNoContactDetails,
			"party has no usable contact details for distribution channel "+string(p.DistributionChannel), nil)
	}
}

// ContactDetails returns the address used for the party's distribution channel.
func (p CommonPartyData) ContactDetails() string {
	if p.DistributionChannel == DistributionSMS {
		return p.TelephoneNumber
	}
	return p.EmailAddress
}

// FullSurname joins the surname prefix and surname ("van der" + "Berg").
func (p CommonPartyData) FullSurname() string {
	return strings.TrimSpace(p.SurnamePrefix + " " + p.Surname)
}
