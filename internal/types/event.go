package types

import (
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// EventAction is the action reported by the case-management system.
type EventAction string

const (
	ActionCreate        EventAction = "create"
	ActionUpdate        EventAction = "update"
	ActionPartialUpdate EventAction = "partial_update"
	ActionDestroy       EventAction = "destroy"
)

// EventChannel is the notification channel ("kanaal") an event was published on.
type EventChannel string

const (
	ChannelCases     EventChannel = "zaken"
	ChannelObjects   EventChannel = "objecten"
	ChannelDecisions EventChannel = "besluiten"
)

// EventResource is the kind of resource an event describes.
type EventResource string

const (
	ResourceCase     EventResource = "zaak"
	ResourceStatus   EventResource = "status"
	ResourceObject   EventResource = "object"
	ResourceDecision EventResource = "besluit"
)

// Ping payload sentinels. The notification routing component sends this
// payload when a subscription is registered or tested.
const (
	PingMainObject  = "http://some.hoofdobject.nl/"
	PingResourceURL = "http://some.resource.url/"
)

// HealthCheck is the validation verdict of a parsed Event.
type HealthCheck string

const (
	HealthOKValid        HealthCheck = "OK_Valid"
	HealthOKInconsistent HealthCheck = "OK_Inconsistent"
	HealthErrorInvalid   HealthCheck = "ERROR_Invalid"
)

// EventAttributes holds the "kenmerken" object of an event. Keys that do not
// map onto a field are preserved in Unmatched.
type EventAttributes struct {
	ObjectType              string `json:"objectType,omitempty"`
	CaseType                string `json:"zaaktype,omitempty"`
	DecisionType            string `json:"besluittype,omitempty"`
	SourceOrganization      string `json:"bronorganisatie,omitempty"`
	ResponsibleOrganization string `json:"verantwoordelijkeOrganisatie,omitempty"`
	Confidentiality         string `json:"vertrouwelijkheidaanduiding,omitempty"`

	Unmatched map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known attributes and keeps every other key.
func (a *EventAttributes) UnmarshalJSON(data []byte) error {
	type plain EventAttributes
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if string(data) != "null" {
		extra, err := unmatchedFields(data, reflect.TypeOf(p))
		if err != nil {
			return err
		}
		p.Unmatched = extra
	}
	*a = EventAttributes(p)
	return nil
}

// Event is a parsed webhook notification. It is immutable once parsed.
type Event struct {
	Action      EventAction     `json:"actie" validate:"required"`
	Channel     EventChannel    `json:"kanaal" validate:"required"`
	Resource    EventResource   `json:"resource" validate:"required"`
	Attributes  EventAttributes `json:"kenmerken"`
	MainObject  string          `json:"hoofdObject" validate:"required"`
	ResourceURL string          `json:"resourceUrl" validate:"required"`
	CreatedAt   time.Time       `json:"aanmaakdatum" validate:"required"`

	Unmatched map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps every other root key.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unmatchedFields(data, reflect.TypeOf(p))
	if err != nil {
		return err
	}
	p.Unmatched = extra
	*e = Event(p)
	return nil
}

// ParseEvent decodes a raw notification body.
func ParseEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, NewAppError(ErrCodeValidationInvalidJSON, "notification body is not a valid event", err)
	}
	return ev, nil
}

// eventValidator is safe for concurrent use and caches struct metadata.
var eventValidator = validator.New()

// Validate checks the event and returns its HealthCheck verdict together with
// the names of the offending fields or keys.
//
// Missing required fields make the event invalid. Unmatched keys at the root
// or inside the attributes only make it inconsistent; processing may continue.
func (e Event) Validate() (HealthCheck, []string) {
	if err := eventValidator.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return HealthErrorInvalid, fields
		}
		return HealthErrorInvalid, []string{err.Error()}
	}

	var unmatched []string
	for k := range e.Unmatched {
		unmatched = append(unmatched, k)
	}
	for k := range e.Attributes.Unmatched {
		unmatched = append(unmatched, "kenmerken."+k)
	}
	if len(unmatched) > 0 {
		sort.Strings(unmatched)
		return HealthOKInconsistent, unmatched
	}
	return HealthOKValid, nil
}

// IsPing reports whether the event is the well-known test payload sent by the
// notification routing component. Pings carry fixed sentinel URLs and a
// channel/resource combination no scenario handles.
func (e Event) IsPing() bool {
	if e.MainObject != PingMainObject || e.ResourceURL != PingResourceURL {
		return false
	}
	switch e.Channel {
	case ChannelCases, ChannelObjects, ChannelDecisions:
		return false
	}
	switch e.Resource {
	case ResourceCase, ResourceStatus, ResourceObject, ResourceDecision:
		return false
	}
	return true
}

// ObjectTypeID extracts the object type UUID from the attributes. The object
// type is published as a URL whose last path segment is the UUID.
func (e Event) ObjectTypeID() (uuid.UUID, bool) {
	return LastSegmentUUID(e.Attributes.ObjectType)
}

// LastSegmentUUID parses the last path segment of a resource URL as a UUID.
func LastSegmentUUID(resourceURL string) (uuid.UUID, bool) {
	trimmed := strings.TrimRight(resourceURL, "/")
	if trimmed == "" {
		return uuid.Nil, false
	}
	idx := strings.LastIndexByte(trimmed, '/')
	id, err := uuid.Parse(trimmed[idx+1:])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
