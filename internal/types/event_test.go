package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validEventJSON = `{
	"actie": "create",
	"kanaal": "zaken",
	"resource": "status",
	"kenmerken": {
		"zaaktype": "https://openzaak.local/catalogi/api/v1/zaaktypen/zt1",
		"bronorganisatie": "123456789",
		"vertrouwelijkheidaanduiding": "openbaar"
	},
	"hoofdObject": "https://openzaak.local/zaken/api/v1/zaken/z1",
	"resourceUrl": "https://openzaak.local/zaken/api/v1/statussen/s1",
	"aanmaakdatum": "2023-09-01T08:00:00Z"
}`

func TestParseEvent_Valid(t *testing.T) {
	ev, err := ParseEvent([]byte(validEventJSON))
	require.NoError(t, err)

	assert.Equal(t, ActionCreate, ev.Action)
	assert.Equal(t, ChannelCases, ev.Channel)
	assert.Equal(t, ResourceStatus, ev.Resource)
	assert.Equal(t, "123456789", ev.Attributes.SourceOrganization)
	assert.Empty(t, ev.Unmatched)
	assert.Empty(t, ev.Attributes.Unmatched)

	check, fields := ev.Validate()
	assert.Equal(t, HealthOKValid, check)
	assert.Empty(t, fields)
}

func TestParseEvent_NotJSON(t *testing.T) {
	_, err := ParseEvent([]byte(`{"actie":`))

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrCodeValidationInvalidJSON, appErr.Code)
}

func TestEvent_ValidateMissingFields(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"actie":"create","kanaal":"zaken"}`))
	require.NoError(t, err)

	check, fields := ev.Validate()
	assert.Equal(t, HealthErrorInvalid, check)
	assert.ElementsMatch(t, []string{"Resource", "MainObject", "ResourceURL", "CreatedAt"}, fields)
}

func TestEvent_ValidateUnmatchedKeysAreInconsistent(t *testing.T) {
	body := `{
		"actie": "create",
		"kanaal": "objecten",
		"resource": "object",
		"kenmerken": {"objectType": "https://objecttypen.local/api/v2/objecttypes/x", "extra": 1},
		"hoofdObject": "https://objecten.local/api/v2/objects/o1",
		"resourceUrl": "https://objecten.local/api/v2/objects/o1",
		"aanmaakdatum": "2023-09-01T08:00:00Z",
		"unexpected": true
	}`
	ev, err := ParseEvent([]byte(body))
	require.NoError(t, err)

	check, fields := ev.Validate()
	assert.Equal(t, HealthOKInconsistent, check)
	assert.Equal(t, []string{"kenmerken.extra", "unexpected"}, fields)
}

func TestEvent_ValidateKeysMatchCaseInsensitively(t *testing.T) {
	body := `{
		"Actie": "create",
		"KANAAL": "zaken",
		"resource": "status",
		"kenmerken": {"ZaakType": "https://openzaak.local/catalogi/api/v1/zaaktypen/zt1"},
		"hoofdObject": "https://openzaak.local/zaken/api/v1/zaken/z1",
		"resourceURL": "https://openzaak.local/zaken/api/v1/statussen/s1",
		"aanmaakdatum": "2023-09-01T08:00:00Z"
	}`
	ev, err := ParseEvent([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, ActionCreate, ev.Action)
	assert.Equal(t, ChannelCases, ev.Channel)
	check, fields := ev.Validate()
	assert.Equal(t, HealthOKValid, check)
	assert.Empty(t, fields)
}

func TestEvent_IsPing(t *testing.T) {
	ping := Event{
		Action:      ActionCreate,
		Channel:     "test",
		Resource:    "test",
		MainObject:  PingMainObject,
		ResourceURL: PingResourceURL,
	}
	assert.True(t, ping.IsPing())

	casePing := ping
	casePing.Channel = ChannelCases
	assert.False(t, casePing.IsPing())

	other := ping
	other.MainObject = "https://openzaak.local/zaken/api/v1/zaken/z1"
	assert.False(t, other.IsPing())
}

func TestEvent_ObjectTypeID(t *testing.T) {
	id := uuid.MustParse("0ecfd2a8-65a5-4f6d-bd52-3f0f36a1ab21")

	tests := []struct {
		name   string
		url    string
		wantOK bool
	}{
		{"url", "https://objecttypen.local/api/v2/objecttypes/" + id.String(), true},
		{"trailing slash", "https://objecttypen.local/api/v2/objecttypes/" + id.String() + "/", true},
		{"bare uuid", id.String(), true},
		{"not a uuid", "https://objecttypen.local/api/v2/objecttypes/task", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Event{Attributes: EventAttributes{ObjectType: tt.url}}
			got, ok := ev.ObjectTypeID()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, id, got)
			}
		})
	}
}
