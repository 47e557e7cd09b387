package querying

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casenotify/internal/types"
)

const taskV1Body = `{
	"url": "https://objecten.example.nl/api/v2/objects/t1",
	"record": {"typeVersion": 1, "data": {
		"titel": "Upload uw documenten",
		"status": "open",
		"verloopdatum": "2023-11-01T12:00:00Z",
		"identificatie": {"type": "bsn", "value": "999993653"},
		"zaak": "https://oz.example.nl/zaken/api/v1/zaken/` + testCaseUUID + `"
	}}
}`

const taskV2Body = `{
	"url": "https://objecten.example.nl/api/v2/objects/t1",
	"record": {"typeVersion": 2, "data": {
		"titel": "Upload uw documenten",
		"status": "open",
		"verloopdatum": "2023-11-01T12:00:00Z",
		"identificatie": {"type": "bsn", "value": "999993653"},
		"koppeling": {"registratie": "zaak", "uuid": "` + testCaseUUID + `"}
	}}
}`

func TestTaskLookup_V1AndV2ProduceEqualTasks(t *testing.T) {
	v1api, _ := newTestRegistry(t, map[string]http.HandlerFunc{
		"/api/v2/objects/t1": respond(http.StatusOK, taskV1Body),
	})
	v2api, _ := newTestRegistry(t, map[string]http.HandlerFunc{
		"/api/v2/objects/t1": respond(http.StatusOK, taskV2Body),
	})

	t1, err := NewTaskLookupV1(v1api).GetTask(context.Background(), "/api/v2/objects/t1")
	require.NoError(t, err)
	t2, err := NewTaskLookupV2(v2api, "https://oz.example.nl/", "{domain}/zaken/api/v1/zaken/{uuid}").
		GetTask(context.Background(), "/api/v2/objects/t1")
	require.NoError(t, err)

	assert.Equal(t, t1, t2)
	assert.Equal(t, "https://oz.example.nl/zaken/api/v1/zaken/"+testCaseUUID, t1.CaseURL)
	assert.Equal(t, testCaseUUID, t1.CaseID)
	assert.Equal(t, types.TaskOpen, t1.Status)
	assert.Equal(t, types.Identification{Type: types.IdentificationBSN, Value: "999993653"}, t1.Identification)
	assert.Equal(t, time.Date(2023, 11, 1, 12, 0, 0, 0, time.UTC), t1.ExpirationDate)
}

func TestTaskLookup_V2RejectsNonCaseLink(t *testing.T) {
	api, _ := newTestRegistry(t, map[string]http.HandlerFunc{
		"/api/v2/objects/t1": respond(http.StatusOK, `{"record": {"data": {"titel": "x", "status": "open", "koppeling": {"registratie": "product", "uuid": "`+testCaseUUID+`"}}}}`),
	})

	_, err := NewTaskLookupV2(api, "https://oz.example.nl", "{domain}/zaken/api/v1/zaken/{uuid}").
		GetTask(context.Background(), "/api/v2/objects/t1")
	assert.Equal(t, types.ErrCodeNotFoundCase, errCode(t, err))
}

func TestTaskLookup_MissingObject(t *testing.T) {
	api, _ := newTestRegistry(t, map[string]http.HandlerFunc{
		"/api/v2/objects/": respond(http.StatusNotFound, `{"detail":"Not found."}`),
	})

	_, err := NewTaskLookupV1(api).GetTask(context.Background(), "/api/v2/objects/t9")
	assert.Equal(t, types.ErrCodeNotFoundTask, errCode(t, err))
}

func TestTaskLookup_RecordDataMismatch(t *testing.T) {
	api, _ := newTestRegistry(t, map[string]http.HandlerFunc{
		"/api/v2/objects/t1": respond(http.StatusOK, `{"record": {"data": {"titel": 12}}}`),
	})

	_, err := NewTaskLookupV1(api).GetTask(context.Background(), "/api/v2/objects/t1")
	assert.Equal(t, types.ErrCodeDeserializationFailure, errCode(t, err))
}

func TestMessageLookup(t *testing.T) {
	api, _ := newTestRegistry(t, map[string]http.HandlerFunc{
		"/api/v2/objects/m1": respond(http.StatusOK, `{"record": {"data": {
			"onderwerp": "Nieuw bericht",
			"berichtTekst": "Er staat een bericht voor u klaar.",
			"publicatiedatum": "2023-10-05T08:30:00Z",
			"handelingsperspectief": "informatie verstrekken",
			"identificatie": {"type": "BSN", "value": "999993653"}
		}}}`),
	})

	m, err := NewMessageLookup(api).GetMessage(context.Background(), "/api/v2/objects/m1")
	require.NoError(t, err)

	assert.Equal(t, "Nieuw bericht", m.Subject)
	assert.Equal(t, "informatie verstrekken", m.ActionPerspective)
	assert.Equal(t, types.IdentificationBSN, m.Identification.Type)
	assert.Equal(t, 2023, m.PublicationDate.Year())
}
