package querying

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"casenotify/internal/external"
	"casenotify/internal/types"
)

// objectResponse is the envelope of every object in the object registry; the
// type-specific payload lives in record.data.
type objectResponse struct {
	URL    string `json:"url"`
	UUID   string `json:"uuid"`
	Type   string `json:"type"`
	Record struct {
		Index       int             `json:"index"`
		TypeVersion int             `json:"typeVersion"`
		Data        json.RawMessage `json:"data"`
		StartAt     zgwTime         `json:"startAt"`
	} `json:"record"`
}

// getObjectData fetches an object and decodes its record data into dst.
func getObjectData(ctx context.Context, api external.Registry, objectURL string, code types.ErrorCode, what string, dst any) error {
	var obj objectResponse
	if err := api.GetJSON(ctx, objectURL, &obj); err != nil {
		return notFound(err, code, what)
	}
	if len(obj.Record.Data) == 0 || string(obj.Record.Data) == "null" {
		return types.NewAppError(code, what+" has no record data", nil)
	}
	if err := json.Unmarshal(obj.Record.Data, dst); err != nil {
		return types.NewAppErrorWithDetails(types.ErrCodeDeserializationFailure,
			what+" record data does not match the expected schema", err,
			map[string]any{"response": string(obj.Record.Data)})
	}
	return nil
}

// taskDataCommon holds the record fields shared by both task schemas.
type taskDataCommon struct {
	Titel         string               `json:"titel"`
	Status        string               `json:"status"`
	Verloopdatum  zgwTime              `json:"verloopdatum"`
	Identificatie types.Identification `json:"identificatie"`
}

func (d taskDataCommon) toTask(caseURL string, caseID uuid.UUID) types.CommonTaskData {
	return types.CommonTaskData{
		CaseURL:        caseURL,
		CaseID:         caseID.String(),
		Title:          d.Titel,
		Status:         types.TaskStatus(strings.ToLower(d.Status)),
		ExpirationDate: d.Verloopdatum.Time,
		Identification: types.Identification{
			Type:  types.IdentificationType(strings.ToLower(string(d.Identificatie.Type))),
			Value: d.Identificatie.Value,
		},
	}
}

// taskV1 reads tasks that embed the case URL ("zaak").
type taskV1 struct {
	api external.Registry
}

// NewTaskLookupV1 returns a TaskLookup for the first task schema.
func NewTaskLookupV1(api external.Registry) TaskLookup {
	return &taskV1{api: api}
}

type taskDataV1 struct {
	taskDataCommon
	Zaak string `json:"zaak"`
}

func (t *taskV1) GetTask(ctx context.Context, objectURL string) (types.CommonTaskData, error) {
	var d taskDataV1
	if err := getObjectData(ctx, t.api, objectURL, types.ErrCodeNotFoundTask, "task", &d); err != nil {
		return types.CommonTaskData{}, err
	}

	caseID, ok := types.LastSegmentUUID(d.Zaak)
	if !ok {
		return types.CommonTaskData{}, types.NewAppError(types.ErrCodeDeserializationFailure,
			"task refers to case "+d.Zaak+" which is not a case URL", nil)
	}
	return d.toTask(d.Zaak, caseID), nil
}

// taskV2 reads tasks that reference their case through a "koppeling". The
// case URL is rebuilt from the configured template.
type taskV2 struct {
	api             external.Registry
	caseDomain      string
	caseURLTemplate string
}

// NewTaskLookupV2 returns a TaskLookup for the second task schema. The case
// URL is rendered from caseURLTemplate, replacing {domain} with caseDomain
// and {uuid} with the linked case id.
func NewTaskLookupV2(api external.Registry, caseDomain, caseURLTemplate string) TaskLookup {
	return &taskV2{
		api:             api,
		caseDomain:      strings.TrimSuffix(caseDomain, "/"),
		caseURLTemplate: caseURLTemplate,
	}
}

const registrationCase = "zaak"

type taskDataV2 struct {
	taskDataCommon
	Koppeling struct {
		Registratie string `json:"registratie"`
		UUID        string `json:"uuid"`
	} `json:"koppeling"`
}

func (t *taskV2) GetTask(ctx context.Context, objectURL string) (types.CommonTaskData, error) {
	var d taskDataV2
	if err := getObjectData(ctx, t.api, objectURL, types.ErrCodeNotFoundTask, "task", &d); err != nil {
		return types.CommonTaskData{}, err
	}

	if !strings.EqualFold(d.Koppeling.Registratie, registrationCase) {
		return types.CommonTaskData{}, types.NewAppError(types.ErrCodeNotFoundCase,
			"task is linked to registration "+d.Koppeling.Registratie+" instead of a case", nil)
	}
	caseID, err := uuid.Parse(d.Koppeling.UUID)
	if err != nil {
		return types.CommonTaskData{}, types.NewAppError(types.ErrCodeDeserializationFailure,
			"task is linked to an invalid case id", err)
	}

	caseURL := strings.NewReplacer(
		"{domain}", t.caseDomain,
		"{uuid}", caseID.String(),
	).Replace(t.caseURLTemplate)

	return d.toTask(caseURL, caseID), nil
}

// messageLookup reads inbox messages ("berichten").
type messageLookup struct {
	api external.Registry
}

// NewMessageLookup returns a MessageLookup backed by the object registry.
func NewMessageLookup(api external.Registry) MessageLookup {
	return &messageLookup{api: api}
}

type messageData struct {
	Onderwerp             string               `json:"onderwerp"`
	BerichtTekst          string               `json:"berichtTekst"`
	Publicatiedatum       zgwTime              `json:"publicatiedatum"`
	Handelingsperspectief string               `json:"handelingsperspectief"`
	Identificatie         types.Identification `json:"identificatie"`
}

func (m *messageLookup) GetMessage(ctx context.Context, objectURL string) (types.CommonMessageData, error) {
	var d messageData
	if err := getObjectData(ctx, m.api, objectURL, types.ErrCodeNotFoundMessage, "message", &d); err != nil {
		return types.CommonMessageData{}, err
	}

	return types.CommonMessageData{
		Subject:           d.Onderwerp,
		Body:              d.BerichtTekst,
		ActionPerspective: d.Handelingsperspectief,
		PublicationDate:   d.Publicatiedatum.Time,
		Identification: types.Identification{
			Type:  types.IdentificationType(strings.ToLower(string(d.Identificatie.Type))),
			Value: d.Identificatie.Value,
		},
	}, nil
}
