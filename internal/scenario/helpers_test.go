package scenario

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"casenotify/internal/config"
	"casenotify/internal/notify"
	"casenotify/internal/telemetry"
	"casenotify/internal/types"
)

const (
	testCaseURL     = "https://openzaak.local/zaken/api/v1/zaken/5f6a3b2e-1c1d-4c59-9e43-2f0f5b0d7a11"
	testCaseID      = "5f6a3b2e-1c1d-4c59-9e43-2f0f5b0d7a11"
	testStatusURL   = "https://openzaak.local/zaken/api/v1/statussen/1"
	testObjectURL   = "https://objecten.local/api/v2/objects/9c7c6a44-8f0a-4c8f-a0a1-7a1c3a0b4e55"
	testDecisionURL = "https://openzaak.local/besluiten/api/v1/besluiten/b1"
)

var (
	testTaskType    = uuid.MustParse("0ecfd2a8-65a5-4f6d-bd52-3f0f36a1ab21")
	testMessageType = uuid.MustParse("38327774-7023-4f25-9386-acb0c6f10636")
	testUnknownType = uuid.MustParse("d5a8b2f1-3c4e-4a6b-9d7f-1e2f3a4b5c6d")
)

// fakeData is a DataSource serving fixed data and counting calls.
type fakeData struct {
	statuses types.CaseStatuses
	caseType types.CaseType
	party    types.CommonPartyData
	partyErr error
	task     types.CommonTaskData
	message  types.CommonMessageData

	calls map[string]int
}

func newFakeData() *fakeData {
	return &fakeData{
		statuses: types.CaseStatuses{{URL: testStatusURL, SetAt: time.Date(2023, 9, 1, 8, 0, 0, 0, time.UTC)}},
		caseType: types.CaseType{
			Identification:         "ZT-1",
			Description:            "Ontvangen",
			IsNotificationExpected: true,
		},
		party: types.NewCommonPartyData("p1", "Jan", "van", "Dijk", types.DistributionEmail, "jan@example.nl", ""),
		task: types.CommonTaskData{
			CaseURL:        testCaseURL,
			CaseID:         testCaseID,
			Title:          "Lever documenten aan",
			Status:         types.TaskOpen,
			Identification: types.Identification{Type: types.IdentificationBSN, Value: "111222333"},
		},
		message: types.CommonMessageData{
			Subject:        "Nieuw bericht",
			Identification: types.Identification{Type: types.IdentificationBSN, Value: "111222333"},
		},
		calls: map[string]int{},
	}
}

func (f *fakeData) GetCase(_ context.Context, caseURL string) (types.Case, error) {
	f.calls["GetCase"]++
	return types.Case{URL: caseURL, ID: testCaseID, Identification: "ZAAK-2023-1", Name: "Vergunning"}, nil
}

func (f *fakeData) GetCaseStatuses(context.Context, string) (types.CaseStatuses, error) {
	f.calls["GetCaseStatuses"]++
	return f.statuses, nil
}

func (f *fakeData) GetLastCaseType(context.Context, types.CaseStatuses) (types.CaseType, error) {
	f.calls["GetLastCaseType"]++
	return f.caseType, nil
}

func (f *fakeData) GetCaseInitiator(context.Context, types.Case) (types.CommonPartyData, error) {
	f.calls["GetCaseInitiator"]++
	return f.party, f.partyErr
}

func (f *fakeData) GetPartyByReference(context.Context, types.Identification, string) (types.CommonPartyData, error) {
	f.calls["GetPartyByReference"]++
	return f.party, f.partyErr
}

func (f *fakeData) GetTask(context.Context, string) (types.CommonTaskData, error) {
	f.calls["GetTask"]++
	return f.task, nil
}

func (f *fakeData) GetMessage(context.Context, string) (types.CommonMessageData, error) {
	f.calls["GetMessage"]++
	return f.message, nil
}

func (f *fakeData) GetDecision(context.Context, string) (types.Decision, error) {
	f.calls["GetDecision"]++
	return types.Decision{URL: testDecisionURL, CaseURL: testCaseURL, Identification: "BESLUIT-1", DecisionTypeURL: "https://openzaak.local/catalogi/api/v1/besluittypen/bt1"}, nil
}

func (f *fakeData) GetDecisionType(context.Context, string) (types.DecisionType, error) {
	f.calls["GetDecisionType"]++
	return types.DecisionType{Name: "Vergunning verleend"}, nil
}

// mockDispatcher is a testify mock of Dispatcher.
type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Send(ctx context.Context, data types.NotifyData) notify.Result {
	args := m.Called(ctx, data)
	return args.Get(0).(notify.Result)
}

// recordingReporter records reports and returns a fixed result.
type recordingReporter struct {
	reports []telemetry.Report
	result  types.ProcessingResult
}

func (r *recordingReporter) Report(_ context.Context, rp telemetry.Report) types.ProcessingResult {
	r.reports = append(r.reports, rp)
	return r.result
}

func newDeps(data *fakeData, dispatcher Dispatcher, reporter CompletionReporter) *Deps {
	all := []string{"*"}
	return &Deps{
		Data:     data,
		Notify:   dispatcher,
		Reporter: reporter,
		Whitelist: config.WhitelistConfig{
			CaseCreated:       all,
			CaseStatusUpdated: all,
			CaseClosed:        all,
			TaskAssigned:      all,
			DecisionMade:      all,
			MessageAllowed:    true,
		},
		Templates: config.TemplateSet{
			"caseCreated":       {"email": "tmpl-cc-email", "sms": "tmpl-cc-sms"},
			"caseStatusUpdated": {"email": "tmpl-csu-email"},
			"caseClosed":        {"email": "tmpl-ccl-email"},
			"taskAssigned":      {"email": "tmpl-ta-email"},
			"messageReceived":   {"email": "tmpl-mr-email"},
			"decisionMade":      {"email": "tmpl-dm-email"},
		},
		Objects: ObjectTypes{Task: testTaskType, Message: testMessageType},
	}
}

func statusEvent() types.Event {
	return types.Event{
		Action:      types.ActionCreate,
		Channel:     types.ChannelCases,
		Resource:    types.ResourceStatus,
		MainObject:  testCaseURL,
		ResourceURL: testStatusURL,
		CreatedAt:   time.Date(2023, 9, 1, 8, 0, 0, 0, time.UTC),
	}
}

func objectEvent(objectType uuid.UUID) types.Event {
	return types.Event{
		Action:      types.ActionCreate,
		Channel:     types.ChannelObjects,
		Resource:    types.ResourceObject,
		MainObject:  testObjectURL,
		ResourceURL: testObjectURL,
		Attributes:  types.EventAttributes{ObjectType: "https://objecttypen.local/api/v2/objecttypes/" + objectType.String()},
		CreatedAt:   time.Date(2023, 9, 1, 8, 0, 0, 0, time.UTC),
	}
}
