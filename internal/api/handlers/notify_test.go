package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casenotify/internal/notify"
	"casenotify/internal/types"
)

const previewTemplateID = "4f5ee1c3-8c9a-4b2a-9a40-5d3e2b8f9a10"

type mockPreviewer struct {
	mock.Mock
}

func (m *mockPreviewer) PreviewTemplate(ctx context.Context, templateID string, personalization map[string]any) notify.Result {
	args := m.Called(ctx, templateID, personalization)
	return args.Get(0).(notify.Result)
}

func newNotifyRouter(p ReceiptProcessor, pv TemplatePreviewer) *chi.Mux {
	r := chi.NewRouter()
	NewNotifyHandler(p, pv, nil, discardLogger()).RegisterRoutes(r)
	return r
}

func TestNotifyHandler_Confirm(t *testing.T) {
	p := new(mockProcessor)
	body := `{"id":"n-1","reference":"abc","status":"delivered"}`
	p.On("HandleDeliveryReceipt", mock.Anything, []byte(body)).
		Return(types.Success("Notificatie afgeleverd", "")).Once()

	rec := httptest.NewRecorder()
	newNotifyRouter(p, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notify/confirm", strings.NewReader(body)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	p.AssertExpectations(t)
}

func TestNotifyHandler_PreviewNotMountedWithoutPreviewer(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test/notify/preview", strings.NewReader(`{}`))
	newNotifyRouter(new(mockProcessor), nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotifyHandler_Preview(t *testing.T) {
	pv := new(mockPreviewer)
	pv.On("PreviewTemplate", mock.Anything, previewTemplateID, map[string]any{"zaak.identificatie": "ZAAK-1"}).
		Return(notify.Result{IsSuccess: true, Subject: "Uw zaak", Content: "Zaak ZAAK-1 is aangemaakt"}).Once()

	body := `{"templateId":"` + previewTemplateID + `","personalization":{"zaak.identificatie":"ZAAK-1"}}`
	rec := httptest.NewRecorder()
	newNotifyRouter(new(mockProcessor), pv).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/test/notify/preview", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Uw zaak", resp.Subject)
	assert.Equal(t, "Zaak ZAAK-1 is aangemaakt", resp.Body)
	pv.AssertExpectations(t)
}

func TestNotifyHandler_PreviewValidation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode types.ErrorCode
	}{
		{name: "missing template", body: `{"personalization":{}}`, wantCode: types.ErrCodeValidationMissingField},
		{name: "template not a uuid", body: `{"templateId":"abc"}`, wantCode: types.ErrCodeValidationMissingField},
		{name: "unknown field", body: `{"templateId":"` + previewTemplateID + `","extra":1}`, wantCode: types.ErrCodeValidationInvalidJSON},
		{name: "malformed", body: `{"templateId":`, wantCode: types.ErrCodeValidationInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pv := new(mockPreviewer)
			rec := httptest.NewRecorder()
			newNotifyRouter(new(mockProcessor), pv).ServeHTTP(rec,
				httptest.NewRequest(http.MethodPost, "/test/notify/preview", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, string(tt.wantCode), decodeEnvelope(t, rec).Details.ErrorCode)
			pv.AssertNotCalled(t, "PreviewTemplate", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestNotifyHandler_PreviewProviderFailure(t *testing.T) {
	pv := new(mockPreviewer)
	pv.On("PreviewTemplate", mock.Anything, previewTemplateID, map[string]any{}).
		Return(notify.Result{Error: "Template not found", Code: types.ErrCodeUpstreamNotify, Response: `{"status_code":400}`}).Once()

	body := `{"templateId":"` + previewTemplateID + `"}`
	rec := httptest.NewRecorder()
	newNotifyRouter(new(mockProcessor), pv).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/test/notify/preview", strings.NewReader(body)))

	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, "Template not found", env.Details.Message)
	assert.Equal(t, []string{`{"status_code":400}`}, env.Details.Cases)
}
