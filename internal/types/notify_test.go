package types

import (
	"encoding/base64"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyReference_EncodeDecode(t *testing.T) {
	ref := NotifyReference{
		Event: Event{
			Action:      ActionCreate,
			Channel:     ChannelCases,
			Resource:    ResourceStatus,
			MainObject:  "https://openzaak.local/zaken/api/v1/zaken/z1",
			ResourceURL: "https://openzaak.local/zaken/api/v1/statussen/s1",
			CreatedAt:   time.Date(2023, 9, 1, 8, 0, 0, 0, time.UTC),
		},
		CaseID:  "z1",
		PartyID: "p1",
	}

	encoded, err := ref.Encode()
	require.NoError(t, err)
	assert.NotContains(t, encoded, "=")
	assert.NotContains(t, encoded, "+")

	got, err := DecodeNotifyReference(encoded)
	require.NoError(t, err)
	assert.Equal(t, ref.CaseID, got.CaseID)
	assert.Equal(t, ref.PartyID, got.PartyID)
	assert.Equal(t, ref.Event.MainObject, got.Event.MainObject)
	assert.True(t, ref.Event.CreatedAt.Equal(got.Event.CreatedAt))
}

func TestDecodeNotifyReference_Invalid(t *testing.T) {
	noParty, err := NotifyReference{CaseID: "z1"}.Encode()
	require.NoError(t, err)

	for name, input := range map[string]string{
		"empty":         "",
		"not base64":    "%%%",
		"not zstd":      "aGVsbG8",
		"missing party": noParty,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeNotifyReference(input)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, ErrCodeValidationInvalidReference, appErr.Code)
		})
	}
}

func TestDecodeNotifyReference_RejectsOversizedInput(t *testing.T) {
	_, err := DecodeNotifyReference(strings.Repeat("A", maxEncodedReferenceLength+1))
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrCodeValidationInvalidReference, appErr.Code)
	assert.Equal(t, "reference is too long", appErr.Message)
}

func TestDecodeNotifyReference_BoundsDecompressedSize(t *testing.T) {
	payload := make([]byte, 16<<20)
	compressed := referenceEncoder.EncodeAll(payload, nil)
	encoded := base64.RawURLEncoding.EncodeToString(compressed)
	require.LessOrEqual(t, len(encoded), maxEncodedReferenceLength)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := DecodeNotifyReference(encoded)
	runtime.ReadMemStats(&after)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrCodeValidationInvalidReference, appErr.Code)
	assert.Equal(t, "reference could not be decompressed", appErr.Message)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(4<<20))
}

func TestParseDeliveryReceipt(t *testing.T) {
	body := `{
		"id": "740e5834-3a29-46b4-9a6f-16142fde533a",
		"reference": "abc",
		"to": "jan@example.nl",
		"status": "permanent-failure",
		"created_at": "2023-09-01T08:00:00Z",
		"notification_type": "email",
		"template_id": "tmpl-1",
		"template_version": 2
	}`

	rc, err := ParseDeliveryReceipt([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, MethodEmail, rc.Type)
	assert.True(t, rc.Status.IsFailure())
	assert.Nil(t, rc.CompletedAt)

	_, err = ParseDeliveryReceipt([]byte(`{"id":"x","notification_type":"letter"}`))
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrCodeValidationInvalidReceipt, appErr.Code)

	_, err = ParseDeliveryReceipt([]byte(`not json`))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrCodeValidationInvalidJSON, appErr.Code)
}

func TestDeliveryStatus_IsFailure(t *testing.T) {
	assert.False(t, DeliveryDelivered.IsFailure())
	assert.True(t, DeliveryTemporaryFailure.IsFailure())
	assert.True(t, DeliveryTechnicalFailure.IsFailure())
}
