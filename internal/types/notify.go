package types

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/klauspost/compress/zstd"
)

// UnavailableValue is rendered for a template placeholder whose value is unknown.
const UnavailableValue = "unavailable"

// NotifyData is the fully prepared payload for the notification provider.
type NotifyData struct {
	Method          NotifyMethod
	ContactDetails  string
	TemplateID      string
	Personalization map[string]any
	Reference       NotifyReference
}

// NotifyReference is the compact back-reference echoed by the provider in
// delivery callbacks, so an outcome can be reported without a server-side
// lookup table.
type NotifyReference struct {
	Event   Event  `json:"event"`
	CaseID  string `json:"caseId,omitempty"`
	PartyID string `json:"partyId"`
}

// Encoded references longer than maxEncodedReferenceLength are rejected
// before decoding, and a decoded reference may not exceed
// maxDecodedReferenceSize bytes.
const (
	maxEncodedReferenceLength = 4 << 10
	maxDecodedReferenceSize   = 64 << 10
)

// zstd encoders and decoders are safe for concurrent EncodeAll/DecodeAll.
var (
	referenceEncoder = mustEncoder()
	referenceDecoder = mustDecoder()
)

func mustEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		panic(fmt.Sprintf("types: creating zstd encoder: %v", err))
	}
	return enc
}

func mustDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(0),
		zstd.WithDecoderMaxMemory(maxDecodedReferenceSize),
	)
	if err != nil {
		panic(fmt.Sprintf("types: creating zstd decoder: %v", err))
	}
	return dec
}

// Encode serializes the reference to JSON, compresses it with zstd and
// encodes the result as unpadded URL-safe base64.
func (r NotifyReference) Encode() (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshaling notify reference: %w", err)
	}
	compressed := referenceEncoder.EncodeAll(raw, make([]byte, 0, len(raw)))
	return base64.RawURLEncoding.EncodeToString(compressed), nil
}

// DecodeNotifyReference reverses NotifyReference.Encode.
func DecodeNotifyReference(encoded string) (NotifyReference, error) {
	if encoded == "" {
		return NotifyReference{}, NewAppError(ErrCodeValidationInvalidReference, "reference is empty", nil)
	}
	if len(encoded) > maxEncodedReferenceLength {
		return NotifyReference{}, NewAppError(ErrCodeValidationInvalidReference, "reference is too long", nil)
	}

	compressed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return NotifyReference{}, NewAppError(ErrCodeValidationInvalidReference, "reference is not valid base64", err)
	}

	raw, err := referenceDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return NotifyReference{}, NewAppError(ErrCodeValidationInvalidReference, "reference could not be decompressed", err)
	}

	var ref NotifyReference
	if err := json.Unmarshal(raw, &ref); err != nil {
		return NotifyReference{}, NewAppError(ErrCodeValidationInvalidReference, "reference is not a valid JSON object", err)
	}
	if ref.PartyID == "" {
		return NotifyReference{}, NewAppError(ErrCodeValidationInvalidReference, "reference has no party id", nil)
	}
	return ref, nil
}

// DeliveryStatus is the provider's final delivery state for a notification.
type DeliveryStatus string

const (
	DeliveryDelivered        DeliveryStatus = "delivered"
	DeliveryPermanentFailure DeliveryStatus = "permanent-failure"
	DeliveryTemporaryFailure DeliveryStatus = "temporary-failure"
	DeliveryTechnicalFailure DeliveryStatus = "technical-failure"
)

// IsFailure reports whether the status is one of the provider's failure states.
func (s DeliveryStatus) IsFailure() bool {
	switch s {
	case DeliveryPermanentFailure, DeliveryTemporaryFailure, DeliveryTechnicalFailure:
		return true
	}
	return false
}

// DeliveryReceipt is the body of a provider delivery callback.
type DeliveryReceipt struct {
	ID              string         `json:"id" validate:"required"`
	Reference       string         `json:"reference" validate:"required"`
	Recipient       string         `json:"to" validate:"required"`
	Status          DeliveryStatus `json:"status" validate:"required"`
	CreatedAt       time.Time      `json:"created_at"`
	CompletedAt     *time.Time     `json:"completed_at"`
	SentAt          *time.Time     `json:"sent_at"`
	Type            NotifyMethod   `json:"notification_type" validate:"required,oneof=email sms"`
	TemplateID      string         `json:"template_id"`
	TemplateVersion int            `json:"template_version"`
}

var receiptValidator = validator.New()

// ParseDeliveryReceipt decodes and validates a callback body.
func ParseDeliveryReceipt(body []byte) (DeliveryReceipt, error) {
	var rc DeliveryReceipt
	if err := json.Unmarshal(body, &rc); err != nil {
		return DeliveryReceipt{}, NewAppError(ErrCodeValidationInvalidJSON, "delivery receipt is not valid JSON", err)
	}
	if err := receiptValidator.Struct(rc); err != nil {
		return DeliveryReceipt{}, NewAppError(ErrCodeValidationInvalidReceipt, "delivery receipt is incomplete", err)
	}
	return rc, nil
}
