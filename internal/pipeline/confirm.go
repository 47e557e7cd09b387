package pipeline

import (
	"context"
	"fmt"

	"casenotify/internal/querying"
	"casenotify/internal/telemetry"
	"casenotify/internal/types"
)

const confirmDescription = "Afleverbevestiging verwerken"

// HandleDeliveryReceipt processes a provider delivery callback. The receipt's
// reference identifies the case and party; the delivery outcome is reported
// as a contact moment whether or not delivery succeeded.
func (p *Processor) HandleDeliveryReceipt(ctx context.Context, body []byte) types.ProcessingResult {
	receipt, err := types.ParseDeliveryReceipt(body)
	if err != nil {
		return types.ResultFromError(confirmDescription, err)
	}

	ref, err := types.DecodeNotifyReference(receipt.Reference)
	if err != nil {
		return types.ResultFromError(confirmDescription, err)
	}

	p.metrics.RecordDelivery(ctx, receipt.Type, receipt.Status)

	logArgs := []any{
		"notification_id", receipt.ID,
		"status", receipt.Status,
		"method", receipt.Type,
		"case_id", ref.CaseID,
		"template_id", receipt.TemplateID,
	}
	subject := "Notificatie afgeleverd"
	if receipt.Status.IsFailure() {
		subject = "Notificatie niet afgeleverd"
		p.logger.ErrorContext(ctx, "notification was not delivered", logArgs...)
	} else {
		p.logger.InfoContext(ctx, "delivery receipt received", logArgs...)
	}

	message := deliveryMessage(receipt.Type, receipt.Status)
	if p.deps.Reporter == nil {
		return types.Success(confirmDescription, message)
	}

	reported := p.deps.Reporter.Report(ctx, telemetry.Report{
		Method:  receipt.Type,
		Subject: subject,
		Message: message,
		CaseID:  ref.CaseID,
		Party:   querying.PartyRef{ID: ref.PartyID},
	})
	if !reported.IsSuccess() {
		return reported
	}
	return types.Success(confirmDescription, message)
}

// deliveryMessage is the Dutch contact moment text for a delivery outcome.
func deliveryMessage(method types.NotifyMethod, status types.DeliveryStatus) string {
	what := "De e-mail"
	if method == types.MethodSMS {
		what = "De sms"
	}

	switch status {
	case types.DeliveryDelivered:
		return what + " is afgeleverd."
	case types.DeliveryPermanentFailure:
		return what + " kon niet worden afgeleverd: het adres of nummer bestaat niet."
	case types.DeliveryTemporaryFailure:
		return what + " kon niet worden afgeleverd: de ontvanger was tijdelijk niet bereikbaar."
	case types.DeliveryTechnicalFailure:
		return what + " kon niet worden afgeleverd door een technische storing."
	default:
		return fmt.Sprintf("%s heeft status %q.", what, status)
	}
}
