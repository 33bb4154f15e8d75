package billing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
)

// Stripe event types the subscription lifecycle listens to.
const (
	EventInvoicePaymentSucceeded     = "invoice.payment_succeeded"
	EventInvoicePaymentFailed        = "invoice.payment_failed"
	EventCustomerSubscriptionDeleted = "customer.subscription.deleted"
)

// TranslateEvent converts a verified Stripe event into a payment event.
// The bool is false for event types the subscription lifecycle ignores.
func TranslateEvent(event stripe.Event) (domain.PaymentEvent, bool, error) {
	var (
		pe  domain.PaymentEvent
		err error
	)

	switch string(event.Type) {
	case EventInvoicePaymentSucceeded:
		pe, err = translateInvoice(event, domain.PaymentEventConfirmed)
	case EventInvoicePaymentFailed:
		pe, err = translateInvoice(event, domain.PaymentEventFailed)
	case EventCustomerSubscriptionDeleted:
		pe, err = translateSubscriptionDeleted(event)
	default:
		return domain.PaymentEvent{}, false, nil
	}
	if err != nil {
		return domain.PaymentEvent{}, true, err
	}

	pe.TransactionID = event.ID
	pe.OccurredAt = time.Unix(event.Created, 0).UTC()
	if event.Data != nil {
		pe.Payload = event.Data.Raw
	}
	return pe, true, nil
}

func translateInvoice(event stripe.Event, eventType domain.PaymentEventType) (domain.PaymentEvent, error) {
	if event.Data == nil {
		return domain.PaymentEvent{}, fmt.Errorf("stripe event %s has no data", event.ID)
	}

	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("parse invoice: %w", err)
	}

	pe := domain.PaymentEvent{Type: eventType}
	if invoice.Customer != nil {
		pe.ExternalCustomerRef = invoice.Customer.ID
	}

	metadata := invoice.Metadata
	if invoice.SubscriptionDetails != nil && len(invoice.SubscriptionDetails.Metadata) > 0 {
		metadata = invoice.SubscriptionDetails.Metadata
	}
	if err := applyMetadata(&pe, metadata); err != nil {
		return domain.PaymentEvent{}, err
	}

	if invoice.Lines != nil && len(invoice.Lines.Data) > 0 {
		line := invoice.Lines.Data[0]
		if line.Price != nil {
			pe.PriceID = line.Price.ID
		}
		if line.Period != nil && line.Period.End > 0 {
			pe.PeriodEnd = time.Unix(line.Period.End, 0).UTC()
		}
	}

	return pe, nil
}

func translateSubscriptionDeleted(event stripe.Event) (domain.PaymentEvent, error) {
	if event.Data == nil {
		return domain.PaymentEvent{}, fmt.Errorf("stripe event %s has no data", event.ID)
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("parse subscription: %w", err)
	}

	pe := domain.PaymentEvent{Type: domain.PaymentEventCanceled}
	if sub.Customer != nil {
		pe.ExternalCustomerRef = sub.Customer.ID
	}
	if err := applyMetadata(&pe, sub.Metadata); err != nil {
		return domain.PaymentEvent{}, err
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		pe.PriceID = sub.Items.Data[0].Price.ID
	}

	return pe, nil
}

func applyMetadata(pe *domain.PaymentEvent, metadata map[string]string) error {
	if v := metadata[MetadataProfessionalID]; v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("invalid %s metadata %q: %w", MetadataProfessionalID, v, err)
		}
		pe.ProfessionalID = &id
	}
	if v := metadata[MetadataPlanID]; v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("invalid %s metadata %q: %w", MetadataPlanID, v, err)
		}
		pe.PlanID = &id
	}
	return nil
}
