// Package billing provides Stripe billing integration for professional
// subscriptions.
package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	billingportalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Metadata keys attached to customers, checkout sessions and subscriptions.
// Webhook translation reads them back to find the professional and plan.
const (
	MetadataProfessionalID = "professional_id"
	MetadataPlanID         = "plan_id"
)

// Service defines the interface for billing operations.
type Service interface {
	// CreateCustomer creates a new Stripe customer for a professional.
	CreateCustomer(email, name string, professionalID uuid.UUID) (string, error)

	// CreateCheckoutSession creates a Stripe Checkout session for subscribing.
	// Returns the checkout URL to redirect the professional to.
	CreateCheckoutSession(params CheckoutParams) (string, error)

	// CreatePortalSession creates a Stripe Customer Portal session.
	// Returns the portal URL to redirect the professional to.
	CreatePortalSession(customerID, returnURL string) (string, error)

	// VerifyWebhookSignature verifies the Stripe webhook signature and returns the event.
	VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error)
}

// CheckoutParams describes a subscription checkout.
type CheckoutParams struct {
	CustomerID     string
	PriceID        string
	ProfessionalID uuid.UUID
	PlanID         uuid.UUID
	SuccessURL     string
	CancelURL      string
}

// stripeService is the concrete implementation of Service.
type stripeService struct {
	webhookSecret string
}

// NewStripeService creates a new Stripe billing service.
//
// The secretKey is used to authenticate Stripe API calls.
// The webhookSecret is used to verify incoming webhook signatures.
func NewStripeService(secretKey, webhookSecret string) Service {
	stripe.Key = secretKey

	return &stripeService{
		webhookSecret: webhookSecret,
	}
}

func (s *stripeService) CreateCustomer(email, name string, professionalID uuid.UUID) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.AddMetadata(MetadataProfessionalID, professionalID.String())

	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	return c.ID, nil
}

func (s *stripeService) CreateCheckoutSession(p CheckoutParams) (string, error) {
	metadata := map[string]string{
		MetadataProfessionalID: p.ProfessionalID.String(),
		MetadataPlanID:         p.PlanID.String(),
	}

	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(p.CustomerID),
		ClientReferenceID: stripe.String(p.ProfessionalID.String()),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		// Subscription metadata is copied onto every invoice as
		// subscription_details.metadata.
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (s *stripeService) CreatePortalSession(customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	sess, err := billingportalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create portal session: %w", err)
	}
	return sess.URL, nil
}

func (s *stripeService) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("stripe webhook signature verification failed: %w", err)
	}
	return event, nil
}
