package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContactMethod is the channel a customer used to reach a professional.
type ContactMethod string

const (
	ContactMethodWhatsApp ContactMethod = "whatsapp"
	ContactMethodForm     ContactMethod = "form"
	ContactMethodPhone    ContactMethod = "phone"
)

// IsValid returns true if the method is a recognized value.
func (m ContactMethod) IsValid() bool {
	switch m {
	case ContactMethodWhatsApp, ContactMethodForm, ContactMethodPhone:
		return true
	}
	return false
}

// ContactEvent is an immutable record of a customer contacting a professional.
// Contact events are never deleted; monthly counts are filtered reads.
type ContactEvent struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	Message        string
	ContactMethod  ContactMethod
	CreatedAt      time.Time
}

// ContactParams is a contact form submission.
type ContactParams struct {
	ProfessionalID uuid.UUID
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	Message        string
	ContactMethod  ContactMethod
}

// ContactResult is returned for an accepted contact.
type ContactResult struct {
	Contact ContactEvent
	Usage   QuotaSnapshot
}

const (
	MaxCustomerNameLength = 120
	MaxMessageLength      = 2000
)

// Validate checks the submission fields.
func (p ContactParams) Validate(op string) error {
	fields := make(map[string]string)
	if p.CustomerName == "" {
		fields["customer_name"] = "Name is required"
	} else if len(p.CustomerName) > MaxCustomerNameLength {
		fields["customer_name"] = "Name is too long"
	}
	if !p.ContactMethod.IsValid() {
		fields["contact_method"] = "Contact method must be whatsapp, form or phone"
	}
	if len(p.Message) > MaxMessageLength {
		fields["message"] = "Message is too long"
	}
	if len(fields) > 0 {
		return &ValidationError{Op: op, Fields: fields}
	}
	return nil
}
