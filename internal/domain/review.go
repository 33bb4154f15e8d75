package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewEvent is a customer's rating of a professional.
// Reviews feed the professional's aggregate rating and the notification feed.
type ReviewEvent struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	CustomerName   string
	Rating         int
	Comment        string
	IsVerified     bool
	CreatedAt      time.Time
}

// ReviewParams is a review submission.
type ReviewParams struct {
	ProfessionalID uuid.UUID
	CustomerName   string
	Rating         int
	Comment        string
}

const (
	MinRating = 1
	MaxRating = 5
)

// Validate checks the submission fields.
func (p ReviewParams) Validate(op string) error {
	fields := make(map[string]string)
	if p.CustomerName == "" {
		fields["customer_name"] = "Name is required"
	} else if len(p.CustomerName) > MaxCustomerNameLength {
		fields["customer_name"] = "Name is too long"
	}
	if p.Rating < MinRating || p.Rating > MaxRating {
		fields["rating"] = "Rating must be between 1 and 5"
	}
	if len(p.Comment) > MaxMessageLength {
		fields["comment"] = "Comment is too long"
	}
	if len(fields) > 0 {
		return &ValidationError{Op: op, Fields: fields}
	}
	return nil
}
