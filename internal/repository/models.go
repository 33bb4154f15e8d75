package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sqlc-dev/pqtype"
)

type Category struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
}

type ContactEvent struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	Message        string
	ContactMethod  string
	CreatedAt      time.Time
}

type NotificationReadMarker struct {
	ProfessionalID uuid.UUID
	EventID        uuid.UUID
	EventType      string
	ReadAt         time.Time
}

type PaymentEvent struct {
	ProviderTransactionID string
	EventType             string
	ProfessionalID        uuid.NullUUID
	Payload               pqtype.NullRawMessage
	Outcome               string
	ReceivedAt            time.Time
}

type Plan struct {
	ID            uuid.UUID
	Name          string
	Slug          string
	MaxContacts   sql.NullInt32
	MaxPhotos     sql.NullInt32
	MonthlyPrice  decimal.Decimal
	IsFeatured    bool
	StripePriceID sql.NullString
	CreatedAt     time.Time
}

type PortfolioPhoto struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	StorageKey     string
	ThumbnailKey   string
	ContentType    string
	SizeBytes      int64
	Width          int32
	Height         int32
	Position       int32
	CreatedAt      time.Time
}

type Professional struct {
	ID                    uuid.UUID
	Name                  string
	Email                 string
	Phone                 string
	City                  string
	Description           string
	CategoryID            uuid.UUID
	PlanID                uuid.UUID
	Status                string
	StatusReason          string
	SubscriptionExpiresAt sql.NullTime
	SubscriptionEventAt   sql.NullTime
	PaymentCustomerRef    sql.NullString
	Rating                decimal.Decimal
	TotalReviews          int32
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type ReviewEvent struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	CustomerName   string
	Rating         int16
	Comment        string
	IsVerified     bool
	CreatedAt      time.Time
}

type SubscriptionHistory struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	FromStatus     string
	ToStatus       string
	PlanID         uuid.UUID
	ExpiresAt      sql.NullTime
	Source         string
	CreatedAt      time.Time
}
