// Package service contains the business logic layer.
//
// This file converts repository rows into domain types.
package service

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

func planFromRow(row repository.Plan) domain.Plan {
	p := domain.Plan{
		ID:            row.ID,
		Name:          row.Name,
		Slug:          row.Slug,
		MonthlyPrice:  row.MonthlyPrice,
		IsFeatured:    row.IsFeatured,
		StripePriceID: row.StripePriceID.String,
	}
	if row.MaxContacts.Valid {
		p.MaxContacts = domain.IntPtr(int(row.MaxContacts.Int32))
	}
	if row.MaxPhotos.Valid {
		p.MaxPhotos = domain.IntPtr(int(row.MaxPhotos.Int32))
	}
	return p
}

func professionalFromRow(row repository.Professional) *domain.Professional {
	return &domain.Professional{
		ID:                    row.ID,
		Name:                  row.Name,
		Email:                 row.Email,
		Phone:                 row.Phone,
		City:                  row.City,
		Description:           row.Description,
		CategoryID:            row.CategoryID,
		PlanID:                row.PlanID,
		Status:                domain.ProfessionalStatus(row.Status),
		StatusReason:          domain.StatusReason(row.StatusReason),
		SubscriptionExpiresAt: timePtr(row.SubscriptionExpiresAt),
		SubscriptionEventAt:   timePtr(row.SubscriptionEventAt),
		PaymentCustomerRef:    row.PaymentCustomerRef.String,
		Rating:                row.Rating,
		TotalReviews:          int(row.TotalReviews),
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
}

func rankingCandidatesFromRows(rows []repository.RankingCandidateRow) []domain.RankingCandidate {
	candidates := make([]domain.RankingCandidate, len(rows))
	for i, row := range rows {
		candidates[i] = domain.RankingCandidate{
			Professional: *professionalFromRow(row.Professional),
			IsFeatured:   row.IsFeatured,
		}
	}
	return candidates
}

func categoryFromRow(row repository.Category) domain.Category {
	return domain.Category{ID: row.ID, Name: row.Name, Slug: row.Slug}
}

func contactFromRow(row repository.ContactEvent) domain.ContactEvent {
	return domain.ContactEvent{
		ID:             row.ID,
		ProfessionalID: row.ProfessionalID,
		CustomerName:   row.CustomerName,
		CustomerEmail:  row.CustomerEmail,
		CustomerPhone:  row.CustomerPhone,
		Message:        row.Message,
		ContactMethod:  domain.ContactMethod(row.ContactMethod),
		CreatedAt:      row.CreatedAt,
	}
}

func reviewFromRow(row repository.ReviewEvent) domain.ReviewEvent {
	return domain.ReviewEvent{
		ID:             row.ID,
		ProfessionalID: row.ProfessionalID,
		CustomerName:   row.CustomerName,
		Rating:         int(row.Rating),
		Comment:        row.Comment,
		IsVerified:     row.IsVerified,
		CreatedAt:      row.CreatedAt,
	}
}

func photoFromRow(row repository.PortfolioPhoto) domain.PortfolioPhoto {
	return domain.PortfolioPhoto{
		ID:             row.ID,
		ProfessionalID: row.ProfessionalID,
		StorageKey:     row.StorageKey,
		ThumbnailKey:   row.ThumbnailKey,
		ContentType:    row.ContentType,
		SizeBytes:      row.SizeBytes,
		Width:          int(row.Width),
		Height:         int(row.Height),
		Position:       int(row.Position),
		CreatedAt:      row.CreatedAt,
	}
}

func historyFromRow(row repository.SubscriptionHistory) domain.SubscriptionHistoryEntry {
	return domain.SubscriptionHistoryEntry{
		ID:             row.ID,
		ProfessionalID: row.ProfessionalID,
		FromStatus:     domain.ProfessionalStatus(row.FromStatus),
		ToStatus:       domain.ProfessionalStatus(row.ToStatus),
		PlanID:         row.PlanID,
		ExpiresAt:      timePtr(row.ExpiresAt),
		Source:         row.Source,
		CreatedAt:      row.CreatedAt,
	}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullRawMessage(payload []byte) pqtype.NullRawMessage {
	if len(payload) == 0 || !json.Valid(payload) {
		return pqtype.NullRawMessage{}
	}
	return pqtype.NullRawMessage{RawMessage: json.RawMessage(payload), Valid: true}
}
