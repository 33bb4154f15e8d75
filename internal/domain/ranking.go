// Package domain contains core business types and interfaces.
//
// This file defines the category ranking order. Rankings are derived on read
// from the current rating snapshot; no position is ever stored.
package domain

import (
	"bytes"
	"slices"
	"time"

	"github.com/google/uuid"
)

// RankingCandidate is a professional considered for a category ranking,
// joined with its plan's featured flag.
type RankingCandidate struct {
	Professional Professional
	IsFeatured   bool
}

// RankedProfessional is a candidate with its 1-based position.
type RankedProfessional struct {
	Position     int
	Professional Professional
	IsFeatured   bool
}

// CompareRanking orders candidates by rating desc, review count desc,
// featured first, then id asc. It is a total order, so sorting with it is
// deterministic across calls and pages.
func CompareRanking(a, b RankingCandidate) int {
	if c := b.Professional.Rating.Cmp(a.Professional.Rating); c != 0 {
		return c
	}
	if a.Professional.TotalReviews != b.Professional.TotalReviews {
		if a.Professional.TotalReviews > b.Professional.TotalReviews {
			return -1
		}
		return 1
	}
	if a.IsFeatured != b.IsFeatured {
		if a.IsFeatured {
			return -1
		}
		return 1
	}
	return bytes.Compare(a.Professional.ID[:], b.Professional.ID[:])
}

// Rank drops candidates that are not active at now, sorts the rest and
// assigns positions starting at 1. The input slice is not modified.
func Rank(candidates []RankingCandidate, now time.Time) []RankedProfessional {
	eligible := make([]RankingCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Professional.IsActive(now) {
			eligible = append(eligible, c)
		}
	}

	slices.SortFunc(eligible, CompareRanking)

	ranked := make([]RankedProfessional, len(eligible))
	for i, c := range eligible {
		ranked[i] = RankedProfessional{
			Position:     i + 1,
			Professional: c.Professional,
			IsFeatured:   c.IsFeatured,
		}
	}
	return ranked
}

// PositionIn returns the position of id within ranked, or 0 if absent.
func PositionIn(ranked []RankedProfessional, id uuid.UUID) int {
	for _, r := range ranked {
		if r.Professional.ID == id {
			return r.Position
		}
	}
	return 0
}

// RankingPage is one page of a category ranking.
type RankingPage struct {
	CategoryID uuid.UUID
	Items      []RankedProfessional
	Page       Page
	Total      int
}

// Pagination defaults.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Page selects a window of a list. Number is 1-based.
type Page struct {
	Number  int
	PerPage int
}

// Normalize fills defaults and clamps out-of-range values.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the index of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// TotalPages returns the number of pages needed for total items.
func (p Page) TotalPages(total int) int {
	if total == 0 {
		return 0
	}
	return (total + p.PerPage - 1) / p.PerPage
}

// Paginate returns the slice of ranked covered by page.
func Paginate(ranked []RankedProfessional, page Page) []RankedProfessional {
	page = page.Normalize()
	start := page.Offset()
	if start >= len(ranked) {
		return []RankedProfessional{}
	}
	end := start + page.PerPage
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[start:end]
}
