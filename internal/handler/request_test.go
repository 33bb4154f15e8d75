package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name   string `json:"name"`
		Rating int    `json:"rating"`
	}

	tests := []struct {
		name     string
		body     string
		wantCode string
		wantMsg  string
	}{
		{name: "valid", body: `{"name":"Ana","rating":5}`},
		{name: "empty", body: ``, wantCode: domain.EINVALID, wantMsg: "empty"},
		{name: "malformed", body: `{"name":`, wantCode: domain.EINVALID},
		{name: "wrong type", body: `{"rating":"five"}`, wantCode: domain.EINVALID, wantMsg: "rating"},
		{name: "unknown field", body: `{"nome":"Ana"}`, wantCode: domain.EINVALID},
		{name: "two objects", body: `{"name":"Ana"}{"name":"Bia"}`, wantCode: domain.EINVALID, wantMsg: "single"},
		{name: "too large", body: `{"name":"` + strings.Repeat("a", maxJSONBody) + `"}`, wantCode: domain.ETOOLARGE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst payload
			err := decodeJSON(rec, req, &dst)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, payload{Name: "Ana", Rating: 5}, dst)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
			if tt.wantMsg != "" {
				assert.Contains(t, domain.ErrorMessage(err), tt.wantMsg)
			}
		})
	}
}

func TestPageFromQuery(t *testing.T) {
	tests := []struct {
		query       string
		wantNumber  int
		wantPerPage int
		wantErr     bool
	}{
		{"", 1, domain.DefaultPerPage, false},
		{"?page=3&per_page=5", 3, 5, false},
		{"?page=0&per_page=100000", 1, domain.MaxPerPage, false},
		{"?page=abc", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, err := pageFromQuery(httptest.NewRequest("GET", "/categories/x/ranking"+tt.query, nil))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, page.Number)
			assert.Equal(t, tt.wantPerPage, page.PerPage)
		})
	}
}
