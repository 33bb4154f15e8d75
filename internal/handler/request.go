package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/google/uuid"
)

// maxJSONBody caps request bodies on JSON endpoints.
const maxJSONBody = 1 << 20

// decodeJSON reads a single JSON object into dst. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	const op = "handler.decode"

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			return &domain.Error{Code: domain.ETOOLARGE, Op: op, Message: "Request body is too large"}
		case errors.Is(err, io.EOF):
			return domain.Invalid(op, "Request body is empty")
		case errors.As(err, &syntaxErr):
			return domain.Invalid(op, fmt.Sprintf("Malformed JSON at position %d", syntaxErr.Offset))
		case errors.As(err, &typeErr):
			return domain.Invalid(op, fmt.Sprintf("Field %q has the wrong type", typeErr.Field))
		default:
			return domain.Invalid(op, "Request body could not be decoded")
		}
	}
	if dec.More() {
		return domain.Invalid(op, "Request body must contain a single JSON object")
	}
	return nil
}

// pathUUID parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.Invalid("handler.path", fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid("handler.query", fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}

// pageFromQuery reads ?page= and ?per_page=.
func pageFromQuery(r *http.Request) (domain.Page, error) {
	number, err := queryInt(r, "page", 1)
	if err != nil {
		return domain.Page{}, err
	}
	perPage, err := queryInt(r, "per_page", domain.DefaultPerPage)
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Number: number, PerPage: perPage}.Normalize(), nil
}
