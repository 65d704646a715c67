// Package http provides HTTP server and handler implementations.
//
// This file decodes and validates request bodies and query parameters.

package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"thrips/internal/core"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

var validate = validator.New()

var (
	errInvalidBody   = errors.New("invalid JSON body")
	errMissingFields = &core.ValidationError{Err: core.ErrMissingFields}
)

// createThripsRequest is the POST /thrips body. Fields stay raw so that
// numbers and numeric strings can both be accepted.
type createThripsRequest struct {
	Tea   json.RawMessage `json:"tea" validate:"required"`
	Other json.RawMessage `json:"other" validate:"required"`
}

// ParseCreateRequest decodes a POST /thrips body. A missing or null field
// wraps core.ErrMissingFields, a bad value is a *core.ValidationError and
// malformed JSON wraps errInvalidBody.
func ParseCreateRequest(w http.ResponseWriter, r *http.Request) (core.NewCountRecord, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return core.NewCountRecord{}, fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	var req createThripsRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return core.NewCountRecord{}, errMissingFields
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return core.NewCountRecord{}, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if isNull(req.Tea) || isNull(req.Other) {
		return core.NewCountRecord{}, errMissingFields
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return core.NewCountRecord{}, errMissingFields
		}
		return core.NewCountRecord{}, err
	}

	tea, err := parseCount("tea", req.Tea)
	if err != nil {
		return core.NewCountRecord{}, err
	}
	other, err := parseCount("other", req.Other)
	if err != nil {
		return core.NewCountRecord{}, err
	}
	return core.NewCountRecord{Tea: tea, Other: other}, nil
}

func isNull(raw json.RawMessage) bool {
	return raw != nil && string(bytes.TrimSpace(raw)) == "null"
}

// parseCount accepts a JSON number or a string holding one. The value must
// be a non-negative integer; 2.0 is accepted as 2.
func parseCount(field string, raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return 0, &core.ValidationError{Field: field, Reason: "must be a number"}
		}
		s = strings.TrimSpace(unquoted)
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, &core.ValidationError{Field: field, Reason: "must be a non-negative integer"}
		}
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &core.ValidationError{Field: field, Reason: "must be a number"}
	}
	if f < 0 || f != math.Trunc(f) || f >= 1<<63 {
		return 0, &core.ValidationError{Field: field, Reason: "must be a non-negative integer"}
	}
	return int64(f), nil
}

// ParsePeriodParam reads ?period=, defaulting to day for unknown values.
func ParsePeriodParam(r *http.Request) core.Period {
	return core.ParsePeriod(r.URL.Query().Get("period"))
}
