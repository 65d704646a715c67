package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"thrips/internal/core"
	applog "thrips/internal/log"
)

const msgMissingFields = "Missing required fields"

// recordJSON is the wire form of a stored count record.
type recordJSON struct {
	ID        int64     `json:"id"`
	Tea       int64     `json:"tea"`
	Other     int64     `json:"other"`
	CreatedAt time.Time `json:"createdAt"`
}

type createResponse struct {
	Message string     `json:"message"`
	Data    recordJSON `json:"data"`
}

// bucketJSON serializes a bucket with its key under the period's column
// name: date, yearWeek or yearMonth.
type bucketJSON core.Bucket

func (b bucketJSON) MarshalJSON() ([]byte, error) {
	key, err := json.Marshal(b.Key.Value)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 64)
	out = append(out, '{')
	out = strconv.AppendQuote(out, b.Key.Period.Column())
	out = append(out, ':')
	out = append(out, key...)
	out = append(out, `,"sumTea":`...)
	out = strconv.AppendInt(out, b.SumTea, 10)
	out = append(out, `,"sumOther":`...)
	out = strconv.AppendInt(out, b.SumOther, 10)
	out = append(out, '}')
	return out, nil
}

func toBucketJSON(buckets []core.Bucket) []bucketJSON {
	out := make([]bucketJSON, len(buckets))
	for i, b := range buckets {
		out[i] = bucketJSON(b)
	}
	return out
}

// handleListThrips serves GET /thrips?period=.
func (s *Server) handleListThrips(w http.ResponseWriter, r *http.Request) {
	period := ParsePeriodParam(r)
	buckets, err := s.svc.Aggregate(r.Context(), period)
	if err != nil {
		s.writeError(w, r, err, applog.OpAggregate)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogAggregation(r.Context(), applog.OpAggregate, period.String(), len(buckets))
	NewResponse().JSON(toBucketJSON(buckets)).Write(w)
}

// handleCreateThrips serves POST /thrips.
func (s *Server) handleCreateThrips(w http.ResponseWriter, r *http.Request) {
	n, err := ParseCreateRequest(w, r)
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}

	rec, err := s.svc.Record(r.Context(), n)
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context()).WithComponent(applog.ComponentThrips)).
		LogRecordCreated(r.Context(), rec.ID, rec.Tea, rec.Other)

	NewResponse().
		Status(http.StatusCreated).
		JSON(createResponse{
			Message: "Data saved successfully",
			Data: recordJSON{
				ID:        rec.ID,
				Tea:       rec.Tea,
				Other:     rec.Other,
				CreatedAt: rec.CreatedAt.UTC(),
			},
		}).
		Write(w)
}

// writeError maps domain errors to status codes: validation 400, anything
// else 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	ctx := r.Context()
	logger := applog.NewStructuredLogger(applog.FromContext(ctx))

	switch {
	case errors.Is(err, core.ErrMissingFields):
		BadRequestError(msgMissingFields).Write(w)
	case errors.Is(err, errInvalidBody):
		BadRequestError(errInvalidBody.Error()).Write(w)
	case core.IsValidation(err):
		BadRequestError(err.Error()).Write(w)
	default:
		logger.LogError(ctx, "Request failed", err, op, nil)
		InternalServerError(err.Error()).Write(w)
	}
}
