package measurements

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/weighttracker/internal/chart"
	"github.com/2beens/weighttracker/internal/telemetry/metrics"
	"github.com/2beens/weighttracker/internal/telemetry/tracing"
	"github.com/2beens/weighttracker/internal/users"
	"github.com/2beens/weighttracker/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=measurements_test

type measurementsRepo interface {
	Add(ctx context.Context, m Measurement) (*Measurement, error)
	ListBetween(ctx context.Context, userID int, from, to time.Time) ([]Measurement, error)
	Delete(ctx context.Context, id int64) (int, error)
}

type chartInvalidator interface {
	InvalidateUser(userID int)
}

type Handler struct {
	repo           measurementsRepo
	charts         chartInvalidator
	loc            *time.Location
	clock          func() time.Time
	metricsManager *metrics.Manager
}

// AddMeasurementRequest is the POST body; a missing dateTime means now.
type AddMeasurementRequest struct {
	UserID   int        `json:"userId"`
	DateTime *time.Time `json:"dateTime"`
	Weight   *float64   `json:"weight"`
}

func NewHandler(
	repo measurementsRepo,
	charts chartInvalidator,
	loc *time.Location,
	metricsManager *metrics.Manager,
) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		repo:           repo,
		charts:         charts,
		loc:            loc,
		clock:          time.Now,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.add")
	defer span.End()

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AddMeasurementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("add measurement, unmarshal json params: %s", err)
		http.Error(w, "add measurement failed", http.StatusBadRequest)
		return
	}

	if req.UserID <= 0 || req.Weight == nil {
		http.Error(w, "error, userId and weight are required", http.StatusBadRequest)
		return
	}

	weight, err := chart.NewValue(*req.Weight)
	if err != nil {
		http.Error(w, "error, weight cannot be negative", http.StatusBadRequest)
		return
	}

	dateTime := handler.clock()
	if req.DateTime != nil {
		dateTime = *req.DateTime
	}

	m, err := handler.repo.Add(ctx, Measurement{
		UserID:   req.UserID,
		DateTime: dateTime.In(handler.loc),
		Weight:   weight,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		case errors.Is(err, chart.ErrNegativeValue):
			http.Error(w, "error, weight cannot be negative", http.StatusBadRequest)
		default:
			log.Errorf("add measurement: %s", err)
			http.Error(w, "add measurement failed", http.StatusInternalServerError)
		}
		return
	}

	handler.charts.InvalidateUser(m.UserID)
	handler.observeWrite("add")

	mJson, err := json.Marshal(m)
	if err != nil {
		log.Errorf("marshal measurement: %s", err)
		http.Error(w, "add measurement failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("new measurement added: %+v", m)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, mJson, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.list")
	defer span.End()

	query := r.URL.Query()
	userID, err := strconv.Atoi(query.Get("user_id"))
	if err != nil || userID <= 0 {
		http.Error(w, "error, user_id invalid", http.StatusBadRequest)
		return
	}

	from, err := time.Parse(time.RFC3339, query.Get("start_date"))
	if err != nil {
		http.Error(w, "error, start_date must be RFC3339", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, query.Get("end_date"))
	if err != nil {
		http.Error(w, "error, end_date must be RFC3339", http.StatusBadRequest)
		return
	}
	if from.After(to) {
		http.Error(w, "error, start_date is after end_date", http.StatusBadRequest)
		return
	}

	list, err := handler.repo.ListBetween(ctx, userID, from.In(handler.loc), to.In(handler.loc))
	if err != nil {
		log.Errorf("list measurements of user %d: %s", userID, err)
		http.Error(w, "list measurements failed", http.StatusInternalServerError)
		return
	}

	listJson, err := json.Marshal(list)
	if err != nil {
		log.Errorf("marshal measurements: %s", err)
		http.Error(w, "list measurements failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, listJson)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.measurements.delete")
	defer span.End()

	id, err := pkg.IntPathVar(r, "id")
	if err != nil {
		http.Error(w, "error, measurement id invalid", http.StatusBadRequest)
		return
	}

	userID, err := handler.repo.Delete(ctx, int64(id))
	if err != nil {
		if errors.Is(err, ErrMeasurementNotFound) {
			http.Error(w, "delete measurement failed - not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete measurement %d: %s", id, err)
		http.Error(w, "delete measurement failed", http.StatusInternalServerError)
		return
	}

	handler.charts.InvalidateUser(userID)
	handler.observeWrite("delete")

	log.Debugf("measurement %d of user %d deleted", id, userID)
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) observeWrite(op string) {
	if handler.metricsManager == nil {
		return
	}
	handler.metricsManager.CounterMeasurementWrites.WithLabelValues(Kind, op).Inc()
}
