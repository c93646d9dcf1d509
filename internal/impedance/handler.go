package impedance

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

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=impedance_test

type impedanceRepo interface {
	Add(ctx context.Context, userID int, measuredAt time.Time, ohms chart.Value) (*Impedance, error)
	ListBetween(ctx context.Context, userID int, from, to time.Time) ([]Impedance, error)
	Delete(ctx context.Context, id int64) (int, error)
}

type chartInvalidator interface {
	InvalidateUser(userID int)
}

type Handler struct {
	repo           impedanceRepo
	charts         chartInvalidator
	metricsManager *metrics.Manager
}

type AddImpedanceRequest struct {
	UserID     int        `json:"userId"`
	MeasuredAt *time.Time `json:"measuredAt"`
	Ohms       *float64   `json:"ohms"`
}

func NewHandler(repo impedanceRepo, charts chartInvalidator, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		charts:         charts,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.impedance.add")
	defer span.End()

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AddImpedanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("add impedance, unmarshal json params: %s", err)
		http.Error(w, "add impedance failed", http.StatusBadRequest)
		return
	}
	if req.UserID <= 0 || req.Ohms == nil {
		http.Error(w, "error, userId and ohms are required", http.StatusBadRequest)
		return
	}

	ohms, err := chart.NewValue(*req.Ohms)
	if err != nil {
		http.Error(w, "error, impedance cannot be negative", http.StatusBadRequest)
		return
	}

	measuredAt := time.Now()
	if req.MeasuredAt != nil {
		measuredAt = *req.MeasuredAt
	}

	imp, err := handler.repo.Add(ctx, req.UserID, measuredAt, ohms)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, chart.ErrNegativeValue) {
			http.Error(w, "error, impedance cannot be negative", http.StatusBadRequest)
			return
		}
		log.Errorf("add impedance: %s", err)
		http.Error(w, "add impedance failed", http.StatusInternalServerError)
		return
	}

	handler.charts.InvalidateUser(imp.UserID)
	if handler.metricsManager != nil {
		handler.metricsManager.CounterMeasurementWrites.WithLabelValues(Kind, "add").Inc()
	}

	impJson, err := json.Marshal(imp)
	if err != nil {
		log.Errorf("marshal impedance: %s", err)
		http.Error(w, "add impedance failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, impJson, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.impedance.list")
	defer span.End()

	query := r.URL.Query()
	userID, err := strconv.Atoi(query.Get("user_id"))
	if err != nil || userID <= 0 {
		http.Error(w, "error, user_id invalid", http.StatusBadRequest)
		return
	}
	from, fromErr := time.Parse(time.RFC3339, query.Get("start_date"))
	to, toErr := time.Parse(time.RFC3339, query.Get("end_date"))
	if fromErr != nil || toErr != nil {
		http.Error(w, "error, start_date and end_date must be RFC3339", http.StatusBadRequest)
		return
	}
	if from.After(to) {
		http.Error(w, "error, start_date is after end_date", http.StatusBadRequest)
		return
	}

	list, err := handler.repo.ListBetween(ctx, userID, from, to)
	if err != nil {
		log.Errorf("list impedance of user %d: %s", userID, err)
		http.Error(w, "list impedance failed", http.StatusInternalServerError)
		return
	}

	listJson, err := json.Marshal(list)
	if err != nil {
		log.Errorf("marshal impedance list: %s", err)
		http.Error(w, "list impedance failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, listJson)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.impedance.delete")
	defer span.End()

	id, err := pkg.IntPathVar(r, "id")
	if err != nil {
		http.Error(w, "error, impedance id invalid", http.StatusBadRequest)
		return
	}

	userID, err := handler.repo.Delete(ctx, int64(id))
	if err != nil {
		if errors.Is(err, ErrImpedanceNotFound) {
			http.Error(w, "delete impedance failed - not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete impedance %d: %s", id, err)
		http.Error(w, "delete impedance failed", http.StatusInternalServerError)
		return
	}

	handler.charts.InvalidateUser(userID)
	if handler.metricsManager != nil {
		handler.metricsManager.CounterMeasurementWrites.WithLabelValues(Kind, "delete").Inc()
	}

	w.WriteHeader(http.StatusNoContent)
}
