package chart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/weighttracker/internal/telemetry/tracing"
	"github.com/2beens/weighttracker/internal/users"
	"github.com/2beens/weighttracker/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=chart_test

type chartService interface {
	Kind() string
	Chart(ctx context.Context, userID int, startParam, endParam string) (*ViewModel, error)
}

type userGetter interface {
	Get(ctx context.Context, id int) (*users.User, error)
}

type Handler struct {
	service chartService
	users   userGetter
}

type Response struct {
	User  *users.User `json:"user"`
	Kind  string      `json:"kind"`
	Chart *ViewModel  `json:"chart"`
}

func NewHandler(service chartService, users userGetter) *Handler {
	return &Handler{
		service: service,
		users:   users,
	}
}

// HandleGet serves the chart of the user in the path, within the optional
// start-date / end-date (YYYY-MM-DD) query params.
func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.chart.get."+handler.service.Kind())
	defer span.End()

	userID, err := pkg.IntPathVar(r, "userID")
	if err != nil {
		http.Error(w, "error, user id invalid", http.StatusBadRequest)
		return
	}

	user, err := handler.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("chart, get user %d: %s", userID, err)
		http.Error(w, "get chart failed", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	vm, err := handler.service.Chart(ctx, userID, query.Get("start-date"), query.Get("end-date"))
	if err != nil {
		if errors.Is(err, ErrInvalidDate) || errors.Is(err, ErrWindowTooLarge) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("chart of user %d: %s", userID, err)
		http.Error(w, "get chart failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(Response{
		User:  user,
		Kind:  handler.service.Kind(),
		Chart: vm,
	})
	if err != nil {
		log.Errorf("marshal chart: %s", err)
		http.Error(w, "get chart failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}
