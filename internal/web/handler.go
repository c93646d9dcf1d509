package web

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/2beens/weighttracker/internal/chart"
	"github.com/2beens/weighttracker/internal/measurements"
	"github.com/2beens/weighttracker/internal/telemetry/tracing"
	"github.com/2beens/weighttracker/internal/users"
	"github.com/2beens/weighttracker/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=web_test

type usersRepo interface {
	List(ctx context.Context) ([]users.User, error)
	Get(ctx context.Context, id int) (*users.User, error)
}

type chartService interface {
	Chart(ctx context.Context, userID int, startParam, endParam string) (*chart.ViewModel, error)
}

type measurementsRepo interface {
	ListBetween(ctx context.Context, userID int, from, to time.Time) ([]measurements.Measurement, error)
	Years(ctx context.Context, userID int) ([]int, error)
}

type Handler struct {
	renderer        *Renderer
	users           usersRepo
	weightCharts    chartService
	impedanceCharts chartService
	measurements    measurementsRepo
	loc             *time.Location
	clock           func() time.Time
}

type HandlerParams struct {
	Renderer        *Renderer
	Users           usersRepo
	WeightCharts    chartService
	ImpedanceCharts chartService
	Measurements    measurementsRepo
	Location        *time.Location
	Clock           func() time.Time
}

type page struct {
	Title string
	User  *users.User
}

type indexPage struct {
	page
	Users []users.User
}

type chartPage struct {
	page
	StartDate string
	EndDate   string
	Weight    *chart.ViewModel
	Impedance *chart.ViewModel
}

type tablePage struct {
	page
	Year         int
	Month        string
	Years        []int
	Months       []string
	Measurements []measurements.Measurement
}

type notFoundPage struct {
	page
	Message string
}

func NewHandler(params HandlerParams) *Handler {
	h := &Handler{
		renderer:        params.Renderer,
		users:           params.Users,
		weightCharts:    params.WeightCharts,
		impedanceCharts: params.ImpedanceCharts,
		measurements:    params.Measurements,
		loc:             params.Location,
		clock:           params.Clock,
	}
	if h.loc == nil {
		h.loc = time.Local
	}
	if h.clock == nil {
		h.clock = time.Now
	}
	return h
}

func (handler *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.index")
	defer span.End()

	list, err := handler.users.List(ctx)
	if err != nil {
		log.Errorf("index, list users: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	handler.render(w, http.StatusOK, pageIndex, indexPage{
		page:  page{Title: "Index"},
		Users: list,
	})
}

func (handler *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.chart")
	defer span.End()

	user, ok := handler.userFromPath(w, r)
	if !ok {
		return
	}

	startParam := r.URL.Query().Get("start-date")
	endParam := r.URL.Query().Get("end-date")
	weight, err := handler.weightCharts.Chart(ctx, user.ID, startParam, endParam)
	if err != nil {
		if errors.Is(err, chart.ErrInvalidDate) || errors.Is(err, chart.ErrWindowTooLarge) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("chart page, weight chart of user %d: %s", user.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := chartPage{
		page:      page{Title: "Chart", User: user},
		StartDate: weight.Window.Start.Format(chart.DateLayout),
		EndDate:   weight.Window.End.Format(chart.DateLayout),
		Weight:    weight,
	}

	if handler.impedanceCharts != nil {
		// the impedance chart is optional on the page
		impedance, err := handler.impedanceCharts.Chart(ctx, user.ID, startParam, endParam)
		if err != nil {
			log.Errorf("chart page, impedance chart of user %d: %s", user.ID, err)
		} else {
			data.Impedance = impedance
		}
	}

	handler.render(w, http.StatusOK, pageChart, data)
}

func (handler *Handler) HandleTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.table")
	defer span.End()

	user, ok := handler.userFromPath(w, r)
	if !ok {
		return
	}

	from, to, year, month, err := tablePeriod(r, handler.clock().In(handler.loc))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := handler.measurements.ListBetween(ctx, user.ID, from, to)
	if err != nil {
		log.Errorf("table page, measurements of user %d: %s", user.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	years, err := handler.measurements.Years(ctx, user.ID)
	if err != nil {
		log.Errorf("table page, years of user %d: %s", user.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !slices.Contains(years, year) {
		years = append([]int{year}, years...)
	}

	monthParam := ""
	if month > 0 {
		monthParam = strconv.Itoa(month)
	}

	handler.render(w, http.StatusOK, pageTable, tablePage{
		page:         page{Title: "Table", User: user},
		Year:         year,
		Month:        monthParam,
		Years:        years,
		Months:       monthNames(),
		Measurements: list,
	})
}

func (handler *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	log.Tracef("not found: %s %s", r.Method, r.URL.Path)
	handler.render(w, http.StatusNotFound, pageNotFound, notFoundPage{
		page:    page{Title: "Not found"},
		Message: "There is nothing here.",
	})
}

func (handler *Handler) userFromPath(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	userID, err := pkg.IntPathVar(r, "userID")
	if err != nil {
		handler.render(w, http.StatusNotFound, pageNotFound, notFoundPage{
			page:    page{Title: "Not found"},
			Message: "Invalid user.",
		})
		return nil, false
	}

	user, err := handler.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			handler.render(w, http.StatusNotFound, pageNotFound, notFoundPage{
				page:    page{Title: "Not found"},
				Message: "User not found.",
			})
			return nil, false
		}
		log.Errorf("get user %d: %s", userID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}

	return user, true
}

func (handler *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	html, err := handler.renderer.Render(page, data)
	if err != nil {
		log.Errorf("render page: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.HTML, html, status)
}
