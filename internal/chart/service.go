package chart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/weighttracker/internal/telemetry/metrics"
	"github.com/2beens/weighttracker/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=chart_test

// ObservationSource returns the observations of a user within [from, to]
// (both inclusive), ascending by timestamp.
type ObservationSource interface {
	ObservationsBetween(ctx context.Context, userID int, from, to time.Time) ([]Observation, error)
}

const (
	minCacheSizeBytes = 512 * 1024 // freecache minimum
	// freecache drops entries larger than 1/1024 of its size (header included)
	cacheEntryRatio      = 1024
	cacheEntryHeaderSize = 24
	// typical encoded slot value ("80.25," or "null,")
	cachedSlotBytes    = 8
	cachedOverheadSize = 512
)

type ServiceParams struct {
	// Kind names the measurement kind (weight, impedance), used in cache keys,
	// spans and metrics labels.
	Kind     string
	Source   ObservationSource
	Location *time.Location
	// Clock defaults to time.Now.
	Clock func() time.Time
	// CacheSizeBytes <= 0 disables caching.
	CacheSizeBytes int
	CacheTTL       time.Duration
	// MaxWindowDays <= 0 means no limit.
	MaxWindowDays  int
	MetricsManager *metrics.Manager
}

type Service struct {
	kind   string
	source ObservationSource
	loc    *time.Location
	clock  func() time.Time

	maxWindowDays int

	cache           *freecache.Cache
	cacheTTLSeconds int
	maxEntryBytes   int
	genMu           sync.Mutex
	userGeneration  map[int]uint64

	metricsManager *metrics.Manager
}

func NewService(params ServiceParams) *Service {
	s := &Service{
		kind:           params.Kind,
		source:         params.Source,
		loc:            params.Location,
		clock:          params.Clock,
		maxWindowDays:  params.MaxWindowDays,
		userGeneration: make(map[int]uint64),
		metricsManager: params.MetricsManager,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.clock == nil {
		s.clock = time.Now
	}

	if params.CacheSizeBytes > 0 && params.CacheTTL >= time.Second {
		size := max(params.CacheSizeBytes, minCacheSizeBytes)
		// the chart of the longest allowed window must fit in one entry
		if params.MaxWindowDays > 0 {
			needed := (params.MaxWindowDays*cachedSlotBytes + cachedOverheadSize) * cacheEntryRatio
			size = max(size, needed)
		}
		s.cache = freecache.NewCache(size)
		s.cacheTTLSeconds = int(params.CacheTTL.Seconds())
		s.maxEntryBytes = size/cacheEntryRatio - cacheEntryHeaderSize
	}

	return s
}

func (s *Service) Kind() string {
	return s.kind
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Chart resolves the window from the optional date params, fetches the user's
// observations and computes the chart view model.
// Returns an error wrapping ErrInvalidDate for malformed params, and
// ErrWindowTooLarge if the window spans more than the configured max days.
func (s *Service) Chart(ctx context.Context, userID int, startParam, endParam string) (_ *ViewModel, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.chart."+s.kind)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("start-date", startParam))
	span.SetAttributes(attribute.String("end-date", endParam))

	window, err := ResolveWindow(startParam, endParam, s.clock().In(s.loc))
	if err != nil {
		return nil, err
	}
	if s.maxWindowDays > 0 && window.Days() > s.maxWindowDays {
		return nil, fmt.Errorf("%w: %d days, max %d", ErrWindowTooLarge, window.Days(), s.maxWindowDays)
	}

	cacheKey := s.cacheKey(userID, window)
	if vm, ok := s.fromCache(cacheKey, window); ok {
		span.SetAttributes(attribute.Bool("from-cache", true))
		return vm, nil
	}

	observations, err := s.source.ObservationsBetween(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("get %s observations: %w", s.kind, err)
	}
	span.SetAttributes(attribute.Int("observations", len(observations)))

	begin := time.Now()
	vm := Build(observations, window)
	if s.metricsManager != nil {
		s.metricsManager.HistChartComputeDuration.WithLabelValues(s.kind).Observe(time.Since(begin).Seconds())
	}

	s.toCache(cacheKey, vm)

	return &vm, nil
}

// Build runs the whole chart pipeline over already fetched observations.
// All calendar days are taken in the window's location.
func Build(observations []Observation, window Window) ViewModel {
	observations = inLocation(observations, window.Start.Location())
	slots := Align(observations, window)
	duplicates := FindDuplicates(observations, window.Start.Location())

	var trend *TrendSummary
	summary, err := EstimateTrend(observations)
	switch {
	case err == nil:
		trend = &summary
	case errors.Is(err, ErrInsufficientData):
		log.Tracef("chart trend omitted: %s", err)
	default:
		log.Errorf("estimate trend: %s", err)
	}

	return Assemble(window, slots, duplicates, trend)
}

// InvalidateUser drops all cached charts of the user. Called after every write
// to the user's observations.
func (s *Service) InvalidateUser(userID int) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.userGeneration[userID]++
}

func (s *Service) cacheKey(userID int, window Window) []byte {
	s.genMu.Lock()
	gen := s.userGeneration[userID]
	s.genMu.Unlock()

	return []byte(fmt.Sprintf(
		"chart::%s::%d::%d::%s::%s",
		s.kind, userID, gen,
		window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339),
	))
}

// cachedChart is the cached form of a ViewModel. Slot dates and the window
// follow from the cache key, so only the values are stored.
type cachedChart struct {
	Values     []*float64       `json:"v"`
	Duplicates []DuplicateGroup `json:"d,omitempty"`
	Trend      *TrendSummary    `json:"t,omitempty"`
}

func (s *Service) fromCache(key []byte, window Window) (*ViewModel, bool) {
	if s.cache == nil {
		return nil, false
	}

	cachedBytes, err := s.cache.Get(key)
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("get chart from cache [%s]: %s", key, err)
		}
		s.observeCache("miss")
		return nil, false
	}

	var cached cachedChart
	if err := json.Unmarshal(cachedBytes, &cached); err != nil {
		log.Errorf("unmarshal cached chart [%s]: %s", key, err)
		s.observeCache("miss")
		return nil, false
	}

	loc := window.Start.Location()
	first := startOfDay(window.Start)
	slots := make([]DaySlot, len(cached.Values))
	for n, v := range cached.Values {
		slots[n] = DaySlot{
			Date:  time.Date(first.Year(), first.Month(), first.Day()+n, 0, 0, 0, 0, loc),
			Value: v,
		}
	}
	duplicates := cached.Duplicates
	for i := range duplicates {
		duplicates[i].Date = duplicates[i].Date.In(loc)
	}

	vm := Assemble(window, slots, duplicates, cached.Trend)
	s.observeCache("hit")
	return &vm, true
}

func (s *Service) toCache(key []byte, vm ViewModel) {
	if s.cache == nil {
		return
	}

	cached := cachedChart{
		Values:     make([]*float64, len(vm.Slots)),
		Duplicates: vm.Duplicates,
		Trend:      vm.Trend,
	}
	for n, slot := range vm.Slots {
		cached.Values[n] = slot.Value
	}

	cachedBytes, err := json.Marshal(cached)
	if err != nil {
		log.Errorf("marshal chart for cache [%s]: %s", key, err)
		return
	}

	if len(key)+len(cachedBytes) > s.maxEntryBytes {
		log.Debugf("chart not cached [%s]: %d bytes, max %d", key, len(cachedBytes), s.maxEntryBytes)
		return
	}

	if err := s.cache.Set(key, cachedBytes, s.cacheTTLSeconds); err != nil {
		log.Warnf("cache chart [%s]: %s", key, err)
	}
}

func (s *Service) observeCache(result string) {
	if s.metricsManager == nil {
		return
	}
	s.metricsManager.CounterChartCache.WithLabelValues(s.kind, result).Inc()
}

func inLocation(observations []Observation, loc *time.Location) []Observation {
	converted := make([]Observation, len(observations))
	for i, o := range observations {
		o.Timestamp = o.Timestamp.In(loc)
		converted[i] = o
	}
	return converted
}
