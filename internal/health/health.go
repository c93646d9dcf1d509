package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/2beens/weighttracker/internal/telemetry/tracing"
	"github.com/2beens/weighttracker/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const checkTimeout = 2 * time.Second

type dbPinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	db  dbPinger
	rdb *redis.Client
}

type Response struct {
	Status string            `json:"status"`
	Failed map[string]string `json:"failed,omitempty"`
}

func NewHandler(db dbPinger, rdb *redis.Client) *Handler {
	return &Handler{
		db:  db,
		rdb: rdb,
	}
}

// Check pings all dependencies and returns the errors keyed by component.
func (handler *Handler) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	failed := make(map[string]string)
	if err := handler.db.Ping(ctx); err != nil {
		failed["postgres"] = err.Error()
	}
	if err := handler.rdb.Ping(ctx).Err(); err != nil {
		failed["redis"] = err.Error()
	}
	return failed
}

func (handler *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.health")
	defer span.End()

	resp := Response{Status: "ok"}
	status := http.StatusOK
	if failed := handler.Check(ctx); len(failed) > 0 {
		components := make([]string, 0, len(failed))
		for c := range failed {
			components = append(components, c)
		}
		sort.Strings(components)
		log.Warnf("health check failed for %v: %v", components, failed)

		resp = Response{Status: "unavailable", Failed: failed}
		status = http.StatusServiceUnavailable
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal health response: %s", err)
		http.Error(w, "health check failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, status)
}
