package measurements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/weighttracker/internal/chart"
	"github.com/2beens/weighttracker/internal/db"
	"github.com/2beens/weighttracker/internal/telemetry/tracing"
	"github.com/2beens/weighttracker/internal/users"
	"github.com/2beens/weighttracker/pkg"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db  db.Conn
	loc *time.Location
}

// NewRepo creates a repo returning all timestamps in loc.
func NewRepo(conn db.Conn, loc *time.Location) *Repo {
	if loc == nil {
		loc = time.Local
	}
	return &Repo{
		db:  conn,
		loc: loc,
	}
}

func (r *Repo) Add(ctx context.Context, m Measurement) (_ *Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", m.UserID))

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO measurement (user_id, date_time, weight)
			VALUES ($1, $2, $3)
			RETURNING id
		`,
		m.UserID,
		m.DateTime,
		m.Weight.Float64(),
	).Scan(&m.ID)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, fmt.Errorf("user %d: %w", m.UserID, users.ErrUserNotFound)
		}
		if pkg.IsCheckViolationError(err) {
			return nil, fmt.Errorf("%w: %s", chart.ErrNegativeValue, m.Weight)
		}
		return nil, fmt.Errorf("add measurement: %w", err)
	}

	m.DateTime = m.DateTime.In(r.loc)
	return &m, nil
}

// ListBetween returns the user's measurements within [from, to], ascending by date time.
func (r *Repo) ListBetween(ctx context.Context, userID int, from, to time.Time) (_ []Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.list_between")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("from", from.Format(time.RFC3339)))
	span.SetAttributes(attribute.String("to", to.Format(time.RFC3339)))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, user_id, date_time, weight
			FROM measurement
			WHERE user_id = $1 AND date_time >= $2 AND date_time <= $3
			ORDER BY date_time, id
		`,
		userID,
		from,
		to,
	)
	if err != nil {
		return nil, fmt.Errorf("measurements [query]: %w", err)
	}
	defer rows.Close()

	list := make([]Measurement, 0)
	for rows.Next() {
		var (
			m      Measurement
			weight float64
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.DateTime, &weight); err != nil {
			return nil, fmt.Errorf("measurements [rows scan]: %w", err)
		}
		if m.Weight, err = chart.NewValue(weight); err != nil {
			return nil, fmt.Errorf("measurement %d: %w", m.ID, err)
		}
		m.DateTime = m.DateTime.In(r.loc)
		list = append(list, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("measurements [rows error]: %w", err)
	}

	return list, nil
}

// ObservationsBetween feeds the weight chart.
func (r *Repo) ObservationsBetween(ctx context.Context, userID int, from, to time.Time) ([]chart.Observation, error) {
	list, err := r.ListBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	observations := make([]chart.Observation, 0, len(list))
	for _, m := range list {
		observations = append(observations, m.Observation())
	}
	return observations, nil
}

// Years returns the years (in the repo location) from the user's latest
// measurement back to the first one, newest first. Empty if there is no data.
func (r *Repo) Years(ctx context.Context, userID int) (_ []int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.years")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var first, last *time.Time
	err = r.db.QueryRow(
		ctx,
		`SELECT MIN(date_time), MAX(date_time) FROM measurement WHERE user_id = $1`,
		userID,
	).Scan(&first, &last)
	if err != nil {
		return nil, fmt.Errorf("measurement years [query row]: %w", err)
	}

	years := make([]int, 0)
	if first == nil || last == nil {
		return years, nil
	}
	for y := last.In(r.loc).Year(); y >= first.In(r.loc).Year(); y-- {
		years = append(years, y)
	}

	return years, nil
}

// Delete removes the measurement and returns the id of the user it belonged to.
func (r *Repo) Delete(ctx context.Context, id int64) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("id", id))

	var userID int
	err = r.db.QueryRow(
		ctx,
		`DELETE FROM measurement WHERE id = $1 RETURNING user_id`,
		id,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrMeasurementNotFound
		}
		return 0, fmt.Errorf("delete measurement: %w", err)
	}

	return userID, nil
}
