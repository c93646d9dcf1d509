package impedance

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

func NewRepo(conn db.Conn, loc *time.Location) *Repo {
	if loc == nil {
		loc = time.Local
	}
	return &Repo{
		db:  conn,
		loc: loc,
	}
}

func (r *Repo) Add(ctx context.Context, userID int, measuredAt time.Time, ohms chart.Value) (_ *Impedance, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.impedance.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	imp := &Impedance{
		UserID:     userID,
		MeasuredAt: measuredAt.In(r.loc),
		Ohms:       ohms,
	}
	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO impedance (user_id, date_time, impedance)
			VALUES ($1, $2, $3)
			RETURNING id
		`,
		userID,
		measuredAt,
		ohms.Float64(),
	).Scan(&imp.ID)
	if err != nil {
		switch {
		case pkg.IsForeignKeyViolationError(err):
			return nil, fmt.Errorf("user %d: %w", userID, users.ErrUserNotFound)
		case pkg.IsCheckViolationError(err):
			return nil, fmt.Errorf("%w: %s", chart.ErrNegativeValue, ohms)
		default:
			return nil, fmt.Errorf("add impedance: %w", err)
		}
	}

	return imp, nil
}

// ObservationsBetween returns the user's impedance readings within [from, to],
// ascending, as chart observations.
func (r *Repo) ObservationsBetween(ctx context.Context, userID int, from, to time.Time) (_ []chart.Observation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.impedance.observations_between")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, date_time, impedance
			FROM impedance
			WHERE user_id = $1 AND date_time BETWEEN $2 AND $3
			ORDER BY date_time, id
		`,
		userID,
		from,
		to,
	)
	if err != nil {
		return nil, fmt.Errorf("impedance [query]: %w", err)
	}
	defer rows.Close()

	observations := make([]chart.Observation, 0)
	for rows.Next() {
		var (
			id         int64
			measuredAt time.Time
			ohms       float64
		)
		if err := rows.Scan(&id, &measuredAt, &ohms); err != nil {
			return nil, fmt.Errorf("impedance [rows scan]: %w", err)
		}
		o, err := chart.NewObservation(id, measuredAt.In(r.loc), ohms)
		if err != nil {
			return nil, fmt.Errorf("impedance %d: %w", id, err)
		}
		observations = append(observations, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("impedance [rows error]: %w", err)
	}

	return observations, nil
}

// ListBetween is ObservationsBetween in the API representation.
func (r *Repo) ListBetween(ctx context.Context, userID int, from, to time.Time) ([]Impedance, error) {
	observations, err := r.ObservationsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	list := make([]Impedance, 0, len(observations))
	for _, o := range observations {
		list = append(list, Impedance{
			ID:         o.ID,
			UserID:     userID,
			MeasuredAt: o.Timestamp,
			Ohms:       o.Value,
		})
	}
	return list, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.impedance.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("id", id))

	var userID int
	err = r.db.QueryRow(
		ctx,
		`DELETE FROM impedance WHERE id = $1 RETURNING user_id`,
		id,
	).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrImpedanceNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("delete impedance: %w", err)
	}

	return userID, nil
}
