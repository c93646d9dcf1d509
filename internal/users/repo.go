package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/weighttracker/internal/db"
	"github.com/2beens/weighttracker/internal/telemetry/tracing"
	"github.com/2beens/weighttracker/pkg"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db db.Conn
}

func NewRepo(conn db.Conn) *Repo {
	return &Repo{
		db: conn,
	}
}

func (r *Repo) List(ctx context.Context) (_ []User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, name, created_at
			FROM users
			ORDER BY name
		`,
	)
	if err != nil {
		return nil, fmt.Errorf("users [query]: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("users [rows scan]: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users [rows error]: %w", err)
	}

	return users, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	user := &User{}
	err = r.db.QueryRow(
		ctx,
		`SELECT id, name, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user [query row]: %w", err)
	}

	return user, nil
}

func (r *Repo) Add(ctx context.Context, name string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("name", name))

	user := &User{Name: name}
	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO users (name)
			VALUES ($1)
			RETURNING id, created_at
		`,
		name,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("add user: %w", err)
	}

	return user, nil
}

// Delete removes the user together with all of its measurements.
func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
