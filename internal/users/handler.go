package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/2beens/weighttracker/internal/telemetry/tracing"
	"github.com/2beens/weighttracker/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=users_test

type usersRepo interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int) (*User, error)
	Add(ctx context.Context, name string) (*User, error)
	Delete(ctx context.Context, id int) error
}

type chartInvalidator interface {
	InvalidateUser(userID int)
}

type Handler struct {
	repo         usersRepo
	invalidators []chartInvalidator
}

type AddUserRequest struct {
	Name string `json:"name"`
}

func NewHandler(repo usersRepo, invalidators ...chartInvalidator) *Handler {
	return &Handler{
		repo:         repo,
		invalidators: invalidators,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.list")
	defer span.End()

	users, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("list users: %s", err)
		http.Error(w, "list users failed", http.StatusInternalServerError)
		return
	}

	usersJson, err := json.Marshal(users)
	if err != nil {
		log.Errorf("marshal users: %s", err)
		http.Error(w, "list users failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, usersJson)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.get")
	defer span.End()

	id, err := pkg.IntPathVar(r, "id")
	if err != nil {
		http.Error(w, "error, user id invalid", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get user %d: %s", id, err)
		http.Error(w, "get user failed", http.StatusInternalServerError)
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("marshal user: %s", err)
		http.Error(w, "get user failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, userJson)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.add")
	defer span.End()

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("add user, unmarshal json params: %s", err)
		http.Error(w, "add user failed", http.StatusBadRequest)
		return
	}

	name, err := normalizeName(req.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := handler.repo.Add(ctx, name)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			http.Error(w, "user already exists", http.StatusConflict)
			return
		}
		log.Errorf("add user: %s", err)
		http.Error(w, "add user failed", http.StatusInternalServerError)
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("marshal user: %s", err)
		http.Error(w, "add user failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("new user added: %+v", user)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.delete")
	defer span.End()

	id, err := pkg.IntPathVar(r, "id")
	if err != nil {
		http.Error(w, "error, user id invalid", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "delete user failed - not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete user %d: %s", id, err)
		http.Error(w, "delete user failed", http.StatusInternalServerError)
		return
	}

	for _, inv := range handler.invalidators {
		inv.InvalidateUser(id)
	}

	log.Debugf("user %d deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidName, maxNameLength)
	}
	return name, nil
}
