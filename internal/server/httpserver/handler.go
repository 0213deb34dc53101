package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/models"
)

type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authenticateResponse struct {
	Token string `json:"token"`
}

// updateRequest leaves Enabled nil when the client does not send it, so a
// partial body does not disable the account. CreatedAt is accepted and
// ignored.
type updateRequest struct {
	ID            int64      `json:"id"`
	Login         string     `json:"login"`
	Password      string     `json:"password"`
	Email         string     `json:"email"`
	Enabled       *bool      `json:"enabled"`
	DeactivatedAt *time.Time `json:"deactivatedAt"`
	CreatedAt     *time.Time `json:"createdAt"`
}

func (s *HTTPServer) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, account, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Authenticated", "account_id", account.ID)
	writeJSON(w, http.StatusOK, authenticateResponse{Token: token})
}

func (s *HTTPServer) CreateUser(w http.ResponseWriter, r *http.Request) {
	var candidate models.Account
	if err := readJSON(w, r, &candidate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.accounts.Create(r.Context(), &candidate)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Account created", "account_id", created.ID, "login", created.Login)
	w.Header().Set("Location", "/api/users/"+strconv.FormatInt(created.ID, 10))
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	account, err := s.accounts.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (s *HTTPServer) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := s.accounts.ListPage(r.Context(), queryInt(r, "pageNumber", 1), queryInt(r, "pageSize", 10))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *HTTPServer) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == 0 {
		s.respondError(w, r, &common.ValidationError{
			Fields: map[string]string{"id": "cannot be blank"},
			Err:    errors.New("id is required"),
		})
		return
	}

	candidate := &models.Account{
		ID:            req.ID,
		Login:         req.Login,
		Secret:        req.Password,
		Email:         req.Email,
		DeactivatedAt: req.DeactivatedAt,
	}

	if req.Enabled != nil {
		candidate.Enabled = *req.Enabled
	} else {
		current, err := s.accounts.GetByID(r.Context(), req.ID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		candidate.Enabled = current.Enabled
	}

	updated, err := s.accounts.Update(r.Context(), candidate)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Account updated", "account_id", updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteUser disables the account whose id is the request body.
func (s *HTTPServer) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var id int64
	if err := readJSON(w, r, &id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.accounts.SoftDelete(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Account disabled", "account_id", account.ID)
	writeJSON(w, http.StatusOK, account)
}

// RealDeleteUser removes the account whose id is the request body. There is
// no undo.
func (s *HTTPServer) RealDeleteUser(w http.ResponseWriter, r *http.Request) {
	var id int64
	if err := readJSON(w, r, &id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.accounts.HardDelete(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Warn(r.Context(), "Account deleted", "account_id", account.ID)
	writeJSON(w, http.StatusOK, account)
}

func (s *HTTPServer) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "validation failed", Fields: ve.Fields})
		return
	}

	status, message := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "error", err)
	}
	writeError(w, status, message)
}
