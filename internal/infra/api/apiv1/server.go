package apiv1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"promo-redemption/internal/domain"
	"promo-redemption/internal/domain/model"
	"promo-redemption/internal/infra/logging"
	"promo-redemption/internal/usecase"
)

const maxBodyBytes = 1 << 16

// Server holds the v1 handlers.
type Server struct {
	promo usecase.PromoCodeUseCase
	auth  *AuthManager
	log   *zerolog.Logger
}

func NewServer(promo usecase.PromoCodeUseCase, auth *AuthManager, logger *zerolog.Logger) *Server {
	return &Server{promo: promo, auth: auth, log: logger}
}

// RegisterAPIV1 mounts the v1 routes at absolute paths on r.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Route("/api/v1/promo-codes", func(r chi.Router) {
		r.Use(s.auth.RequireUser)
		r.Post("/apply", s.applyPromoCode)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Post("/", s.createPromoCode)
			r.Get("/{code}", s.getPromoCode)
			r.Patch("/{code}", s.updatePromoCode)
			r.Get("/{code}/usages", s.listUsages)
		})
	})
}

func (s *Server) applyPromoCode(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if !s.decode(w, r, &req) {
		return
	}
	claims := claimsFrom(r.Context())
	res, err := s.promo.Apply(r.Context(), claims.Subject, req.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ApplyResponse{
		ExpiresAt: res.State.ExpiresAt,
		IsActive:  res.State.IsActive,
		DaysAdded: res.DaysAdded,
	})
}

func (s *Server) createPromoCode(w http.ResponseWriter, r *http.Request) {
	var req CreatePromoCodeRequest
	if !s.decode(w, r, &req) {
		return
	}
	admin := claimsFrom(r.Context()).Subject
	in := usecase.CreatePromoCodeInput{
		Action:      model.PromoAction(req.Action),
		ValidUntil:  req.ValidUntil,
		MaxUses:     req.MaxUses,
		Code:        req.Code,
		CreatedBy:   &admin,
		Description: req.Description,
	}
	if req.ValidFrom != nil {
		in.ValidFrom = *req.ValidFrom
	}
	p, err := s.promo.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPromoCode(p))
}

func (s *Server) getPromoCode(w http.ResponseWriter, r *http.Request) {
	p, err := s.promo.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromoCode(p))
}

func (s *Server) updatePromoCode(w http.ResponseWriter, r *http.Request) {
	var req UpdatePromoCodeRequest
	if !s.decode(w, r, &req) {
		return
	}
	admin := claimsFrom(r.Context()).Subject
	p, err := s.promo.SetDisabled(r.Context(), &admin, chi.URLParam(r, "code"), *req.Disabled)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromoCode(p))
}

func (s *Server) listUsages(w http.ResponseWriter, r *http.Request) {
	rows, err := s.promo.ListUsages(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUsages(rows))
}

// decode reads and validates a JSON body. On failure it writes a 400 and
// returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		writeJSON(w, http.StatusBadRequest, Error{Error: msg, Reason: domain.ReasonInvalidInput})
		return false
	}
	if err := validateStruct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, Error{Error: err.Error(), Reason: domain.ReasonInvalidInput})
		return false
	}
	return true
}

// writeError maps use case errors to HTTP. Validation messages are returned
// verbatim; infrastructure details stay in the logs.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := domain.IsValidation(err); ok {
		status := http.StatusBadRequest
		switch ve.Reason {
		case domain.ReasonNotFound:
			status = http.StatusNotFound
		case domain.ReasonCannotUse:
			status = http.StatusConflict
		}
		writeJSON(w, status, Error{Error: ve.Error(), Reason: ve.Reason})
		return
	}
	if errors.Is(err, domain.ErrDuplicateCode) {
		writeJSON(w, http.StatusConflict, Error{Error: err.Error(), Reason: "duplicate"})
		return
	}

	l := logging.With(r.Context(), s.log)
	l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	if domain.IsInfra(err) {
		writeJSON(w, http.StatusServiceUnavailable, Error{Error: "service temporarily unavailable, please retry"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, Error{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
