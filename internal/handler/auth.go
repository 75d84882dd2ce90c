package handler

import (
	"net/http"

	"github.com/voyago/trip-planner/backend/internal/domain"
	"github.com/voyago/trip-planner/backend/internal/service"
)

type registerRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password2"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse carries the account plus its bearer token after login.
type authResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// handleRegister handles POST /api/register.
// Duplicate email yields 409.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	user, err := s.auth.Register(r.Context(), service.RegisterInput{
		FirstName:       body.FirstName,
		LastName:        body.LastName,
		Email:           body.Email,
		Password:        body.Password,
		PasswordConfirm: body.PasswordConfirm,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// handleLogin handles POST /api/login. Bad credentials yield 401 with a
// message that does not distinguish unknown email from wrong password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	user, token, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}
