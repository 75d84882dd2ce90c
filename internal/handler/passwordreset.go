package handler

import "net/http"

type resetRequestBody struct {
	Email string `json:"email"`
}

type resetTokenBody struct {
	Token string `json:"token"`
}

type resetConfirmBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// handleResetRequest handles POST /api/password-reset/request.
// The response is 200 whether or not the email is registered; only a mail
// delivery failure surfaces as an error.
func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var body resetRequestBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.resets.Request(r.Context(), body.Email); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	})
}

// handleResetValidate handles POST /api/password-reset/validate.
// Unknown, used, and expired tokens all yield 404.
func (s *Server) handleResetValidate(w http.ResponseWriter, r *http.Request) {
	var body resetTokenBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.resets.Validate(r.Context(), body.Token); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "token is valid"})
}

// handleResetConfirm handles POST /api/password-reset/confirm.
func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var body resetConfirmBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.resets.Confirm(r.Context(), body.Token, body.Password); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password has been reset"})
}
