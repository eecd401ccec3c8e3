// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sentra-id/sentra/internal/platform/constants"
	"github.com/sentra-id/sentra/internal/platform/middleware"
	requestutil "github.com/sentra-id/sentra/internal/platform/request"
	"github.com/sentra-id/sentra/internal/platform/respond"
	"github.com/sentra-id/sentra/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the session-lifecycle HTTP endpoints.
//
// # Scope
//
// This handler manages the entry points of the user lifecycle: registration,
// login, token refresh, logout, and password rotation. It is strictly
// responsible for transport concerns (status codes, form/JSON decoding,
// validation); all decisions live in [Service].
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with session-lifecycle routes.
//
// # Endpoints
//   - POST /register        : Creates or revives an account.
//   - POST /login           : Authenticates and returns a token pair.
//   - POST /refresh         : Exchanges a refresh token for a new access token.
//   - POST /change-password : Rotates a password (old password as proof).
//   - POST /logout          : Revokes the presented access token.
//   - GET  /me              : Returns the authenticated caller's user ID.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/change-password", handler.changePassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

/*
Register handles the creation (or revival) of a user account.

POST /auth/register

Request:
  - Body: registerRequest (Email, Password)

Response:
  - 201: RegisterResult: The enrolled email
  - 400: Validation failure, or a live account already owns the email
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
Login authenticates credentials and opens a session.

POST /auth/login

Description: Accepts a URL-encoded form with OAuth2-style field names: the
email travels in "username" alongside "password".

Response:
  - 200: TokenGrant: Access and refresh tokens, token type "bearer"
  - 401: Invalid credentials (generic, reason never disclosed)
  - 403: Account unavailable
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	email := request.PostFormValue("username")
	password := request.PostFormValue("password")

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email)
	validator.Required(FieldPassword, password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	grant, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    email,
		Password: password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, grant)
}

/*
Refresh issues a new access token using a live refresh token.

POST /auth/refresh

Request:
  - Body: refreshRequest (RefreshToken)

Response:
  - 200: AccessGrant: New access token
  - 401: Refresh token invalid, expired, or revoked
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRefreshToken, input.RefreshToken)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	grant, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, grant)
}

/*
Logout revokes the presented access token.

POST /auth/logout

Description: The token revoked is the same one that authenticated this
request. The paired refresh token stays live.

Response:
  - 204: No Content: Token revoked (idempotent)
  - 401: No or invalid bearer token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), identity.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
ChangePassword rotates an account's password.

POST /auth/change-password

Description: Public endpoint; knowledge of the old password is the proof of
ownership. Existing sessions are not revoked.

Request:
  - Body: changePasswordRequest (Email, OldPassword, NewPassword)

Response:
  - 200: Confirmation message
  - 401: Old password incorrect
  - 404: No live account with this email
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	var input changePasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldOldPassword, input.OldPassword).
		Required(FieldNewPassword, input.NewPassword).
		Password(FieldNewPassword, input.NewPassword)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ChangePassword(request.Context(), ChangePasswordInput{
		Email:       input.Email,
		OldPassword: input.OldPassword,
		NewPassword: input.NewPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{constants.FieldMessage: "Password updated successfully"})
}

/*
Me returns the identity resolved from the presented access token.

GET /auth/me

Response:
  - 200: The caller's user ID
  - 401: No or invalid bearer token
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int64{"user_id": userID})
}
