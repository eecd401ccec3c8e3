// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

package account

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sentra-id/sentra/internal/platform/apperr"
	"github.com/sentra-id/sentra/internal/platform/constants"
	"github.com/sentra-id/sentra/internal/platform/middleware"
	requestutil "github.com/sentra-id/sentra/internal/platform/request"
	"github.com/sentra-id/sentra/internal/platform/respond"
	"github.com/sentra-id/sentra/internal/platform/validate"
	"github.com/sentra-id/sentra/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements the account management HTTP endpoints.
//
// # Scope
//
// Self-service profile and balance operations for members, plus the
// administrative listing and moderation surface. Role gating is applied per
// route group; non-admin callers of admin routes receive a plain not-found,
// hiding the surface entirely.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] with the member-facing account routes.
//
// # Endpoints
//   - GET    /          : (admin) Filtered, sorted listing of live accounts.
//   - GET    /deleted   : (admin) Listing of soft-deleted accounts.
//   - GET    /profile   : Caller's profile.
//   - PUT    /profile   : Name update (both fields or neither).
//   - GET    /balance   : Caller's balance.
//   - PUT    /balance   : Signed balance delta.
//   - DELETE /me        : Soft-delete the caller's account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/", handler.listUsers)
		r.Get("/deleted", handler.listDeleted)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/profile", handler.getProfile)
		r.Put("/profile", handler.updateProfile)
		r.Get("/balance", handler.getBalance)
		r.Put("/balance", handler.updateBalance)
		r.Delete("/me", handler.deleteSelf)
	})

	return router
}

// AdminRoutes returns a [chi.Router] with the moderation routes.
//
// # Endpoints
//   - GET  /check            : Confirms the caller holds the admin role.
//   - POST /block/{userID}   : Blocks an account.
//   - POST /unblock/{userID} : Unblocks an account.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAdmin)

	router.Get("/check", handler.adminCheck)
	router.Post("/block/{userID}", handler.blockUser)
	router.Post("/unblock/{userID}", handler.unblockUser)

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type updateBalanceRequest struct {
	Amount int64 `json:"amount"`
}

/*
GetProfile returns the caller's own profile.

GET /users/profile

Response:
  - 200: auth.User: Profile snapshot
  - 403: Profile incomplete
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateProfile applies a name change to the caller's profile.

PUT /users/profile

Request:
  - Body: updateProfileRequest (FirstName, LastName; both or neither)

Response:
  - 200: auth.User: Updated profile
  - 400: Partial name update
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
GetBalance returns the caller's current balance.

GET /users/balance

Response:
  - 200: Current balance
*/
func (handler *Handler) getBalance(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	balance, err := handler.accountService.GetBalance(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int64{"balance": balance})
}

/*
UpdateBalance applies a signed delta to the caller's balance.

PUT /users/balance

Request:
  - Body: updateBalanceRequest (Amount, signed)

Response:
  - 200: Resulting balance
  - 400: Policy rejection (uniform message)
  - 403: Admin accounts cannot hold a balance
*/
func (handler *Handler) updateBalance(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateBalanceRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	balance, err := handler.accountService.UpdateBalance(request.Context(), userID, input.Amount)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int64{"balance": balance})
}

/*
DeleteSelf soft-deletes the caller's own account.

DELETE /users/me

Response:
  - 204: No Content: Account soft-deleted
  - 403: Admin accounts cannot be deleted
*/
func (handler *Handler) deleteSelf(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.SoftDeleteSelf(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Administration

// parseListQuery maps the listing query string onto a filter and sort
// descriptor. Absent parameters leave their filter fields nil.
func parseListQuery(request *http.Request) (ListFilter, ListSort, error) {
	query := request.URL.Query()

	var filter ListFilter
	if raw := query.Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, ListSort{}, apperr.ValidationError("Invalid query parameter", apperr.FieldError{
				Field:   "id",
				Message: "must be an integer",
			})
		}
		filter.ID = &id
	}
	if raw := query.Get(auth.FieldFirstName); raw != "" {
		filter.FirstName = &raw
	}
	if raw := query.Get(auth.FieldLastName); raw != "" {
		filter.LastName = &raw
	}
	if raw := query.Get("is_blocked"); raw != "" {
		blocked, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, ListSort{}, apperr.ValidationError("Invalid query parameter", apperr.FieldError{
				Field:   "is_blocked",
				Message: "must be a boolean",
			})
		}
		filter.IsBlocked = &blocked
	}

	sort := ListSort{
		Field: query.Get("sort_by"),
		Order: query.Get("order"),
	}
	return filter, sort, nil
}

/*
ListUsers returns live accounts matching the query filters.

GET /users/?id=&first_name=&last_name=&is_blocked=&sort_by=&order=

Response:
  - 200: Accounts keyed by user ID
  - 404: Caller is not an admin (surface hidden)
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	filter, sort, err := parseListQuery(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	users, err := handler.accountService.ListUsers(request.Context(), filter, sort)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, users)
}

/*
ListDeleted returns all soft-deleted accounts.

GET /users/deleted

Response:
  - 200: Soft-deleted accounts
  - 404: Caller is not an admin (surface hidden)
*/
func (handler *Handler) listDeleted(writer http.ResponseWriter, request *http.Request) {
	users, err := handler.accountService.ListDeleted(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, users)
}

/*
AdminCheck confirms the caller holds the admin role.

GET /admin/check

Response:
  - 200: Confirmation message
  - 404: Caller is not an admin (surface hidden)
*/
func (handler *Handler) adminCheck(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldMessage: "Admin access confirmed"})
}

func (handler *Handler) setBlockStatus(writer http.ResponseWriter, request *http.Request, blocked bool) {
	userID, err := requestutil.IntParam(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.SetBlockStatus(request.Context(), userID, blocked); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"user_id": userID, "block": blocked})
}

/*
BlockUser places a moderation block on an account.

POST /admin/block/{userID}

Response:
  - 200: Confirmation with the new block state
  - 404: Unknown user, or caller is not an admin
*/
func (handler *Handler) blockUser(writer http.ResponseWriter, request *http.Request) {
	handler.setBlockStatus(writer, request, true)
}

/*
UnblockUser lifts a moderation block from an account.

POST /admin/unblock/{userID}

Response:
  - 200: Confirmation with the new block state
  - 404: Unknown user, or caller is not an admin
*/
func (handler *Handler) unblockUser(writer http.ResponseWriter, request *http.Request) {
	handler.setBlockStatus(writer, request, false)
}
