// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/constants"
	"github.com/taibuivan/inkwell/internal/platform/middleware"
	requestutil "github.com/taibuivan/inkwell/internal/platform/request"
	"github.com/taibuivan/inkwell/internal/platform/respond"
	"github.com/taibuivan/inkwell/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
	verifier    middleware.TokenVerifier
	cookies     CookiePolicy
}

// NewHandler constructs a new [Handler].
//
// The verifier guards the logout endpoint.
func NewHandler(service *Service, verifier middleware.TokenVerifier, cookies CookiePolicy) *Handler {
	return &Handler{
		authService: service,
		verifier:    verifier,
		cookies:     cookies,
	}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /signup  : Creates a new account.
//   - POST /login   : Issues an access and a refresh token.
//   - POST /refresh : Issues a new access token from the refresh cookie.
//   - POST /logout  : Clears both cookies (Bearer required).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(handler.verifier))
		r.Post("/logout", handler.logout)
	})

	return router
}

// # Request Payloads

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// # Response Payloads

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is the data of a successful refresh. It never carries a
// refresh token.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

/*
Signup handles the creation of a new user account.

POST /api/auth/signup

Request:
  - Body: signupRequest (Email, Password, DisplayName)

Response:
  - 201: User: Created user profile (no password fields)
  - 400: VALIDATION_ERROR or CONFLICT (email already registered)
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.authService.Signup(request.Context(), SignupInput{
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "User created successfully", user)
}

/*
Login authenticates a user and issues both tokens.

POST /api/auth/login

Description: Returns both tokens in the body for non-browser clients and sets
both as HttpOnly cookies for the web client.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: LoginResponse
  - 401: UNAUTHENTICATED: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.setAccessCookie(writer, pair.AccessToken.Token)
	handler.cookies.setRefreshCookie(writer, pair.RefreshToken.Token)

	respond.OK(writer, "Logged in successfully", LoginResponse{
		AccessToken:  pair.AccessToken.Token,
		RefreshToken: pair.RefreshToken.Token,
	})
}

/*
Refresh issues a new access token using the refresh token cookie.

POST /api/auth/refresh

Description: The refresh token is not rotated and its cookie is left untouched.
A refresh token that fails verification ends the session: both cookies are
cleared. A missing cookie is rejected without touching either cookie.

Response:
  - 200: RefreshResponse
  - 401: UNAUTHENTICATED
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	refreshToken := requestutil.Cookie(request, constants.RefreshTokenCookieName)
	if refreshToken == "" {
		respond.Error(writer, request, apperr.Unauthenticated(msgMissingRefresh))
		return
	}

	accessToken, err := handler.authService.Refresh(request.Context(), refreshToken)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeUnauthenticated) {
			handler.cookies.clearCookies(writer)
		}
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.setAccessCookie(writer, accessToken.Token)

	respond.OK(writer, "Access token refreshed", RefreshResponse{
		AccessToken: accessToken.Token,
	})
}

/*
Logout terminates the browser session.

POST /api/auth/logout

Description: Clears both cookies. Tokens are stateless, so the access token the
caller used stays valid until it expires.

Response:
  - 200: Logged out
  - 401: UNAUTHENTICATED
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.authService.Logout(request.Context(), identity)
	handler.cookies.clearCookies(writer)

	respond.OK(writer, "Logged out successfully", nil)
}
