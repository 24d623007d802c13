// Package authapi implements the public authentication endpoints: register,
// login, and logout. Responses use the uniform envelope; login failures of
// every kind share one 401 body so the API never reveals whether an email is
// registered.
package authapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orgboard/orgboard/internal/api/response"
	"github.com/orgboard/orgboard/internal/config"
	"github.com/orgboard/orgboard/internal/middleware"
	"github.com/orgboard/orgboard/internal/services"
	"github.com/orgboard/orgboard/internal/telemetry"
	"github.com/orgboard/orgboard/internal/validation"
)

// Handlers handles the /api/auth endpoints.
type Handlers struct {
	cfg  *config.Config
	auth *services.AuthService
}

// NewHandlers creates a new auth handler set.
func NewHandlers(cfg *config.Config, auth *services.AuthService) *Handlers {
	return &Handlers{cfg: cfg, auth: auth}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r registerRequest) validate() validation.Errors {
	var errs validation.Errors
	errs = validation.CheckEmail(errs, "email", r.Email)
	errs = validation.CheckRequired(errs, "name", r.Name)
	errs = validation.CheckPassword(errs, "password", r.Password)
	return errs
}

// @Summary      Register
// @Description  Create a user account with a default organization.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      201  {object}  response.Envelope
// @Failure      400  {object}  response.Envelope  "Validation failed"
// @Failure      409  {object}  response.Envelope  "Email already registered"
// @Router       /api/auth/register [post]
// RegisterHandler creates a user, their default organization, and the owner
// membership in one transaction.
// POST /api/auth/register
func (h *Handlers) RegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := response.Start()

		var req registerRequest
		if err := validation.DecodeStrict(c.Request.Body, &req); err != nil {
			telemetry.RegistrationsTotal.WithLabelValues(telemetry.OutcomeFailure).Inc()
			resp.Fail(c, http.StatusBadRequest,
				"Invalid request parameters", response.CodeValidationError, response.CategoryValidation)
			return
		}
		if errs := req.validate(); len(errs) > 0 {
			telemetry.RegistrationsTotal.WithLabelValues(telemetry.OutcomeFailure).Inc()
			resp.FailDetails(c, http.StatusBadRequest,
				"Invalid request parameters", response.CodeValidationError, response.CategoryValidation, errs)
			return
		}

		user, org, err := h.auth.Register(c.Request.Context(), req.Email, req.Name, req.Password)
		if err != nil {
			telemetry.RegistrationsTotal.WithLabelValues(telemetry.OutcomeFailure).Inc()
			if err == services.ErrDuplicateEmail {
				resp.Fail(c, http.StatusConflict,
					"This email is already registered", response.CodeDuplicateEmail, response.CategoryConflict)
				return
			}
			resp.Fail(c, http.StatusInternalServerError,
				"An error occurred during registration", response.CodeRegisterError, response.CategorySystem)
			return
		}

		telemetry.RegistrationsTotal.WithLabelValues(telemetry.OutcomeSuccess).Inc()
		resp.OK(c, http.StatusCreated, "Registration successful", gin.H{
			"user":         user.Public(),
			"organization": org,
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary      Login
// @Description  Verify credentials, issue a JWT, and set the session cookie.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Failure      401  {object}  response.Envelope  "Invalid credentials"
// @Router       /api/auth/login [post]
// LoginHandler authenticates a user and establishes a session. Malformed
// payloads, unknown emails, and wrong passwords all share the same 401 body.
// POST /api/auth/login
func (h *Handlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := response.Start()

		var req loginRequest
		if err := validation.DecodeStrict(c.Request.Body, &req); err != nil {
			h.loginFailed(c, resp)
			return
		}
		if req.Email == "" || req.Password == "" || !validation.ValidEmail(req.Email) {
			h.loginFailed(c, resp)
			return
		}

		result, err := h.auth.Login(c.Request.Context(),
			req.Email, req.Password, c.ClientIP(), c.Request.UserAgent())
		if err != nil {
			if err == services.ErrInvalidCredentials {
				h.loginFailed(c, resp)
				return
			}
			telemetry.LoginsTotal.WithLabelValues(telemetry.OutcomeFailure).Inc()
			resp.Fail(c, http.StatusInternalServerError,
				"An error occurred during login", response.CodeLoginError, response.CategorySystem)
			return
		}

		h.setSessionCookie(c, result.Token)

		telemetry.LoginsTotal.WithLabelValues(telemetry.OutcomeSuccess).Inc()
		resp.OK(c, http.StatusOK, "Login successful", gin.H{
			"token": result.Token,
			"user":  result.User.Public(),
		})
	}
}

func (h *Handlers) loginFailed(c *gin.Context, resp *response.Builder) {
	telemetry.LoginsTotal.WithLabelValues(telemetry.OutcomeFailure).Inc()
	resp.Fail(c, http.StatusUnauthorized,
		"Invalid credentials", response.CodeInvalidCredentials, response.CategoryAuthentication)
}

// @Summary      Logout
// @Description  Delete the current session and clear the session cookie.
// @Tags         Auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       /api/auth/logout [post]
// LogoutHandler deletes the caller's session row and expires the cookie.
// Runs behind the auth gate, so the context always holds the verified token.
// POST /api/auth/logout
func (h *Handlers) LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := response.Start()

		token := c.GetString(middleware.TokenKey)
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			resp.Fail(c, http.StatusInternalServerError,
				"An error occurred during logout", response.CodeLogoutError, response.CategorySystem)
			return
		}

		h.clearSessionCookie(c)
		resp.OK(c, http.StatusOK, "Logout successful", nil)
	}
}

// @Summary      Current user
// @Description  Return the account behind the presented token.
// @Tags         Auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Failure      401  {object}  response.Envelope
// @Router       /api/auth/me [get]
// MeHandler returns the caller's account. Runs behind the auth gate; the
// session row backing the token is checked as well, so a logged-out token
// gets a 401 here even though its signature still verifies.
// GET /api/auth/me
func (h *Handlers) MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := response.Start()

		user, err := h.auth.Me(c.Request.Context(), c.GetString(middleware.TokenKey))
		if err != nil {
			if err == services.ErrInvalidCredentials {
				resp.Fail(c, http.StatusUnauthorized,
					"Unauthorized", response.CodeUnauthorized, response.CategoryAuthentication)
				return
			}
			resp.Fail(c, http.StatusInternalServerError,
				"An error occurred while fetching the user", response.CodeFetchUserError, response.CategorySystem)
			return
		}

		resp.OK(c, http.StatusOK, "User fetched successfully", gin.H{
			"user": user.Public(),
		})
	}
}

func (h *Handlers) setSessionCookie(c *gin.Context, token string) {
	cookie := h.cfg.Auth.Cookie
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(cookie.Name, token,
		int(h.cfg.Auth.TokenTTL.Seconds()), "/", cookie.Domain, cookie.Secure, true)
}

func (h *Handlers) clearSessionCookie(c *gin.Context) {
	cookie := h.cfg.Auth.Cookie
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(cookie.Name, "", -1, "/", cookie.Domain, cookie.Secure, true)
}
