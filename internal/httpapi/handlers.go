// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package httpapi

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/samber/oops"

	"github.com/staffhub/staffhub/internal/auth"
	"github.com/staffhub/staffhub/internal/observability"
	"github.com/staffhub/staffhub/pkg/errutil"
)

// CookieConfig holds session cookie settings.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Handler serves the portal's REST API.
type Handler struct {
	auth      *auth.Service
	resets    *auth.ResetService
	directory *auth.DirectoryService
	cookie    CookieConfig
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewHandler creates a Handler. metrics may be nil when the
// observability server is disabled.
func NewHandler(
	authSvc *auth.Service,
	resetSvc *auth.ResetService,
	directorySvc *auth.DirectoryService,
	cookie CookieConfig,
	logger *slog.Logger,
	metrics *observability.Metrics,
) (*Handler, error) {
	if authSvc == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if resetSvc == nil {
		return nil, oops.Errorf("reset service is required")
	}
	if directorySvc == nil {
		return nil, oops.Errorf("directory service is required")
	}
	if cookie.Name == "" {
		return nil, oops.Errorf("cookie name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		auth:      authSvc,
		resets:    resetSvc,
		directory: directorySvc,
		cookie:    cookie,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Router builds the API router with CORS applied ahead of routing, so
// preflights succeed even for paths that do not resolve to a route.
func (h *Handler) Router(allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(h.requestMetrics)

	api := r.PathPrefix("/api/v1/employees").Subrouter()
	api.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/me", h.handleMe).Methods(http.MethodGet)
	api.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/password_reset_request", h.handleResetRequest).Methods(http.MethodPost)
	api.HandleFunc("/update-password", h.handleUpdatePassword).Methods(http.MethodPost)

	r.HandleFunc("/api/v1/employees", h.handleProvision).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/employees", h.handleList).Methods(http.MethodGet)
	api.HandleFunc("/{employee_id}", h.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/{employee_id}", h.handleUpdate).Methods(http.MethodPut)

	return CORSMiddleware(allowedOrigins)(r)
}

// requestMetrics records request counts by route template and status.
func (h *Handler) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		h.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// sessionToken returns the session token from the request cookie, or
// "" when the cookie is absent.
func (h *Handler) sessionToken(r *http.Request) string {
	c, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

// setSessionCookie writes the session cookie. HttpOnly keeps the token
// away from frontend scripts; SameSite=Lax still sends it on the
// portal's top-level navigations.
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clientIP extracts the peer address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type loginRequest struct {
	EmployeeID    string `json:"employee_id"`
	OfficialEmail string `json:"official_email"`
	Password      string `json:"password"`
}

type loginResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	EmployeeID string `json:"employee_id"`
}

// handleLogin implements POST /api/v1/employees/login.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, _, token, err := h.auth.Login(r.Context(), auth.LoginInput{
		EmployeeID:    req.EmployeeID,
		OfficialEmail: req.OfficialEmail,
		Password:      req.Password,
		PriorToken:    h.sessionToken(r),
		UserAgent:     r.UserAgent(),
		IPAddress:     clientIP(r),
	})
	if err != nil {
		h.recordLogin(errutil.Code(err))
		h.writeError(w, r, err)
		return
	}

	h.recordLogin("success")
	if h.metrics != nil {
		h.metrics.SessionsActive.Inc()
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, loginResponse{
		Success:    true,
		Message:    "Login successful",
		EmployeeID: profile.EmployeeID,
	})
}

func (h *Handler) recordLogin(code string) {
	if h.metrics == nil {
		return
	}
	outcome := "error"
	switch code {
	case "success":
		outcome = "success"
	case auth.CodeInvalidCredentials:
		outcome = "invalid_credentials"
	case auth.CodePasswordUnset:
		outcome = "password_unset"
	case auth.CodeValidationFailed:
		outcome = "validation_failed"
	}
	h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
}

// meResponse mirrors the employee row the frontend already consumes,
// with the identifier doubled into "id".
type meResponse struct {
	ID string `json:"id"`
	auth.Profile
}

// handleMe implements GET /api/v1/employees/me. The profile is read
// fresh on every call.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.auth.WhoAmI(r.Context(), h.sessionToken(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{ID: profile.EmployeeID, Profile: profile})
}

type logoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleLogout implements POST /api/v1/employees/logout.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, err := h.auth.Logout(r.Context(), h.sessionToken(r))
	if err != nil {
		// The cookie is cleared regardless; a dangling cookie naming a
		// dead session would re-trip this 401 forever.
		h.clearSessionCookie(w)
		h.writeError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.SessionsActive.Dec()
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, logoutResponse{Success: true, Message: "Logged out successfully"})
}

type resetRequestRequest struct {
	EmployeeID    string `json:"employee_id"`
	OfficialEmail string `json:"official_email"`
}

// handleResetRequest implements POST /api/v1/employees/password_reset_request.
func (h *Handler) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.resets.RequestReset(r.Context(), req.EmployeeID, req.OfficialEmail); err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ResetsTotal.WithLabelValues("requested").Inc()
	}
	writeJSON(w, http.StatusOK, logoutResponse{Success: true, Message: "Reset link sent to official email"})
}

type updatePasswordRequest struct {
	Token         string `json:"token"`
	EmployeeID    string `json:"employee_id"`
	OfficialEmail string `json:"official_email"`
	NewPassword   string `json:"new_password"`
}

type updatePasswordResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	User    updatePasswordUser `json:"user"`
}

type updatePasswordUser struct {
	EmployeeID    string `json:"employee_id"`
	OfficialEmail string `json:"official_email"`
}

// handleUpdatePassword implements POST /api/v1/employees/update-password.
// A successful redemption signs the employee in on a fresh session.
func (h *Handler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, _, token, err := h.resets.ConfirmReset(r.Context(), auth.ConfirmResetInput{
		Token:         req.Token,
		EmployeeID:    req.EmployeeID,
		OfficialEmail: req.OfficialEmail,
		NewPassword:   req.NewPassword,
		UserAgent:     r.UserAgent(),
		IPAddress:     clientIP(r),
	})
	if err != nil {
		h.recordReset(errutil.Code(err))
		h.writeError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ResetsTotal.WithLabelValues("redeemed").Inc()
		h.metrics.SessionsActive.Inc()
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, updatePasswordResponse{
		Success: true,
		Message: "Password updated successfully",
		User: updatePasswordUser{
			EmployeeID:    profile.EmployeeID,
			OfficialEmail: profile.OfficialEmail,
		},
	})
}

// recordReset counts redemption outcomes against the token ledger.
// Validation failures never reached a token, so they are not counted.
func (h *Handler) recordReset(code string) {
	if h.metrics == nil || code == auth.CodeValidationFailed {
		return
	}
	stage := "rejected"
	if code == auth.CodeResetTokenExpired {
		stage = "expired"
	}
	h.metrics.ResetsTotal.WithLabelValues(stage).Inc()
}

type provisionRequest struct {
	EmployeeID    string `json:"employee_id"`
	OfficialEmail string `json:"official_email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Department    string `json:"department"`
	Designation   string `json:"designation"`
	Password      string `json:"password"`
}

// handleProvision implements POST /api/v1/employees. An omitted
// password creates a passwordless account; the employee sets one
// through password recovery.
func (h *Handler) handleProvision(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	emp, err := h.directory.Provision(r.Context(), auth.ProvisionInput{
		EmployeeID:    req.EmployeeID,
		OfficialEmail: req.OfficialEmail,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Department:    req.Department,
		Designation:   req.Designation,
		Password:      req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, emp.Profile())
}

// handleList implements GET /api/v1/employees.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.directory.ListProfiles(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// handleGet implements GET /api/v1/employees/{employee_id}.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.directory.GetProfile(r.Context(), mux.Vars(r)["employee_id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// updateRequest carries partial profile changes. Absent fields stay as
// they are; the employee ID in the path is the immutable key.
type updateRequest struct {
	OfficialEmail *string `json:"official_email"`
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Department    *string `json:"department"`
	Designation   *string `json:"designation"`
}

// handleUpdate implements PUT /api/v1/employees/{employee_id}.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, err := h.directory.UpdateProfile(r.Context(), mux.Vars(r)["employee_id"], auth.UpdateProfileInput{
		OfficialEmail: req.OfficialEmail,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Department:    req.Department,
		Designation:   req.Designation,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
