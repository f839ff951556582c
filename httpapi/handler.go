package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/margitantal68/authgate"
	"github.com/margitantal68/authgate/middleware"
)

// Handler owns the route table for the authgate HTTP surface.
type Handler struct {
	svc *authgate.Service
	log *slog.Logger
}

// New returns a handler over the given service. A nil logger disables
// request logging.
func New(svc *authgate.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{svc: svc, log: logger}
}

// Routes builds the full route table, wrapped with client-IP injection and
// request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	guard := middleware.Guard(h.svc)
	limited := middleware.RateLimit(h.svc, middleware.ClientKey)

	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.Handle("GET /users", guard(http.HandlerFunc(h.listUsers)))
	mux.HandleFunc("DELETE /users/{id}", h.deleteUser)
	mux.Handle("GET /profile", guard(http.HandlerFunc(h.profile)))
	mux.Handle("GET /protected", guard(http.HandlerFunc(h.protected)))
	mux.Handle("GET /limited/", limited(http.HandlerFunc(h.limitedEndpoint)))

	return h.withClientIP(h.withRequestLog(mux))
}

type registerRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), authgate.RegisterRequest{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, user)
	case errors.Is(err, authgate.ErrUsernameTaken):
		writeDetail(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, authgate.ErrEmailTaken):
		writeDetail(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, authgate.ErrInvalidRegistration):
		writeDetail(w, http.StatusBadRequest, "Invalid registration request")
	default:
		h.serverError(w, r, err)
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message         string `json:"message"`
	Username        string `json:"username"`
	AccessToken     string `json:"access_token"`
	AccessTokenType string `json:"access_token_type"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.svc.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, loginResponse{
			Message:         "Login successful",
			Username:        result.Username,
			AccessToken:     result.AccessToken,
			AccessTokenType: "bearer",
		})
	case errors.Is(err, authgate.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, "Invalid username or password")
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteUser(r.Context(), r.PathValue("id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
	case errors.Is(err, authgate.ErrUserNotFound):
		writeDetail(w, http.StatusNotFound, "User not found")
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"username": principal.Username,
		"fullname": principal.FullName,
		"email":    principal.Email,
	})
}

func (h *Handler) protected(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Access granted",
		"username": principal.Username,
	})
}

func (h *Handler) limitedEndpoint(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Limited endpoint: 5 requests per minutes.",
	})
}

func (h *Handler) withClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := authgate.WithClientIP(r.Context(), middleware.ClientKey(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		h.log.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", recorder.status),
			slog.Duration("duration", time.Since(start)),
		)
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

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
