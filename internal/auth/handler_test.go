package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/upteky/upteky-central/internal/auth"
	"github.com/upteky/upteky-central/internal/shared"
	"github.com/upteky/upteky-central/internal/users"
)

type stubDirectory struct {
	known map[string]users.User
}

func (s *stubDirectory) GetUser(ctx context.Context, id string) (users.User, error) {
	user, ok := s.known[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return user, nil
}

func newSessionRouter(t *testing.T, verifier *auth.TokenVerifier, directory auth.Directory) (chi.Router, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)

	handler := auth.NewHandler(nil, auth.NewService(verifier, directory), sessionManager)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessionManager.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)
			next.ServeHTTP(&commitWriter{ResponseWriter: w, ctx: ctx, req: req, sess: sess, manager: sessionManager}, req.WithContext(ctx))
		})
	})
	r.Route("/api/auth", handler.MountRoutes)
	return r, sessionManager
}

// commitWriter persists the session just before the first write, the
// same ordering the application middleware uses.
type commitWriter struct {
	http.ResponseWriter
	ctx       context.Context
	req       *http.Request
	sess      *shared.Session
	manager   *shared.SessionManager
	committed bool
}

func (w *commitWriter) WriteHeader(statusCode int) {
	if !w.committed {
		w.committed = true
		_ = w.manager.Commit(w.ctx, w.ResponseWriter, w.req, w.sess)
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *commitWriter) Write(data []byte) (int, error) {
	if !w.committed {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

func TestCreateSession(t *testing.T) {
	verifier := auth.NewTokenVerifier("idp-secret")
	directory := &stubDirectory{known: map[string]users.User{
		"user-emp-jane": {ID: "user-emp-jane", Name: "Jane Mathews", Role: "Employee"},
	}}
	router, _ := newSessionRouter(t, verifier, directory)

	token := verifier.Sign(auth.Claims{UserID: "user-emp-jane", Role: "Employee", ExpiresAt: time.Now().Add(time.Hour)})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/session", strings.NewReader(`{"token":"`+token+`"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code)

	var body struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, "user-emp-jane", body.UserID)
	require.Equal(t, "Employee", body.Role)

	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, "test_session", cookies[0].Name)
	require.NotEmpty(t, cookies[0].Value)
}

func TestCreateSessionRejectsBadToken(t *testing.T) {
	verifier := auth.NewTokenVerifier("idp-secret")
	router, _ := newSessionRouter(t, verifier, &stubDirectory{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/session", strings.NewReader(`{"token":"garbage"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestCreateSessionRejectsUnknownRole(t *testing.T) {
	verifier := auth.NewTokenVerifier("idp-secret")
	directory := &stubDirectory{known: map[string]users.User{
		"user-1": {ID: "user-1", Name: "Test", Role: "Employee"},
	}}
	router, _ := newSessionRouter(t, verifier, directory)

	token := verifier.Sign(auth.Claims{UserID: "user-1", Role: "Contractor", ExpiresAt: time.Now().Add(time.Hour)})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/session", strings.NewReader(`{"token":"`+token+`"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestCreateSessionRejectsUnknownSubject(t *testing.T) {
	verifier := auth.NewTokenVerifier("idp-secret")
	router, _ := newSessionRouter(t, verifier, &stubDirectory{})

	token := verifier.Sign(auth.Claims{UserID: "user-gone", Role: "Employee", ExpiresAt: time.Now().Add(time.Hour)})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/session", strings.NewReader(`{"token":"`+token+`"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestDestroySession(t *testing.T) {
	verifier := auth.NewTokenVerifier("idp-secret")
	directory := &stubDirectory{known: map[string]users.User{
		"user-emp-jane": {ID: "user-emp-jane", Name: "Jane Mathews", Role: "Employee"},
	}}
	router, _ := newSessionRouter(t, verifier, directory)

	token := verifier.Sign(auth.Claims{UserID: "user-emp-jane", Role: "Employee", ExpiresAt: time.Now().Add(time.Hour)})
	create := httptest.NewRequest(http.MethodPost, "/api/auth/session", strings.NewReader(`{"token":"`+token+`"}`))
	created := httptest.NewRecorder()
	router.ServeHTTP(created, create)
	require.Equal(t, http.StatusCreated, created.Code)
	cookie := created.Result().Cookies()[0]

	destroy := httptest.NewRequest(http.MethodDelete, "/api/auth/session", nil)
	destroy.AddCookie(cookie)
	destroyed := httptest.NewRecorder()
	router.ServeHTTP(destroyed, destroy)
	require.Equal(t, http.StatusNoContent, destroyed.Code)

	cleared := destroyed.Result().Cookies()
	require.NotEmpty(t, cleared)
	require.Equal(t, -1, cleared[0].MaxAge)
}
