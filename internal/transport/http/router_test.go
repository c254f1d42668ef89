package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-auth-nosql/internal/config"
	"github.com/go-auth-nosql/internal/domain"
	jwtinfra "github.com/go-auth-nosql/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory fakes standing in for DynamoDB so the whole HTTP surface can be
// exercised end to end.

type fakeOTPRepo struct {
	mu      sync.Mutex
	records map[string]*domain.OTP
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{records: make(map[string]*domain.OTP)}
}

func (f *fakeOTPRepo) Issue(ctx context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, email)
	f.records[email] = &domain.OTP{
		Email:     email,
		Code:      code,
		CreatedAt: time.Now().Unix(),
		ExpiresAt: time.Now().Add(10 * time.Minute).Unix(),
	}
	return nil
}

func (f *fakeOTPRepo) Find(ctx context.Context, email string) (*domain.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.records[email]
	if !ok {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	return o, nil
}

func (f *fakeOTPRepo) Consume(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, email)
	return nil
}

func (f *fakeOTPRepo) code(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.records[email]; ok {
		return o.Code
	}
	return ""
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // by user_id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Put(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.UserID] = &cp
	return nil
}

func (f *fakeUserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
}

type fakeMailer struct{}

func (fakeMailer) SendEmail(to, subject, body string) error { return nil }

// --- fixture ---

type fixture struct {
	router http.Handler
	otps   *fakeOTPRepo
	users  *fakeUserRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:      "test-secret",
		JWTExpiry:      time.Hour,
		CookieName:     "jwt",
		CookieMaxAge:   time.Hour,
		AllowedOrigins: []string{"http://localhost:5173"},
		MaxBodyBytes:   16 * 1024,
	}
	provider, err := jwtinfra.NewProvider(cfg)
	require.NoError(t, err)

	otps := newFakeOTPRepo()
	users := newFakeUserRepo()
	router := NewRouter(cfg, &Deps{
		UserRepo:    users,
		OTPRepo:     otps,
		Mailer:      fakeMailer{},
		JWTProvider: provider,
	})
	return &fixture{router: router, otps: otps, users: users}
}

func (fx *fixture) post(t *testing.T, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(http.MethodPost, path, &buf)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	fx.router.ServeHTTP(rr, r)
	return rr
}

func (fx *fixture) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	fx.router.ServeHTTP(rr, r)
	return rr
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env.Message
}

func jwtCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "jwt" {
			return c
		}
	}
	t.Fatal("no jwt cookie in response")
	return nil
}

func registerBody(email, otp string) map[string]string {
	return map[string]string{
		"email":    email,
		"otp":      otp,
		"username": "alice",
		"password": "Passw0rd!",
		"mobile":   "5551234",
	}
}

// --- scenarios ---

func TestEndToEnd_RegisterThenReplay(t *testing.T) {
	fx := newFixture(t)

	rr := fx.post(t, "/api/v1/auth/otp", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, rr.Code)
	code := fx.otps.code("a@x.com")
	require.Len(t, code, 6)

	rr = fx.post(t, "/api/v1/auth/register", registerBody("a@x.com", code))
	require.Equal(t, http.StatusCreated, rr.Code)
	cookie := jwtCookie(t, rr)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	u, err := fx.users.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	// The code was consumed: replaying it must land on "not found".
	rr = fx.post(t, "/api/v1/auth/register", registerBody("a@x.com", code))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "OTP expired or not found", message(t, rr))
}

func TestEndToEnd_DuplicateEmailConsumesOTP(t *testing.T) {
	fx := newFixture(t)

	// First registration.
	fx.post(t, "/api/v1/auth/otp", map[string]string{"email": "a@x.com"})
	rr := fx.post(t, "/api/v1/auth/register", registerBody("a@x.com", fx.otps.code("a@x.com")))
	require.Equal(t, http.StatusCreated, rr.Code)

	// Fresh OTP for the same email; verification succeeds but the account
	// already exists — and the code is gone afterwards.
	fx.post(t, "/api/v1/auth/otp", map[string]string{"email": "a@x.com"})
	code := fx.otps.code("a@x.com")
	rr = fx.post(t, "/api/v1/auth/register", registerBody("a@x.com", code))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "User already exists", message(t, rr))
	assert.Empty(t, fx.otps.code("a@x.com"))
}

func TestEndToEnd_WrongCodeThenRightCode(t *testing.T) {
	fx := newFixture(t)

	fx.post(t, "/api/v1/auth/otp", map[string]string{"email": "a@x.com"})
	code := fx.otps.code("a@x.com")

	wrong := "000000"
	if wrong == code {
		wrong = "999999"
	}
	rr := fx.post(t, "/api/v1/auth/register", registerBody("a@x.com", wrong))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid OTP", message(t, rr))

	// The mismatch did not consume the record.
	rr = fx.post(t, "/api/v1/auth/register", registerBody("a@x.com", code))
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestEndToEnd_LoginLogoutMe(t *testing.T) {
	fx := newFixture(t)

	fx.post(t, "/api/v1/auth/otp", map[string]string{"email": "a@x.com"})
	rr := fx.post(t, "/api/v1/auth/register", registerBody("a@x.com", fx.otps.code("a@x.com")))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = fx.post(t, "/api/v1/auth/login", map[string]string{"email": "a@x.com", "password": "Passw0rd!"})
	require.Equal(t, http.StatusOK, rr.Code)
	cookie := jwtCookie(t, rr)

	rr = fx.get(t, "/api/v1/auth/me", cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		User struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "a@x.com", resp.User.Email)

	rr = fx.get(t, "/api/v1/auth/me")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = fx.post(t, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Negative(t, jwtCookie(t, rr).MaxAge)
}

func TestEndToEnd_LoginDoesNotLeakAccountExistence(t *testing.T) {
	fx := newFixture(t)

	fx.post(t, "/api/v1/auth/otp", map[string]string{"email": "a@x.com"})
	fx.post(t, "/api/v1/auth/register", registerBody("a@x.com", fx.otps.code("a@x.com")))

	unknown := fx.post(t, "/api/v1/auth/login", map[string]string{"email": "ghost@x.com", "password": "pw"})
	wrongPw := fx.post(t, "/api/v1/auth/login", map[string]string{"email": "a@x.com", "password": "wrong"})

	assert.Equal(t, unknown.Code, wrongPw.Code)
	assert.Equal(t, message(t, unknown), message(t, wrongPw))
}
