package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobportal/config"
	"jobportal/internal/delivery/api/middleware"
	"jobportal/internal/delivery/api/router"
	"jobportal/internal/delivery/api/router/handler"
	deliverycontext "jobportal/internal/delivery/context"
	"jobportal/internal/domain/entity"
	"jobportal/internal/domain/service"
	"jobportal/internal/infra/auth"
	"jobportal/internal/infra/lock"
	"jobportal/internal/infra/persistence/memory"
	"jobportal/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPassword = "Correct#Horse1"
	testKey      = "0123456789abcdef0123456789abcdef"
)

type discardPublisher struct{}

func (discardPublisher) PublishPasswordReset(context.Context, *service.PasswordResetEvent) error {
	return nil
}

func (discardPublisher) Close() error { return nil }

type apiFixture struct {
	e        *echo.Echo
	hasher   service.PasswordHasher
	accounts *memory.Store
}

func newAPIFixture(t *testing.T, env string) *apiFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Env.Env = env
	cfg.JWT.SigningKey = testKey
	cfg.ApplyDefaults()
	cfg.Auth.BcryptCost = bcrypt.MinCost

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	hasher := auth.NewBcryptHasher(cfg)
	tokens, err := auth.NewJWTService(cfg, logger)
	require.NoError(t, err)
	locker := lock.NewMemoryLocker()
	secrets := auth.NewSecretGenerator()

	authUC := impl.NewAuthService(impl.AuthServiceParams{
		AccountRepo:      memory.NewAccountRepository(store),
		LoginAttemptRepo: memory.NewLoginAttemptRepository(store),
		RefreshTokenRepo: memory.NewRefreshTokenRepository(store),
		Hasher:           hasher,
		TokenService:     tokens,
		Locker:           locker,
		Secrets:          secrets,
		Config:           cfg,
		Logger:           logger,
	})
	passwordUC := impl.NewPasswordService(impl.PasswordServiceParams{
		TxManager:   memory.NewTransactionManager(store),
		AccountRepo: memory.NewAccountRepository(store),
		ResetRepo:   memory.NewPasswordResetRepository(store),
		Hasher:      hasher,
		Locker:      locker,
		Secrets:     secrets,
		Publisher:   discardPublisher{},
		Config:      cfg,
		Logger:      logger,
	})

	e := NewEcho(cfg, logger, router.RouterParams{
		AuthHandler: handler.NewAuthHandler(handler.AuthHandlerParams{
			AuthUC:     authUC,
			PasswordUC: passwordUC,
			Logger:     logger,
		}),
		AuthMiddleware: middleware.NewAuthMiddleware(tokens, logger),
		Config:         cfg,
	})

	return &apiFixture{e: e, hasher: hasher, accounts: store}
}

func (f *apiFixture) seed(t *testing.T, email, role, password string, raw bool) *entity.Account {
	t.Helper()

	stored := password
	if !raw {
		var err error
		stored, err = f.hasher.Hash(password)
		require.NoError(t, err)
	}
	account := &entity.Account{Username: "jane", Email: email, Role: role, PasswordHash: stored}
	require.NoError(t, memory.NewAccountRepository(f.accounts).Create(context.Background(), account))

	return account
}

func (f *apiFixture) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	return rec
}

type envelope struct {
	Data  map[string]any `json:"data"`
	Error *struct {
		Code                  string `json:"code"`
		Message               string `json:"message"`
		Details               any    `json:"details"`
		RequiresPasswordReset bool   `json:"requiresPasswordReset"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return env
}

func loginBody(email, password string) string {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})

	return string(body)
}

func TestLoginEndpoint(t *testing.T) {
	f := newAPIFixture(t, config.EnvDevelopment)
	account := f.seed(t, "jane@example.com", "Recruiter", testPassword, false)
	f.seed(t, "legacy@example.com", "Candidate", "plaintext", true)

	t.Run("success", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/login", loginBody("jane@example.com", testPassword), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		env := decode(t, rec)
		assert.NotEmpty(t, env.Data["token"])
		assert.Equal(t, "Recruiter", env.Data["role"])
		assert.EqualValues(t, account.ID, env.Data["userId"])
		assert.NotContains(t, env.Data, "refreshToken")
		assert.NotContains(t, rec.Body.String(), "$2a$")
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/login", loginBody("jane@example.com", "Nope#12345"), nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		env := decode(t, rec)
		assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
		assert.Equal(t, "Invalid email or password", env.Error.Message)
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/login", loginBody("ghost@example.com", testPassword), nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decode(t, rec).Error.Code)
	})

	t.Run("legacy password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/login", loginBody("legacy@example.com", "plaintext"), nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		env := decode(t, rec)
		assert.Equal(t, "PASSWORD_RESET_REQUIRED", env.Error.Code)
		assert.True(t, env.Error.RequiresPasswordReset)
	})

	t.Run("validation", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/login", `{"email":"not-an-email"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		env := decode(t, rec)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
		assert.Equal(t, "email must be a valid email address; password is required", env.Error.Details)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/login", `{"email":`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginEndpoint_Lockout(t *testing.T) {
	f := newAPIFixture(t, config.EnvDevelopment)
	f.seed(t, "jane@example.com", "Candidate", testPassword, false)

	for range 5 {
		rec := f.do(t, http.MethodPost, "/auth/login", loginBody("jane@example.com", "Wrong#Pass1"), nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "INVALID_CREDENTIALS", decode(t, rec).Error.Code)
	}

	rec := f.do(t, http.MethodPost, "/auth/login", loginBody("jane@example.com", testPassword), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	env := decode(t, rec)
	assert.Equal(t, "ACCOUNT_LOCKED", env.Error.Code)
	assert.Equal(t, "Account is locked due to too many failed login attempts. Try again in 30 minutes.", env.Error.Message)
}

func TestForgotPasswordEndpoint_IdenticalResponses(t *testing.T) {
	f := newAPIFixture(t, config.EnvProduction)
	f.seed(t, "jane@example.com", "Candidate", testPassword, false)
	headers := map[string]string{deliverycontext.HeaderXRequestID: "fixed-request-id"}

	known := f.do(t, http.MethodPost, "/auth/forgot-password", `{"email":"jane@example.com"}`, headers)
	unknown := f.do(t, http.MethodPost, "/auth/forgot-password", `{"email":"nobody@example.com"}`, headers)

	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.Equal(t, "If the email exists, a password reset link has been sent.", decode(t, known).Data["message"])
	assert.NotContains(t, known.Body.String(), "resetToken")
}

func TestPasswordResetAndChangeEndpoints(t *testing.T) {
	f := newAPIFixture(t, config.EnvDevelopment)
	f.seed(t, "jane@example.com", "Candidate", testPassword, false)

	rec := f.do(t, http.MethodPost, "/auth/forgot-password", `{"email":"jane@example.com"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	secret, _ := decode(t, rec).Data["resetToken"].(string)
	require.NotEmpty(t, secret)

	rec = f.do(t, http.MethodPost, "/auth/reset-password", `{"token":"wrong","newPassword":"Fresh#Start42"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_RESET_TOKEN", decode(t, rec).Error.Code)

	rec = f.do(t, http.MethodPost, "/auth/reset-password", `{"token":"`+secret+`","newPassword":"weak"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PASSWORD_STRENGTH", decode(t, rec).Error.Code)

	rec = f.do(t, http.MethodPost, "/auth/reset-password", `{"token":"`+secret+`","newPassword":"Fresh#Start42"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Password has been reset successfully", decode(t, rec).Data["message"])

	rec = f.do(t, http.MethodPost, "/auth/login", loginBody("jane@example.com", "Fresh#Start42"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decode(t, rec).Data["token"].(string)
	bearer := map[string]string{echo.HeaderAuthorization: "Bearer " + token}

	rec = f.do(t, http.MethodPost, "/auth/change-password", `{"currentPassword":"Fresh#Start42","newPassword":"Second#Start42"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/change-password", `{"currentPassword":"nope","newPassword":"Second#Start42"}`, bearer)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Current password is incorrect", decode(t, rec).Error.Message)

	rec = f.do(t, http.MethodPost, "/auth/change-password", `{"currentPassword":"Fresh#Start42","newPassword":"Second#Start42"}`, bearer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Password changed successfully", decode(t, rec).Data["message"])

	rec = f.do(t, http.MethodGet, "/auth/me", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec).Data
	assert.Equal(t, "jane@example.com", me["email"])
	assert.Equal(t, "Candidate", me["role"])
}

func TestPasswordEndpoints_RejectOverlongPasswords(t *testing.T) {
	f := newAPIFixture(t, config.EnvDevelopment)
	f.seed(t, "jane@example.com", "Candidate", testPassword, false)
	overlong := "Aa1!" + strings.Repeat("x", 80)

	rec := f.do(t, http.MethodPost, "/auth/forgot-password", `{"email":"jane@example.com"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	secret, _ := decode(t, rec).Data["resetToken"].(string)
	require.NotEmpty(t, secret)

	rec = f.do(t, http.MethodPost, "/auth/reset-password", `{"token":"`+secret+`","newPassword":"`+overlong+`"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "PASSWORD_STRENGTH", body.Error.Code)
	assert.Equal(t, "Password must not exceed 72 bytes", body.Error.Message)

	rec = f.do(t, http.MethodPost, "/auth/login", loginBody("jane@example.com", testPassword), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decode(t, rec).Data["token"].(string)

	rec = f.do(t, http.MethodPost, "/auth/change-password",
		`{"currentPassword":"`+testPassword+`","newPassword":"`+overlong+`"}`,
		map[string]string{echo.HeaderAuthorization: "Bearer " + token})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "PASSWORD_STRENGTH", decode(t, rec).Error.Code)
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	f := newAPIFixture(t, config.EnvDevelopment)

	for name, header := range map[string]string{
		"missing scheme": "abc.def.ghi",
		"garbage token":  "Bearer abc.def.ghi",
		"basic auth":     "Basic amFuZTpwYXNz",
	} {
		t.Run(name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/auth/me", "", map[string]string{echo.HeaderAuthorization: header})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestHealthAndDisabledRefresh(t *testing.T) {
	f := newAPIFixture(t, config.EnvDevelopment)

	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/refresh", `{"refreshToken":"x"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
