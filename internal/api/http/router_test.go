package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/account-security/internal/api/http/handlers"
	"github.com/spec-kit/account-security/internal/auth"
	"github.com/spec-kit/account-security/internal/codegen"
	"github.com/spec-kit/account-security/internal/config"
	"github.com/spec-kit/account-security/internal/domain"
	"github.com/spec-kit/account-security/internal/domain/security"
	"github.com/spec-kit/account-security/internal/domain/user"
	"github.com/spec-kit/account-security/internal/events"
	"github.com/spec-kit/account-security/internal/observability"
	"github.com/spec-kit/account-security/internal/repository/memory"
	"github.com/spec-kit/account-security/internal/service"
	"github.com/spec-kit/account-security/internal/uow"
)

type RouterSuite struct {
	suite.Suite
	app    *fiber.App
	clock  *domain.FixedClock
	issued []security.CodeGenerated
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.clock = &domain.FixedClock{At: time.Now().UTC()}
	logger := zap.NewNop()
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	users := memory.NewUserRepository()
	challenges := memory.NewSecurityRepository()
	s.issued = nil
	bus := events.NewInMemoryBus()
	bus.Subscribe(security.EventCodeGenerated, func(_ context.Context, event domain.Event) error {
		s.issued = append(s.issued, event.(security.CodeGenerated))
		return nil
	})
	units := uow.NewManager(memory.NewStore(), events.Observed(bus, metrics))
	commands := service.NewCommandBus(units, logger, metrics)
	queries := service.NewQueryBus(units, logger)

	securityService := service.NewSecurityService(config.SecurityConfig{DefaultCodeLength: 8, DefaultLevel: "medium"}, service.SecurityDependencies{
		Manager:       security.NewManager(s.clock, codegen.New()),
		UserRepo:      users,
		ChallengeRepo: challenges,
	})
	userService := service.NewUserService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, service.UserDependencies{
		Manager:       user.NewManager(s.clock),
		StatusManager: user.NewStatusManager(s.clock),
		UserRepo:      users,
		Security:      securityService,
	})
	securityService.Register(commands, queries)
	userService.Register(commands, queries)

	tokens := auth.NewTokenManager("test-secret", 15)
	s.app = fiber.New(fiber.Config{DisableStartupMessage: true, ErrorHandler: ErrorHandler(logger, metrics)})
	RegisterMiddlewares(s.app, logger, metrics, time.Second)
	RegisterRoutes(s.app, RouteConfig{
		Health:         handlers.NewHealthHandler("account-security", "test", map[string]handlers.Dependency{"postgres": nil, "redis": nil}),
		Users:          handlers.NewUsersHandler(commands, queries, tokens),
		Security:       handlers.NewSecurityHandler(commands, queries),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, queries),
		Gatherer:       registry,
	})
}

type response struct {
	status int
	body   map[string]any
	raw    []byte
}

func (s *RouterSuite) do(method, path, token string, payload any) response {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	out := response{status: resp.StatusCode, raw: raw}
	if len(raw) > 0 && raw[0] == '{' {
		s.Require().NoError(json.Unmarshal(raw, &out.body))
	}
	return out
}

func errorCode(r response) string {
	errBody, _ := r.body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func (s *RouterSuite) register(email string) string {
	token, _ := s.registerUser(email)
	return token
}

func (s *RouterSuite) registerUser(email string) (token, id string) {
	resp := s.do(fiber.MethodPost, "/auth/users/register", "", map[string]string{
		"username": "ada", "email": email, "password": "secret1",
	})
	s.Require().Equal(fiber.StatusCreated, resp.status, string(resp.raw))

	resp = s.do(fiber.MethodPost, "/auth/users/login", "", map[string]string{
		"email": email, "password": "secret1",
	})
	s.Require().Equal(fiber.StatusOK, resp.status, string(resp.raw))
	data := resp.body["data"].(map[string]any)
	return data["auth"].(map[string]any)["token"].(string), data["user"].(map[string]any)["id"].(string)
}

func (s *RouterSuite) challenges(token string) []any {
	resp := s.do(fiber.MethodGet, "/security/challenges", token, nil)
	s.Require().Equal(fiber.StatusOK, resp.status, string(resp.raw))
	list, _ := resp.body["data"].([]any)
	return list
}

func (s *RouterSuite) TestHealth() {
	resp := s.do(fiber.MethodGet, "/health/live", "", nil)
	s.Equal(fiber.StatusOK, resp.status)
	s.Equal("alive", resp.body["status"])

	resp = s.do(fiber.MethodGet, "/health/ready", "", nil)
	s.Equal(fiber.StatusOK, resp.status)
	s.Equal(map[string]any{"postgres": "disabled", "redis": "disabled"}, resp.body["dependencies"])
}

func (s *RouterSuite) TestRegisterErrors() {
	s.register("ada@example.com")

	resp := s.do(fiber.MethodPost, "/auth/users/register", "", map[string]string{
		"username": "ada", "email": "ADA@example.com", "password": "secret1",
	})
	s.Equal(fiber.StatusUnprocessableEntity, resp.status)
	s.Equal("BUSINESS_RULE_VIOLATED", errorCode(resp))
	s.Equal(float64(user.RuleCodeEmailTaken), resp.body["error"].(map[string]any)["details"].(map[string]any)["rule"])

	resp = s.do(fiber.MethodPost, "/auth/users/register", "", map[string]string{
		"username": "ada", "email": "broken", "password": "secret1",
	})
	s.Equal(fiber.StatusBadRequest, resp.status)
	s.Equal("VALIDATION_FAILED", errorCode(resp))
	s.Equal("email", resp.body["error"].(map[string]any)["details"].(map[string]any)["field"])
}

func (s *RouterSuite) TestLoginFailures() {
	s.register("ada@example.com")

	for _, creds := range []map[string]string{
		{"email": "ada@example.com", "password": "wrong-one"},
		{"email": "nobody@example.com", "password": "secret1"},
	} {
		resp := s.do(fiber.MethodPost, "/auth/users/login", "", creds)
		s.Equal(fiber.StatusUnauthorized, resp.status)
		s.Equal("UNAUTHORIZED", errorCode(resp))
	}
}

func (s *RouterSuite) TestUnknownRoute() {
	resp := s.do(fiber.MethodGet, "/nowhere", "", nil)
	s.Equal(fiber.StatusNotFound, resp.status)
	s.Equal("Not Found", errorCode(resp))
}

func (s *RouterSuite) TestProtectedRoutesNeedToken() {
	s.Equal(fiber.StatusUnauthorized, s.do(fiber.MethodGet, "/security/challenges", "", nil).status)
	s.Equal(fiber.StatusUnauthorized, s.do(fiber.MethodGet, "/security/challenges", "garbage", nil).status)
	s.Equal(fiber.StatusUnauthorized, s.do(fiber.MethodPost, "/auth/users/logout", "", nil).status)
}

func (s *RouterSuite) TestCodeLifecycle() {
	token := s.register("ada@example.com")

	resp := s.do(fiber.MethodPost, "/security/codes", token, map[string]any{"purpose": "2fa", "length": 6, "level": "low"})
	s.Require().Equal(fiber.StatusAccepted, resp.status, string(resp.raw))

	list := s.challenges(token)
	s.Require().Len(list, 1)
	codes := list[0].(map[string]any)["codes"].([]any)
	s.Require().Len(codes, security.CodesPerChallenge)
	code := codes[0].(map[string]any)["code"].(string)
	s.Len(code, 6)

	resp = s.do(fiber.MethodPost, "/security/codes/redeem", token, map[string]string{"code": code, "purpose": "password_reset"})
	s.Equal(fiber.StatusConflict, resp.status)

	resp = s.do(fiber.MethodPost, "/security/codes/redeem", token, map[string]string{"code": code, "purpose": "2fa"})
	s.Equal(fiber.StatusNoContent, resp.status, string(resp.raw))

	resp = s.do(fiber.MethodPost, "/security/codes/redeem", token, map[string]string{"code": code, "purpose": "2fa"})
	s.Equal(fiber.StatusConflict, resp.status)
	s.Equal("CONFLICT", errorCode(resp))

	resp = s.do(fiber.MethodPost, "/security/codes/invalidate", token, map[string]string{"purpose": "2fa"})
	s.Equal(fiber.StatusNoContent, resp.status, string(resp.raw))
	resp = s.do(fiber.MethodPost, "/security/codes/invalidate", token, map[string]string{"purpose": "2fa"})
	s.Equal(fiber.StatusNotFound, resp.status)

	resp = s.do(fiber.MethodPost, "/security/codes", token, map[string]any{"purpose": "carrier-pigeon"})
	s.Equal(fiber.StatusBadRequest, resp.status)
}

func (s *RouterSuite) TestQuotaIsReported() {
	token := s.register("ada@example.com")
	for i := 0; i < security.DefaultChallengeQuota; i++ {
		s.Require().Equal(fiber.StatusAccepted, s.do(fiber.MethodPost, "/security/codes", token, map[string]string{"purpose": "2fa"}).status)
	}

	resp := s.do(fiber.MethodPost, "/security/codes", token, map[string]string{"purpose": "2fa"})
	s.Equal(fiber.StatusUnprocessableEntity, resp.status)
	s.Equal(float64(security.RuleCodeChallengeQuota), resp.body["error"].(map[string]any)["details"].(map[string]any)["rule"])
}

func (s *RouterSuite) TestPasswordReset() {
	token := s.register("ada@example.com")
	s.Require().Equal(fiber.StatusAccepted, s.do(fiber.MethodPost, "/security/codes", token, map[string]string{"purpose": "password_reset"}).status)
	code := s.challenges(token)[0].(map[string]any)["codes"].([]any)[0].(map[string]any)["code"].(string)

	resp := s.do(fiber.MethodPost, "/auth/password/reset", "", map[string]string{
		"email": "ada@example.com", "code": code, "password": "brand-new",
	})
	s.Require().Equal(fiber.StatusNoContent, resp.status, string(resp.raw))

	resp = s.do(fiber.MethodPost, "/auth/users/login", "", map[string]string{"email": "ada@example.com", "password": "brand-new"})
	s.Equal(fiber.StatusOK, resp.status)
}

func (s *RouterSuite) TestForgotPasswordWithoutToken() {
	s.register("ada@example.com")

	resp := s.do(fiber.MethodPost, "/auth/password/forgot", "", map[string]string{"email": "ada@example.com"})
	s.Require().Equal(fiber.StatusAccepted, resp.status, string(resp.raw))
	s.Require().Len(s.issued, 1)
	s.Equal(security.PurposePasswordReset, s.issued[0].Purpose)
	code := s.issued[0].Codes[0].Value

	resp = s.do(fiber.MethodPost, "/auth/password/reset", "", map[string]string{
		"email": "ada@example.com", "code": code, "password": "brand-new",
	})
	s.Require().Equal(fiber.StatusNoContent, resp.status, string(resp.raw))
	s.Equal(fiber.StatusOK, s.do(fiber.MethodPost, "/auth/users/login", "", map[string]string{
		"email": "ada@example.com", "password": "brand-new",
	}).status)
}

func (s *RouterSuite) TestForgotPasswordDoesNotRevealAccounts() {
	s.register("ada@example.com")

	for _, email := range []string{"nobody@example.com", "not-an-email"} {
		resp := s.do(fiber.MethodPost, "/auth/password/forgot", "", map[string]string{"email": email})
		s.Equal(fiber.StatusAccepted, resp.status, email)
	}
	s.Empty(s.issued)

	for i := 0; i <= security.DefaultChallengeQuota; i++ {
		resp := s.do(fiber.MethodPost, "/auth/password/forgot", "", map[string]string{"email": "ada@example.com"})
		s.Equal(fiber.StatusAccepted, resp.status, "request %d", i)
	}
	s.Len(s.issued, security.DefaultChallengeQuota, "the quota still applies")
}

func (s *RouterSuite) TestAccountsAreOwnerOnly() {
	_, victimID := s.registerUser("ada@example.com")
	mallory, _ := s.registerUser("mallory@example.com")

	resp := s.do(fiber.MethodGet, "/users/"+victimID, mallory, nil)
	s.Equal(fiber.StatusForbidden, resp.status)
	s.Equal("FORBIDDEN", errorCode(resp))
	s.NotContains(string(resp.raw), "ada@example.com")

	for _, op := range []string{"suspend", "soft_delete", "restore"} {
		resp = s.do(fiber.MethodPatch, "/users/"+victimID+"/status", mallory, map[string]string{"operation": op})
		s.Equal(fiber.StatusForbidden, resp.status, op)
	}

	resp = s.do(fiber.MethodPost, "/auth/users/login", "", map[string]string{"email": "ada@example.com", "password": "secret1"})
	s.Require().Equal(fiber.StatusOK, resp.status)
	s.Equal(string(user.StateActive), resp.body["data"].(map[string]any)["user"].(map[string]any)["state"])
}

func (s *RouterSuite) TestAccountManagement() {
	token := s.register("ada@example.com")

	resp := s.do(fiber.MethodPut, "/auth/users/email", token, map[string]string{"email": "ada@example.org"})
	s.Require().Equal(fiber.StatusOK, resp.status, string(resp.raw))
	view := resp.body["data"].(map[string]any)["user"].(map[string]any)
	s.Equal("ada@example.org", view["email"])
	id := view["id"].(string)

	resp = s.do(fiber.MethodGet, "/users/"+id, token, nil)
	s.Equal(fiber.StatusOK, resp.status)
	s.Equal(fiber.StatusBadRequest, s.do(fiber.MethodGet, "/users/not-a-uuid", token, nil).status)

	resp = s.do(fiber.MethodPut, "/auth/users/password", token, map[string]string{"password": "another1"})
	s.Equal(fiber.StatusNoContent, resp.status)
	s.Equal(fiber.StatusNoContent, s.do(fiber.MethodPost, "/auth/users/logout", token, nil).status)

	resp = s.do(fiber.MethodPatch, "/users/"+id+"/status", token, map[string]string{"operation": "suspend"})
	s.Require().Equal(fiber.StatusOK, resp.status, string(resp.raw))
	s.Equal("suspended", resp.body["data"].(map[string]any)["user"].(map[string]any)["state"])

	resp = s.do(fiber.MethodPatch, "/users/"+id+"/status", token, map[string]string{"operation": "soft_delete"})
	s.Require().Equal(fiber.StatusOK, resp.status, string(resp.raw))
	s.Equal(fiber.StatusUnauthorized, s.do(fiber.MethodGet, "/users/"+id, token, nil).status,
		"deleted accounts cannot use their tokens")
}

func (s *RouterSuite) TestMetricsEndpoint() {
	s.register("ada@example.com")

	resp := s.do(fiber.MethodGet, "/metrics", "", nil)
	s.Equal(fiber.StatusOK, resp.status)
	s.Contains(string(resp.raw), "commands_total")
	s.Contains(string(resp.raw), `event="user.created"`)
}

func TestTimeoutMiddlewareSetsDeadline(t *testing.T) {
	app := fiber.New()
	app.Use(requestTimeoutMiddleware(time.Minute))
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		assert.True(t, ok)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestPanicsBecomeInternalErrors(t *testing.T) {
	app := fiber.New()
	app.Use(errorHandlingMiddleware(zap.NewNop(), nil))
	app.Use(recoverMiddleware(zap.NewNop()))
	app.Get("/", func(*fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_ERROR", body["error"]["code"])
	assert.Equal(t, "internal server error", body["error"]["message"], "panic values stay out of responses")
}
