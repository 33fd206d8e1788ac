package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/huertacl/catalog-service/internal/api/http/handlers"
	"github.com/huertacl/catalog-service/internal/auth"
	"github.com/huertacl/catalog-service/internal/config"
	"github.com/huertacl/catalog-service/internal/events"
	"github.com/huertacl/catalog-service/internal/observability"
	"github.com/huertacl/catalog-service/internal/repository/repotest"
	"github.com/huertacl/catalog-service/internal/service"
)

const (
	testSecret    = "0123456789abcdef0123456789abcdef"
	adminEmail    = "admin@x.com"
	adminPassword = "admin123"
	allowedOrigin = "http://localhost:5173"
)

type testServer struct {
	app *fiber.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens, err := auth.NewTokenManager(testSecret, auth.DefaultTokenTTL)
	require.NoError(t, err)
	hasher := auth.NewHasher(auth.MinCost)
	users := repotest.NewUsers()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   users,
		Hasher:     hasher,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	_, err = authService.EnsureAdmin(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)

	catalogService := service.NewCatalogService(service.CatalogDependencies{
		CategoryRepo: repotest.NewCategories(),
		ProductRepo:  repotest.NewProducts(),
		Dispatcher:   dispatcher,
		Logger:       logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0, config.CORSConfig{AllowedOrigins: []string{allowedOrigin}})
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("catalog-service", "test", nil),
		Users:   handlers.NewUsersHandler(authService, service.NewUserService(users, hasher, logger)),
		Catalog: handlers.NewCatalogHandler(catalogService),
		Gate:    auth.NewGate(tokens, users, logger, metrics),
		Metrics: metrics,
	})
	return &testServer{app: app}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (s *testServer) register(t *testing.T, email, password string) int64 {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/v1/usuarios/register", "", fiber.Map{
		"nombre":          "Ana",
		"apellido":        "Rojas",
		"fechaNacimiento": "1990-05-01",
		"email":           email,
		"contrasena":      password,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var resp struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Data.ID
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/v1/usuarios/login", "", fiber.Map{"email": email, "contrasena": password})
	require.Equal(t, http.StatusOK, status, string(body))
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// forgeExpiry rewrites the exp claim while keeping the original signature.
func forgeExpiry(t *testing.T, token string, delta int64) string {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var claims map[string]any
	require.NoError(t, json.Unmarshal(payload, &claims))
	claims["exp"] = int64(claims["exp"].(float64)) + delta
	forged, err := json.Marshal(claims)
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)
	return strings.Join(parts, ".")
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp), string(body))
	return resp.Error.Code
}

func TestScenario_RegisteredUserIsUsuario(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com", "pw123")

	status, body := s.do(t, http.MethodPost, "/api/v1/usuarios/login", "", fiber.Map{"email": "a@x.com", "contrasena": "pw123"})
	require.Equal(t, http.StatusOK, status)
	var resp struct {
		Token   string         `json:"token"`
		Usuario map[string]any `json:"usuario"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "a@x.com", resp.Usuario["email"])
	assert.Equal(t, "USUARIO", resp.Usuario["role"])
	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), "$2a$")

	claims := &auth.Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(resp.Token, claims)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, "USUARIO", claims.Role)
	assert.Equal(t, []string{"USUARIO"}, claims.Authorities)

	status, body = s.do(t, http.MethodPost, "/api/v1/productos", resp.Token, fiber.Map{
		"name": "Manzana", "price": 990, "categoryId": 1, "stock": 5, "image": "m.jpg",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))

	status, _ = s.do(t, http.MethodGet, "/api/v1/usuarios", resp.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestScenario_LoginFailuresAreIdentical(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com", "pw123")

	wrongStatus, wrongBody := s.do(t, http.MethodPost, "/api/v1/usuarios/login", "", fiber.Map{"email": "a@x.com", "contrasena": "wrong"})
	ghostStatus, ghostBody := s.do(t, http.MethodPost, "/api/v1/usuarios/login", "", fiber.Map{"email": "ghost@x.com", "contrasena": "pw123"})

	assert.Equal(t, http.StatusUnauthorized, wrongStatus)
	assert.Equal(t, wrongStatus, ghostStatus)
	assert.Equal(t, string(wrongBody), string(ghostBody))
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, wrongBody))
}

func TestLogin_EmptyFieldsAreInvalidCredentials(t *testing.T) {
	s := newTestServer(t)
	_, wrongBody := s.do(t, http.MethodPost, "/api/v1/usuarios/login", "", fiber.Map{"email": adminEmail, "contrasena": "wrong"})

	for name, body := range map[string]fiber.Map{
		"empty password": {"email": adminEmail, "contrasena": ""},
		"empty email":    {"email": "", "contrasena": adminPassword},
	} {
		t.Run(name, func(t *testing.T) {
			status, got := s.do(t, http.MethodPost, "/api/v1/usuarios/login", "", body)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, got))
			assert.Equal(t, string(wrongBody), string(got))
		})
	}
}

func TestScenario_AdminTokenAndForgedExpiry(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, adminEmail, adminPassword)

	status, body := s.do(t, http.MethodPost, "/api/v1/categorias", token, fiber.Map{"nombre": "Frutas", "descripcion": "Frescas"})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, _ = s.do(t, http.MethodGet, "/api/v1/usuarios", token, nil)
	assert.Equal(t, http.StatusOK, status)

	forged := forgeExpiry(t, token, 3600*24*365)
	status, body = s.do(t, http.MethodGet, "/api/v1/usuarios", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	status, _ = s.do(t, http.MethodPost, "/api/v1/categorias", forged, fiber.Map{"nombre": "Verduras"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGate_PublicRoutesIgnoreBadTokens(t *testing.T) {
	s := newTestServer(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		status, body := s.do(t, http.MethodGet, "/api/v1/productos", token, nil)
		assert.Equal(t, http.StatusOK, status, string(body))
	}

	status, _ := s.do(t, http.MethodGet, "/api/v1/usuarios/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestUsers_SelfOrAdmin(t *testing.T) {
	s := newTestServer(t)
	ownID := s.register(t, "a@x.com", "pw123")
	otherID := s.register(t, "b@x.com", "pw456")
	token := s.login(t, "a@x.com", "pw123")

	status, body := s.do(t, http.MethodGet, "/api/v1/usuarios/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"email":"a@x.com"`)

	status, _ = s.do(t, http.MethodGet, "/api/v1/usuarios/"+strconv.FormatInt(ownID, 10), token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/usuarios/"+strconv.FormatInt(otherID, 10), token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPut, "/api/v1/usuarios/"+strconv.FormatInt(ownID, 10), token, fiber.Map{"role": "ADMIN"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/usuarios/"+strconv.FormatInt(ownID, 10), token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	admin := s.login(t, adminEmail, adminPassword)
	status, _ = s.do(t, http.MethodDelete, "/api/v1/usuarios/"+strconv.FormatInt(otherID, 10), admin, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = s.do(t, http.MethodGet, "/api/v1/usuarios/"+strconv.FormatInt(otherID, 10), admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUsers_DeletedUserTokenIsIgnored(t *testing.T) {
	s := newTestServer(t)
	id := s.register(t, "a@x.com", "pw123")
	token := s.login(t, "a@x.com", "pw123")
	admin := s.login(t, adminEmail, adminPassword)

	status, _ := s.do(t, http.MethodDelete, "/api/v1/usuarios/"+strconv.FormatInt(id, 10), admin, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/usuarios/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegister_Validation(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/v1/usuarios/register", "", fiber.Map{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))
	assert.Contains(t, string(body), "fechaNacimiento")

	s.register(t, "a@x.com", "pw123")
	status, body = s.do(t, http.MethodPost, "/api/v1/usuarios/register", "", fiber.Map{
		"nombre": "Otra", "apellido": "Persona", "fechaNacimiento": "1991-01-01", "email": "a@x.com", "contrasena": "x",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(t, body))

	status, body = s.do(t, http.MethodPost, "/api/v1/usuarios/register", "", fiber.Map{
		"nombre": "Ana", "apellido": "Rojas", "fechaNacimiento": "1990-05-01", "email": "n@x.com",
		"contrasena": strings.Repeat("ñ", 60),
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))
	assert.Contains(t, string(body), "contrasena")
}

func TestCatalog_AdminLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, adminEmail, adminPassword)

	status, body := s.do(t, http.MethodPost, "/api/v1/categorias", admin, fiber.Map{"nombre": "Frutas"})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = s.do(t, http.MethodPost, "/api/v1/productos", admin, fiber.Map{
		"name": "Manzana Fuji", "price": 1200, "categoryId": 1, "stock": 0, "image": "fuji.jpg",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Contains(t, string(body), `"nombre":"Frutas"`)

	status, body = s.do(t, http.MethodGet, "/api/v1/productos/1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "Manzana Fuji")

	status, body = s.do(t, http.MethodPost, "/api/v1/productos", admin, fiber.Map{
		"name": "Pera", "price": 0, "categoryId": 1, "stock": 1, "image": "pera.jpg",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "price")

	status, _ = s.do(t, http.MethodDelete, "/api/v1/productos/1", admin, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = s.do(t, http.MethodGet, "/api/v1/productos/1", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)

	s.login(t, adminEmail, adminPassword)
	status, body := s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `catalog_login_attempts_total{outcome="success"} 1`)

	status, body = s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestCORS_Preflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/productos", nil)
	req.Header.Set(fiber.HeaderOrigin, allowedOrigin)
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodPost)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, allowedOrigin, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
