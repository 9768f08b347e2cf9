package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-engine/internal/application/dto"
	apphttp "github.com/jhoicas/inventario-engine/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-engine/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "inventario-engine-test"
	testExpMin    = 60
)

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	otherSecret, err := pkgjwt.Generate("otro-secreto", testUserID, pkgjwt.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, pkgjwt.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"otro esquema", "Basic abc", "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"otro secreto", "Bearer " + otherSecret, "INVALID_TOKEN"},
		{"expirado", "Bearer " + expired, "INVALID_TOKEN"},
	}
	env := newTestEnv(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := env.app.Test(req, -1)
			require.NoError(t, err)

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.code, decode[dto.ErrorResponse](t, resp).Code)
		})
	}
}

func TestAuthMiddleware_CargaUsuarioYRol(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleBodeguero))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, pkgjwt.RoleBodeguero, body["role"])
}

func TestRequireRole_TokenSinRol(t *testing.T) {
	env := newTestEnv(t)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "", testIssuer, testExpMin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", decode[dto.ErrorResponse](t, resp).Code)
}

// Permisos por ruta: ventas y clientes para vendedor, movimientos y reposición para bodeguero,
// escritura de catálogo solo admin, existencias para todos.
func TestRouter_PermisosPorRol(t *testing.T) {
	const (
		admin     = pkgjwt.RoleAdmin
		vendedor  = pkgjwt.RoleVendedor
		bodeguero = pkgjwt.RoleBodeguero
	)
	newWarehouse := dto.CreateWarehouseRequest{Code: "C", Name: "Bodega C"}
	routes := []struct {
		method string
		path   string
		body   any
		ok     int
		roles  []string
	}{
		{http.MethodGet, "/api/products", nil, http.StatusOK, []string{admin, vendedor, bodeguero}},
		{http.MethodGet, "/api/warehouses", nil, http.StatusOK, []string{admin, vendedor, bodeguero}},
		{http.MethodPost, "/api/warehouses", newWarehouse, http.StatusCreated, []string{admin}},
		{http.MethodGet, "/api/clients", nil, http.StatusOK, []string{admin, vendedor}},
		{http.MethodGet, "/api/sales", nil, http.StatusOK, []string{admin, vendedor}},
		{http.MethodGet, "/api/inventory/movements", nil, http.StatusOK, []string{admin, bodeguero}},
		{http.MethodGet, "/api/inventory/replenishment", nil, http.StatusOK, []string{admin, bodeguero}},
		{http.MethodGet, "/api/inventory/products/" + productID + "/stock", nil, http.StatusOK, []string{admin, vendedor, bodeguero}},
	}
	for _, rt := range routes {
		allowed := make(map[string]bool, len(rt.roles))
		for _, r := range rt.roles {
			allowed[r] = true
		}
		for _, role := range []string{admin, vendedor, bodeguero} {
			t.Run(rt.method+" "+rt.path+" "+role, func(t *testing.T) {
				resp := newTestEnv(t).do(t, rt.method, rt.path, role, rt.body)
				if allowed[role] {
					assert.Equal(t, rt.ok, resp.StatusCode)
					return
				}
				require.Equal(t, http.StatusForbidden, resp.StatusCode)
				body := decode[dto.ErrorResponse](t, resp)
				assert.Equal(t, "FORBIDDEN", body.Code)
				assert.Contains(t, body.Message, role)
			})
		}
	}
}
