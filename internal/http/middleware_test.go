package http

import (
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"eco/internal/testutil"

	"github.com/gofiber/fiber/v2"
)

func newAuthApp(validate TokenValidator) *fiber.App {
	app := fiber.New()
	app.Get("/protected", AuthRequired(validate), func(c *fiber.Ctx) error {
		id, _ := c.Locals("adminID").(string)
		return c.SendString(id)
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	validate := func(token string) (string, map[string]any, error) {
		if token == "good-token" {
			return "admin-1", map[string]any{"name": "keeper"}, nil
		}
		return "", nil, fmt.Errorf("bad token")
	}
	app := newAuthApp(validate)

	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", fiber.StatusUnauthorized, ""},
		{"malformed header", "Token good-token", fiber.StatusUnauthorized, ""},
		{"invalid token", "Bearer nope", fiber.StatusUnauthorized, ""},
		{"valid token", "Bearer good-token", fiber.StatusOK, "admin-1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			resp, err := app.Test(req)
			testutil.NoError(t, err)
			defer resp.Body.Close()

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("got status %d; want %d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantBody != "" {
				body, err := io.ReadAll(resp.Body)
				testutil.NoError(t, err)
				testutil.Equal(t, string(body), tc.wantBody)
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", ""},
		{"Basic dXNlcg==", ""},
		{"Bearer ", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := extractBearerToken(tc.header); got != tc.want {
			t.Errorf("extractBearerToken(%q) = %q; want %q", tc.header, got, tc.want)
		}
	}
}
