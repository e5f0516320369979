package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"medstudy-be/internal/dto"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerMiddleware(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", contract.NewValidationError("title", "is required"), 400, "validation failed on title: is required"},
		{"not found", fmt.Errorf("load: %w", contract.ErrNotFound), 404, "Resource not found"},
		{"forbidden looks like not found", contract.ErrForbidden, 404, "Resource not found"},
		{"review unavailable", fmt.Errorf("%w: nats down", service.ErrReviewUnavailable), 503, "Review system unavailable"},
		{"fiber error", fiber.NewError(fiber.StatusBadRequest, "invalid id"), 400, "invalid id"},
		{"backend fault", contract.BackendFault("find", errors.New("conn reset")), 500, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
			app.Get("/", func(*fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)

			var body BaseResponse[any]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}

func TestValidateRequestUsesJsonNames(t *testing.T) {
	err := ValidateRequest(dto.CreateNotebookRequest{})
	var verr *contract.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	grade := 7
	err = ValidateRequest(dto.RecordReviewRequest{Grade: &grade})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "grade", verr.Field)
	assert.Contains(t, verr.Message, "max=3")

	assert.NoError(t, ValidateRequest(dto.CreateNotebookRequest{Title: "Renal"}))
}

func TestJwtMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	userId := uuid.New()

	app := fiber.New()
	app.Get("/me", JwtMiddleware, func(ctx *fiber.Ctx) error {
		return ctx.SendString(CurrentUserId(ctx).String())
	})

	sign := func(claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return token
	}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+sign(jwt.MapClaims{"user_id": userId.String(), "exp": time.Now().Add(time.Hour).Unix()}))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+sign(jwt.MapClaims{"user_id": 42}))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
