package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/estatehub/internal/logger"
	"github.com/stwalsh4118/estatehub/internal/middleware"
	"github.com/stwalsh4118/estatehub/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestContext creates a test Gin context with logger and request ID in context.
func setupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	c.Set("logger", logger.New("test"))
	c.Set(middleware.RequestIDKey, "test-request-id")
	return c, w
}

func parseErrorResponse(t *testing.T, body *bytes.Buffer) ErrorResponse {
	var response ErrorResponse
	err := json.Unmarshal(body.Bytes(), &response)
	require.NoError(t, err, "Failed to parse error response JSON")
	return response
}

func TestNotFound(t *testing.T) {
	c, w := setupTestContext()

	NotFound(c, "Resource not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	response := parseErrorResponse(t, w.Body)
	assert.Equal(t, ErrNotFound, response.Error.Code)
	assert.Equal(t, "Resource not found", response.Error.Message)
	assert.Equal(t, "test-request-id", response.Error.RequestID)
	assert.Nil(t, response.Error.Details)
	assert.True(t, c.IsAborted())
}

func TestBadRequest(t *testing.T) {
	t.Run("without details", func(t *testing.T) {
		c, w := setupTestContext()

		BadRequest(c, "Invalid input", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := parseErrorResponse(t, w.Body)
		assert.Equal(t, ErrBadRequest, response.Error.Code)
		assert.Nil(t, response.Error.Details)
	})

	t.Run("with details", func(t *testing.T) {
		c, w := setupTestContext()

		BadRequest(c, "Invalid input", map[string]interface{}{"field": "email"})

		response := parseErrorResponse(t, w.Body)
		assert.Equal(t, "email", response.Error.Details["field"])
	})
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c *gin.Context)
		status int
		code   string
	}{
		{"forbidden", func(c *gin.Context) { Forbidden(c, "not yours") }, http.StatusForbidden, ErrForbidden},
		{"conflict", func(c *gin.Context) { Conflict(c, "active lease") }, http.StatusConflict, ErrConflict},
		{"unauthenticated", func(c *gin.Context) { Unauthenticated(c, "no token") }, http.StatusUnauthorized, ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := setupTestContext()

			tt.call(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, parseErrorResponse(t, w.Body).Error.Code)
		})
	}
}

func TestInternalServerError(t *testing.T) {
	c, w := setupTestContext()

	InternalServerError(c, "An unexpected error occurred", errors.New("database connection failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	response := parseErrorResponse(t, w.Body)
	assert.Equal(t, ErrInternalServer, response.Error.Code)
	assert.Equal(t, "An unexpected error occurred", response.Error.Message)
	assert.NotContains(t, w.Body.String(), "database connection failed")
}

func TestValidationError(t *testing.T) {
	c, w := setupTestContext()

	type TestStruct struct {
		Email string `validate:"required,email"`
		Age   int    `validate:"required,gte=18"`
	}
	err := validator.New().Struct(TestStruct{Email: "not-an-email", Age: 15})
	require.Error(t, err)
	validationErrors, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	ValidationError(c, validationErrors)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := parseErrorResponse(t, w.Body)
	assert.Equal(t, ErrValidation, response.Error.Code)
	assert.Equal(t, "Must be a valid email address", response.Error.Details["Email"])
	assert.Equal(t, "Must be greater than or equal to 18", response.Error.Details["Age"])
}

func TestBindingError_NonValidation(t *testing.T) {
	c, w := setupTestContext()

	BindingError(c, errors.New("invalid character"), "Invalid request body")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := parseErrorResponse(t, w.Body)
	assert.Equal(t, ErrBadRequest, response.Error.Code)
	assert.Equal(t, "Invalid request body", response.Error.Message)
}

func TestFromService(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("%w: listing 9", services.ErrNotFound), http.StatusNotFound, ErrNotFound},
		{"wrong owner", fmt.Errorf("%w: listing 9", services.ErrUnauthorized), http.StatusForbidden, ErrForbidden},
		{"conflict", fmt.Errorf("%w: active lease", services.ErrConflict), http.StatusConflict, ErrConflict},
		{"invalid argument", fmt.Errorf("%w: radius must be positive", services.ErrInvalidArgument), http.StatusBadRequest, ErrBadRequest},
		{"validation", &services.ValidationError{Fields: map[string]string{"name": "must not be empty"}}, http.StatusBadRequest, ErrValidation},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, ErrInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := setupTestContext()

			FromService(c, tt.err, "Failed to process listing")

			assert.Equal(t, tt.status, w.Code)
			response := parseErrorResponse(t, w.Body)
			assert.Equal(t, tt.code, response.Error.Code)
		})
	}

	t.Run("validation fields become details", func(t *testing.T) {
		c, w := setupTestContext()
		err := fmt.Errorf("create: %w", &services.ValidationError{Fields: map[string]string{"location.city": "is required"}})

		FromService(c, err, "Failed to create listing")

		response := parseErrorResponse(t, w.Body)
		assert.Equal(t, "is required", response.Error.Details["location.city"])
	})
}

func TestFormatValidationError(t *testing.T) {
	tests := []struct {
		tag      string
		param    string
		expected string
	}{
		{"required", "", "This field is required"},
		{"email", "", "Must be a valid email address"},
		{"min", "5", "Value is too short or small (minimum: 5)"},
		{"max", "100", "Value is too long or large (maximum: 100)"},
		{"gt", "0", "Must be greater than 0"},
		{"gte", "18", "Must be greater than or equal to 18"},
		{"lte", "100", "Must be less than or equal to 100"},
		{"oneof", "asc desc", "Must be one of: asc desc"},
		{"url", "", "Must be a valid URL"},
		{"unknown_tag", "", "Validation failed for tag: unknown_tag"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			result := formatValidationError(&mockFieldError{tag: tt.tag, param: tt.param})
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestErrorResponseWithoutContext(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	NotFound(c, "Resource not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, parseErrorResponse(t, w.Body).Error.RequestID)
}

// mockFieldError is a mock implementation of validator.FieldError for testing.
type mockFieldError struct {
	tag   string
	param string
}

func (m *mockFieldError) Tag() string                    { return m.tag }
func (m *mockFieldError) ActualTag() string              { return m.tag }
func (m *mockFieldError) Namespace() string              { return "" }
func (m *mockFieldError) StructNamespace() string        { return "" }
func (m *mockFieldError) Field() string                  { return "TestField" }
func (m *mockFieldError) StructField() string            { return "TestField" }
func (m *mockFieldError) Value() interface{}             { return nil }
func (m *mockFieldError) Param() string                  { return m.param }
func (m *mockFieldError) Kind() reflect.Kind             { return reflect.String }
func (m *mockFieldError) Type() reflect.Type             { return nil }
func (m *mockFieldError) Translate(ut.Translator) string { return "" }
func (m *mockFieldError) Error() string                  { return "" }
