// Package response writes the JSON envelope shared by every API route and
// maps domain errors to HTTP statuses.
package response

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kessa99/task-manager-back/internal/domain"
)

const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeTooManyRequests  = "RATE_LIMITED"

	msgInternal = "Internal server error"
)

type Envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data"`
	Message *string      `json:"message"`
	Errors  []ErrorEntry `json:"errors"`
}

type ErrorEntry struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func OK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: optional(message)})
}

// Fail aborts the chain with an error envelope. At least one entry is always
// present; when none is given the message is repeated as the only entry.
func Fail(c *gin.Context, status int, message string, entries ...ErrorEntry) {
	if len(entries) == 0 {
		entries = []ErrorEntry{{Message: message}}
	}
	c.AbortWithStatusJSON(status, Envelope{Message: optional(message), Errors: entries})
}

// Error writes err. Domain errors keep their code, message and field; anything
// else is logged and reported as a generic 500.
func Error(c *gin.Context, logger *slog.Logger, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		status := StatusFor(de.Kind)
		if status == http.StatusUnauthorized {
			c.Header("WWW-Authenticate", "Bearer")
		}
		Fail(c, status, de.Message, ErrorEntry{Field: de.Field, Message: de.Message, Code: de.Code})
		return
	}

	logger.ErrorContext(c.Request.Context(), "unhandled error",
		"error", err,
		"method", c.Request.Method,
		"path", c.FullPath(),
	)
	Fail(c, http.StatusInternalServerError, msgInternal, ErrorEntry{Message: msgInternal, Code: CodeInternal})
}

// Recovery turns a panic into the generic 500 envelope.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		Error(c, logger, fmt.Errorf("panic: %v", rec))
	})
}

func NoRoute(c *gin.Context) {
	Fail(c, http.StatusNotFound, "Route not found", ErrorEntry{Message: "Route not found", Code: CodeNotFound})
}

func NoMethod(c *gin.Context) {
	Fail(c, http.StatusMethodNotAllowed, "Method not allowed", ErrorEntry{Message: "Method not allowed", Code: CodeMethodNotAllowed})
}

func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAuthentication:
		return http.StatusUnauthorized
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// BindError reports a failed ShouldBind*: field rule violations are 422 with
// one entry per field, anything else (bad JSON, wrong types) is 400.
func BindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		entries := make([]ErrorEntry, 0, len(ve))
		for _, fe := range ve {
			entries = append(entries, ErrorEntry{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
				Code:    CodeValidation,
			})
		}
		Fail(c, http.StatusUnprocessableEntity, "Validation failed", entries...)
		return
	}
	Fail(c, http.StatusBadRequest, "Malformed request body", ErrorEntry{Message: "Malformed request body", Code: CodeBadRequest})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "uuid":
		return fe.Field() + " must be a valid id"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must not exceed " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}

var registerOnce sync.Once

// UseJSONFieldNames makes gin's validator report fields by their json name.
func UseJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
