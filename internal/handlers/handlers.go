package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/pagination"
	"github.com/yukikurage/project-management-api/internal/services"
)

func init() {
	// Report validation failures under JSON member names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindJSON decodes the request body, answering 400 on failure
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = describeFieldError(fe)
		}
		apierrors.BadRequestWithDetails(c, "Validation failed", details)
		return false
	}

	apierrors.BadRequest(c, "Invalid request body")
	return false
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// parseID reads a positive integer path parameter
func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequestWithDetails(c, "Invalid identifier", map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// etag renders a resource version as a strong entity tag
func etag(version uint64) string {
	return strconv.Quote(strconv.FormatUint(version, 10))
}

// expectedVersion reads If-Match. An absent header or "*" imposes no
// version; anything unparsable is rejected.
func expectedVersion(c *gin.Context) (*uint64, bool) {
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" || raw == "*" {
		return nil, true
	}

	raw = strings.TrimPrefix(raw, "W/")
	v, err := strconv.ParseUint(strings.Trim(raw, `"`), 10, 64)
	if err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid If-Match header", map[string]string{"If-Match": "must be a version entity tag"})
		return nil, false
	}
	return &v, true
}

// respondError maps service errors onto the API error envelope. Anything
// unrecognised is logged and reported as a generic 500.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		verr *services.ValidationError
		perr *pagination.ParamError
	)

	switch {
	case errors.As(err, &verr):
		apierrors.BadRequestWithDetails(c, "Validation failed", verr.Fields)
	case errors.As(err, &perr):
		apierrors.BadRequestWithDetails(c, "Invalid pagination parameters", map[string]string{perr.Field: perr.Reason})
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskProjectMismatch):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeTaskProjectMismatch, "Task does not belong to the project")
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, "Administrator role required")
	case errors.Is(err, services.ErrVersionConflict):
		apierrors.Conflict(c, "Resource was modified by another request")
	default:
		logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("request_id", middleware.GetRequestID(c)),
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
		apierrors.InternalError(c, "")
	}
}
