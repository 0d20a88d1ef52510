package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/identity"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/services"
)

type UserHandler struct {
	users  *services.UserService
	logger *slog.Logger
}

func NewUserHandler(users *services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// Login exchanges credentials for identity provider tokens
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	tokens, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTokenResponse(*tokens))
}

// GetUser returns the identity provider profile of a user
func (h *UserHandler) GetUser(c *gin.Context) {
	profile, err := h.users.GetUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondGatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserProfileDTO(*profile))
}

// respondGatewayError answers every identity provider failure with 400 and a
// code naming the cause.
func (h *UserHandler) respondGatewayError(c *gin.Context, err error) {
	var verr *services.ValidationError

	switch {
	case errors.As(err, &verr):
		apierrors.BadRequestWithDetails(c, "Validation failed", verr.Fields)
	case errors.Is(err, identity.ErrInvalidCredentials):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidCredentials, "Invalid username or password")
	case errors.Is(err, identity.ErrUserNotFound):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeNotFound, "User does not exist")
	case errors.Is(err, identity.ErrChallengeRequired):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeAuthChallengeRequired, "Additional authentication step required")
	default:
		h.logger.ErrorContext(c.Request.Context(), "identity provider request failed",
			slog.String("request_id", middleware.GetRequestID(c)),
			slog.Any("error", err),
		)
		apierrors.BadRequest(c, "Identity provider request failed")
	}
}
