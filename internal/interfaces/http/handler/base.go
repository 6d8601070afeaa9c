// Package handler exposes the storefront rules over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/application/checkout"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/lfs/storefront/internal/infrastructure/logger"
	"github.com/lfs/storefront/internal/interfaces/http/dto"
	"github.com/lfs/storefront/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// SessionLoader builds the checkout session of a visitor
type SessionLoader interface {
	Load(ctx context.Context, id checkout.Identity) (*checkout.Session, error)
}

// BaseHandler provides common handler utilities
type BaseHandler struct {
	sessions SessionLoader
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// HandleError converts domain errors to HTTP responses. Everything else is
// logged and answered with 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	_ = c.Error(err)
	logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// BindJSON binds the request body and writes the validation response on
// failure
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindQuery binds the query string and writes the validation response on
// failure
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// UUIDParam parses a path parameter as UUID
func (h *BaseHandler) UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// Session loads the checkout session of the request's visitor
func (h *BaseHandler) Session(c *gin.Context) (*checkout.Session, bool) {
	sess, err := h.sessions.Load(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return sess, true
}
