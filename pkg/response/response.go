// Package response writes the JSON envelope shared by every HTTP endpoint.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shareit-app/service-booking/pkg/domain"
)

// Envelope is the body of every response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody describes a failure.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries pagination details.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Success writes 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes 200 with a page of items and its metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	})
}

// BadRequest writes 400 with a validation error.
func BadRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, string(domain.ErrCodeValidation), message)
}

// Unauthorized writes 401.
func Unauthorized(c *gin.Context, message string) {
	writeError(c, http.StatusUnauthorized, string(domain.ErrCodeUnauthorized), message)
}

// Forbidden writes 403.
func Forbidden(c *gin.Context, message string) {
	writeError(c, http.StatusForbidden, string(domain.ErrCodeForbidden), message)
}

// TooManyRequests writes 429.
func TooManyRequests(c *gin.Context) {
	writeError(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
}

// Error maps err to a status code. Non-domain errors become 500 without leaking details.
func Error(c *gin.Context, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	writeError(c, StatusFor(de.Code), string(de.Code), de.Message)
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeConflict, domain.ErrCodeInvalidState:
		return http.StatusConflict
	case domain.ErrCodeForbidden:
		return http.StatusForbidden
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}
