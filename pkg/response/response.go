package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes shared by every API response.
const (
	CodeNotFound        = "not_found"
	CodeForbidden       = "forbidden"
	CodeUnauthenticated = "unauthenticated"
	CodeInvalidInput    = "invalid_input"
	CodeConflict        = "conflict"
	CodeUpstream        = "upstream"
	CodeRateLimited     = "rate_limited"
)

// Response is the unified API response format.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// AppError represents a structured application error with HTTP status and error code.
type AppError struct {
	HTTPStatus int    // HTTP status code (e.g. 400, 404, 500)
	Code       string // One of the Code* constants
	Message    string // Human-readable error message
	Err        error  // Underlying cause, not exposed to clients
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Pre-defined error constructors

func NewBadRequest(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Code: CodeInvalidInput, Message: msg}
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Code: CodeUnauthenticated, Message: msg}
}

func NewForbidden(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Code: CodeForbidden, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Code: CodeConflict, Message: msg}
}

func NewTooManyRequests(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusTooManyRequests, Code: CodeRateLimited, Message: msg}
}

// WrapUpstream turns a data-store failure into a 500 that keeps the cause for logging.
func WrapUpstream(msg string, err error) *AppError {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &AppError{HTTPStatus: http.StatusInternalServerError, Code: CodeUpstream, Message: msg, Err: err}
}

// IsCode reports whether err is an *AppError carrying the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// Error sends an error response. If err is an *AppError, its code and status
// are used; otherwise a generic 500 upstream error is returned.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Response{
			Error: appErr.Message,
			Code:  appErr.Code,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{
		Error: err.Error(),
		Code:  CodeUpstream,
	})
}

// AbortWithError writes the error envelope and stops the middleware chain.
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// Convenience error response functions

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Error: msg, Code: CodeInvalidInput})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Error: msg, Code: CodeNotFound})
}
