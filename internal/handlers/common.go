package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/bizboard/pkg/logger"
	"github.com/huangang/bizboard/pkg/response"
)

const defaultStoreTimeout = 5 * time.Second

// storeContext bounds the store calls of one request. Client disconnects do
// not cancel it, so a mutation that has started runs to completion.
func storeContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return context.WithTimeout(context.WithoutCancel(c.Request.Context()), timeout)
}

// fail writes err as the JSON error envelope. Upstream failures are logged
// with their cause; client errors are not.
func fail(c *gin.Context, err error) {
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.Code == response.CodeUpstream {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	response.Error(c, err)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
