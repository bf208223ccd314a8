package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"

	"github.com/iabetor/stream2pod/internal/logger"
	"github.com/iabetor/stream2pod/internal/podcast"
)

const (
	reasonInvalidRequest = "invalid_request"
	reasonBusy           = "busy"
	reasonNotFound       = "not_found"

	// 客户端已断开，借用 nginx 的 499，仅用于日志
	statusClientClosedRequest = 499
)

// classify 将错误映射为 HTTP 状态码和原因。
func classify(err error) (int, string) {
	reason := podcast.Reason(err)
	switch reason {
	case podcast.ReasonRetrieval, podcast.ReasonGeneration:
		return http.StatusBadGateway, reason
	case podcast.ReasonEmptyScript:
		return http.StatusInternalServerError, reason
	case podcast.ReasonSynthesis:
		if errors.Is(err, ants.ErrPoolOverload) {
			return http.StatusServiceUnavailable, reasonBusy
		}
		return http.StatusBadGateway, reason
	default:
		return http.StatusInternalServerError, reason
	}
}

// abortWithError 写入纯文本错误响应 "<reason>: <message>"。
// 客户端已断开时不写响应体。
func abortWithError(c *gin.Context, err error) {
	if c.Request.Context().Err() != nil && errors.Is(err, context.Canceled) {
		logger.Debugf("[server] 客户端已断开 (request_id=%s): %v", c.GetString(ctxRequestID), err)
		c.AbortWithStatus(statusClientClosedRequest)
		return
	}

	status, reason := classify(err)
	logger.Warnf("[server] 请求失败 (request_id=%s, status=%d): %v", c.GetString(ctxRequestID), status, err)
	c.Abort()
	c.String(status, "%s: %s", reason, err.Error())
}

func abortInvalid(c *gin.Context, err error) {
	c.Abort()
	c.String(http.StatusBadRequest, "%s: %s", reasonInvalidRequest, err.Error())
}
