package logger

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ginKey = "logger"

// FromGin returns the request-scoped logger set by the request id middleware
func FromGin(c *gin.Context) *zap.Logger {
	if c != nil {
		if l, ok := c.Get(ginKey); ok {
			if zl, ok := l.(*zap.Logger); ok {
				return zl
			}
		}
	}
	return log
}

// SetGin attaches a request-scoped logger
func SetGin(c *gin.Context, l *zap.Logger) {
	c.Set(ginKey, l)
}
