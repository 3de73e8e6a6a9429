package web

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// MiddleLogger writes one structured access-log line per request. An
// empty visitLogFile sends the log to stdout, which tests rely on.
func MiddleLogger(visitLogFile string, notLogged ...string) gin.HandlerFunc {

	visitLogInst := logrus.New()
	visitLogInst.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if visitLogFile != "" {
		visitLogInst.Out = &lumberjack.Logger{
			Filename:   visitLogFile,
			MaxSize:    500,
			MaxBackups: 10,
			MaxAge:     28,
			Compress:   true,
		}
	}
	visitLogInst.SetLevel(logrus.DebugLevel)

	//skip path
	var skip map[string]struct{}

	if length := len(notLogged); length > 0 {
		skip = make(map[string]struct{}, length)

		for _, p := range notLogged {
			skip[p] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		if raw != "" {
			path = path + "?" + raw
		}

		start := time.Now()
		c.Next()
		stop := time.Since(start)
		latency := fmt.Sprintf("%d us", int(math.Ceil(float64(stop.Nanoseconds())/1000.0)))
		statusCode := c.Writer.Status()
		dataLength := c.Writer.Size()
		if dataLength < 0 {
			dataLength = 0
		}

		if _, ok := skip[c.Request.URL.Path]; ok {
			return
		}

		entry := visitLogInst.WithFields(logrus.Fields{
			"statusCode": statusCode,
			"latency":    latency,
			"clientIP":   c.ClientIP(),
			"method":     c.Request.Method,
			"path":       path,
			"dataLength": dataLength,
			"userAgent":  c.Request.UserAgent(),
		})

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		} else {
			if statusCode >= http.StatusInternalServerError {
				entry.Error()
			} else if statusCode >= http.StatusBadRequest {
				entry.Warn()
			} else {
				entry.Info()
			}
		}
	}
}
