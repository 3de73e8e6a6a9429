package handler

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tekrabyte/tekraswap/core/apperror"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

type Response struct {
	Code    int64       `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
}

func writeSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// writeError maps the error taxonomy onto HTTP statuses. Wrapped internal
// details never reach the response body.
func writeError(c *gin.Context, err error) {
	if ae := apperror.From(err); ae != nil {
		c.JSON(ae.Status(), &Response{
			Code:    int64(ae.Status()),
			Message: ae.Message,
			Data:    gin.H{"kind": string(ae.Kind)},
		})
		return
	}

	logger.Logrus.WithFields(logrus.Fields{"Path": c.Request.URL.Path, "ErrMsg": err}).Error("handler unexpected error")
	c.JSON(http.StatusInternalServerError, &Response{
		Code:    http.StatusInternalServerError,
		Message: "internal error, please retry",
	})
}

func PrintStack() string {
	var buf [4096]byte
	n := runtime.Stack(buf[:], false)
	return string(buf[:n])
}
