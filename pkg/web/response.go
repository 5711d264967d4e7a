package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	weberrors "github.com/lk2023060901/aagateway/pkg/web/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 提示信息
	Data    any    `json:"data"`    // 数据载体
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    weberrors.CodeOK,
		Message: "ok",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// Fail 按业务错误码推导 HTTP 状态码
func Fail(c *gin.Context, code int, message string) {
	Error(c, weberrors.CodeToStatus(code), code, message)
}

