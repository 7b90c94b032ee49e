package httptransport

import "github.com/gin-gonic/gin"

// APIResponse 统一的接口返回结构。失败时 detail 与 message 相同，前端按 detail 读取错误
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message"`
	Detail    string      `json:"detail,omitempty"`
	Code      int         `json:"code"`
	RequestID string      `json:"request_id,omitempty"`
}

// RespondSuccess 返回成功响应
func RespondSuccess(c *gin.Context, httpStatus int, data interface{}, message string) {
	if message == "" {
		message = "ok"
	}
	c.JSON(httpStatus, APIResponse{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      httpStatus,
		RequestID: c.GetString(requestIDKey),
	})
}

// RespondError 返回失败响应并终止后续处理
func RespondError(c *gin.Context, httpStatus int, message string, data interface{}) {
	c.AbortWithStatusJSON(httpStatus, APIResponse{
		Success:   false,
		Data:      data,
		Message:   message,
		Detail:    message,
		Code:      httpStatus,
		RequestID: c.GetString(requestIDKey),
	})
}
