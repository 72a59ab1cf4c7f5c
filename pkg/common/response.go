package common

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Error: message,
	}
}

// NewFailureResponse 创建内部错误响应，不向调用方暴露细节
func NewFailureResponse() *ErrorResponse {
	return &ErrorResponse{
		Error: "An internal error occurred.",
	}
}
