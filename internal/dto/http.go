package dto

type BaseResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse carries a machine-readable code alongside the message,
// e.g. EMAIL_EXISTS on duplicate registration.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type PaginatedResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Skip    int         `json:"skip"`
	Limit   int         `json:"limit"`
}

func NewBaseResponse(message string, data interface{}) *BaseResponse {
	return &BaseResponse{Message: message, Data: data}
}

func NewErrorResponse(message, code string) *ErrorResponse {
	return &ErrorResponse{Message: message, Code: code}
}
