package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// HttpError carries a status code through the error-handler middleware.
type HttpError struct {
	Code    int
	Message string
}

func (e *HttpError) Error() string {
	return e.Message
}

func NewHttpError(code int, message string) *HttpError {
	return &HttpError{Code: code, Message: message}
}

var validate = validator.New()

// ValidateRequest runs struct-tag validation and converts failures into a
// 400 with readable field messages.
func ValidateRequest(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			messages := make([]string, 0, len(errs))
			for _, fe := range errs {
				messages = append(messages, fmt.Sprintf("field '%s' failed on '%s'", fe.Field(), fe.Tag()))
			}
			return NewHttpError(400, strings.Join(messages, "; "))
		}
		return NewHttpError(400, err.Error())
	}
	return nil
}
