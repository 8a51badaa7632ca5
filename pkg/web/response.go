// Package web defines common components for a web application.
package web

import (
	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into a response carrying only the error message.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns a human readable message for a failed binding validation.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return " field value must be greater or equal to " + fe.Param()
	case "max":
		return " field value must be less or equal to " + fe.Param()
	case "amount":
		return " field must be a valid monetary amount"
	case "gte":
		return " field value must be greater or equal to " + fe.Param()
	}

	return " field is invalid"
}
