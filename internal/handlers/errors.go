package handlers

import (
	"net/http"

	"elite-rental-funnel/pkg/lambda"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NotFound is the response for unrouted function requests
func NotFound() *lambda.Response {
	return lambda.JSONResponse(http.StatusNotFound, ErrorResponse{Error: "Not found"}, nil)
}

// FunctionFailure is the response for a function that could not start
func FunctionFailure(err error) *lambda.Response {
	return lambda.JSONResponse(http.StatusInternalServerError, ErrorResponse{
		Error:   "Function error",
		Message: err.Error(),
	}, map[string]string{"Cache-Control": "no-store"})
}

// BadRequest is the response for events whose body cannot be decoded
func BadRequest(err error) *lambda.Response {
	return lambda.JSONResponse(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request body",
		Message: err.Error(),
	}, nil)
}
