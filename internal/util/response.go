package util

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies a failure and fixes its HTTP status.
type Kind int

const (
	MissingCredential Kind = iota + 1
	InvalidCredential
	RouteNotFound
	MethodNotAllowed
	UnprocessableRequest
	InternalFault
)

var kindStatus = map[Kind]int{
	MissingCredential:    http.StatusBadRequest,
	InvalidCredential:    http.StatusUnauthorized,
	RouteNotFound:        http.StatusNotFound,
	MethodNotAllowed:     http.StatusMethodNotAllowed,
	UnprocessableRequest: http.StatusUnprocessableEntity,
	InternalFault:        http.StatusInternalServerError,
}

func (k Kind) String() string {
	switch k {
	case MissingCredential:
		return "MissingCredential"
	case InvalidCredential:
		return "InvalidCredential"
	case RouteNotFound:
		return "RouteNotFound"
	case MethodNotAllowed:
		return "MethodNotAllowed"
	case UnprocessableRequest:
		return "UnprocessableRequest"
	case InternalFault:
		return "InternalFault"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Status is the HTTP status code for k, 500 for unknown kinds.
func (k Kind) Status() int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// APIError is a failure that maps 1:1 to a status and a fixed body.
type APIError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *APIError) Unwrap() error { return e.Err }

// NewError builds an APIError of kind k.
func NewError(k Kind, msg string, err error) *APIError {
	return &APIError{Kind: k, Msg: msg, Err: err}
}

// Msg writes the {"msg": ...} body used by the auth endpoints.
func Msg(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"msg": msg})
}

// Fail writes e as a {"msg": ...} body with the status of its kind.
func Fail(c *gin.Context, e *APIError) {
	Msg(c, e.Kind.Status(), e.Msg)
}

// APIPrefix is the path prefix owned by route groups. Anything else belongs
// to the frontend bundle.
const APIPrefix = "/api"

// IsAPIPath reports whether path is /api or below it.
func IsAPIPath(path string) bool {
	return path == APIPrefix || len(path) > len(APIPrefix) && path[:len(APIPrefix)+1] == APIPrefix+"/"
}

// NotFound writes the API 404 body.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "Not found",
		"message": fmt.Sprintf("The endpoint %s was not found", c.Request.URL.Path),
	})
}

// MethodNotAllowedResponse writes the 405 body listing the methods the path accepts.
func MethodNotAllowedResponse(c *gin.Context, allowed []string) {
	if allowed == nil {
		allowed = []string{}
	}
	c.JSON(http.StatusMethodNotAllowed, gin.H{
		"error":           "Method not allowed",
		"message":         fmt.Sprintf("The method %s is not allowed for this endpoint", c.Request.Method),
		"allowed_methods": allowed,
	})
}

// Unprocessable writes the 422 body.
func Unprocessable(c *gin.Context) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "Unprocessable entity",
		"message": "The request was well-formed but was unable to be followed due to semantic errors",
	})
}

// InternalError writes the 500 body. The cause is never included.
func InternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"message": "An unexpected error occurred on the server",
	})
}
