package response

import (
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"
)

var notFoundMessages = []string{
	"Not Found",
	"Nothing to study here",
	"This page wandered off before the exam",
}

// OK sends a 200 response with data encoded as-is.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Result wraps an AI generated payload in the {result: ...} envelope.
func Result(c *gin.Context, result interface{}) {
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, message)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context) {
	abort(c, http.StatusNotFound, notFoundMessages[rand.IntN(len(notFoundMessages))])
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	abort(c, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	abort(c, http.StatusConflict, message)
}

// UnprocessableEntity sends a 422 error response.
func UnprocessableEntity(c *gin.Context, message string) {
	abort(c, http.StatusUnprocessableEntity, message)
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context, message string) {
	abort(c, http.StatusTooManyRequests, message)
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, err error) {
	abort(c, http.StatusInternalServerError, err.Error())
}

// ServiceUnavailable sends a 503 error response, used when a collaborator is not configured.
func ServiceUnavailable(c *gin.Context, message string) {
	abort(c, http.StatusServiceUnavailable, message)
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"ok": 0, "code": code, "message": message})
}
