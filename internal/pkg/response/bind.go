package response

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON decodes the request body into dto. Validation failures answer 422,
// any other decode failure 400; in both cases it returns false and the
// handler should return.
func BindJSON(c *gin.Context, dto interface{}) bool {
	err := c.ShouldBindJSON(dto)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		UnprocessableEntity(c, validationMessage(verrs))
		return false
	}
	BadRequest(c, "invalid request body: "+err.Error())
	return false
}

func validationMessage(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
