package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/insidejustjoin/justjoin-sub002/pkg/errors"
)

// Body is the JSON envelope every API handler returns.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Message: message, Data: data})
}

func Fail(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Message: message, Data: data})
}

// FromError maps a coded error to its HTTP status and envelope. Unknown
// errors collapse to INTERNAL_ERROR without leaking the cause.
func FromError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.CodeInternal
	}
	msg := err.Error()
	if code == errors.CodeInternal {
		msg = "internal error"
	}
	c.JSON(errors.HTTPStatus(code), Body{Success: false, Error: code, Message: msg})
}
