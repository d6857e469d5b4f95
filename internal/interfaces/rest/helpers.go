package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexuscrm/fieldstudio/internal/logger"
	"github.com/nexuscrm/fieldstudio/pkg/errors"
)

// Response keys.
const (
	ResponseError   = "error"
	ResponseMessage = "message"
	ResponseCode    = "code"
	ResponseData    = "data"
	ResponseDetails = "details"
)

// RespondAppError sends a standardised JSON error response using pkg/errors.
// Inline validation messages are attached under details.
func RespondAppError(c *gin.Context, err error) {
	status := errors.GetHTTPStatus(err)
	resp := errors.ToResponse(err)

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "status", status, "method", c.Request.Method, "path", c.Request.URL.Path, "error", resp.Message)
	}

	body := gin.H{
		ResponseError:   resp.Message,
		ResponseMessage: resp.Message,
		ResponseCode:    resp.Code,
		ResponseData:    nil,
	}
	if resp.Details != nil {
		body[ResponseDetails] = resp.Details
	}
	c.JSON(status, body)
}

// BindJSON binds JSON and returns true if successful. If failed, it sends bad request error.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// HandleGet executes a read action and writes its result as the response body.
func HandleGet(c *gin.Context, action func() (interface{}, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
