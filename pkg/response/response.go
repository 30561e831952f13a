package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/classtime/classtime-api/pkg/errors"
)

// ErrorBody is the client-facing error: the operation name plus a
// human-readable message. Internal detail never crosses this boundary.
type ErrorBody struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Envelope is the uniform response contract shared by every operation.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Err     *ErrorBody  `json:"err"`
}

// OK sends a successful envelope.
func OK(c *gin.Context, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Error converts the error to the envelope, keyed by the operation name.
// Unrecognised errors collapse into a generic "Server Error" message.
func Error(c *gin.Context, op string, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{
		Success: false,
		Err:     &ErrorBody{Name: op, Message: appErr.Message},
	})
}
