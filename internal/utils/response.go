package utils

import (
	"github.com/gofiber/fiber/v2"
)

// Response is the JSON envelope every API endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SuccessResponse writes a 200 envelope.
func SuccessResponse(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreatedResponse writes a 201 envelope.
func CreatedResponse(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse writes an error envelope. Internal errors are logged and
// their detail is kept out of the body.
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	resp := Response{
		Success: false,
		Message: message,
	}
	if err != nil {
		if status >= fiber.StatusInternalServerError {
			GetLogger().WithError(err).WithField("path", c.Path()).Error(message)
		} else {
			resp.Error = err.Error()
		}
	}
	return c.Status(status).JSON(resp)
}

// ErrorResponseWithData writes an error envelope carrying a payload, such
// as a list of field errors.
func ErrorResponseWithData(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Response{
		Success: false,
		Message: message,
		Data:    data,
	})
}
