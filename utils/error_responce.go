package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/apperr"
)

// ErrorResponse is a struct for error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusOf maps an error kind onto its HTTP status.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindBadRequest:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// RespondError renders err with the status of its kind.
func RespondError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	return c.Status(StatusOf(kind)).JSON(ErrorResponse{Error: string(kind), Message: apperr.MessageOf(err)})
}

// ErrorHandler is the fiber app error handler. Framework errors such as
// unknown routes keep their status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := strings.ToUpper(strings.ReplaceAll(http.StatusText(fe.Code), " ", "_"))
		return c.Status(fe.Code).JSON(ErrorResponse{Error: code, Message: fe.Message})
	}
	return RespondError(c, err)
}
