package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	apperrors "github.com/deskflow/helpdesk-api/pkg/util/errorutil"
)

// parseBody decodes a JSON body into out. An empty body leaves out untouched.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func ticketIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewFieldError("id", "invalid ticket id")
	}
	return id, nil
}

// bookIDParam copies the id out of fiber's request buffer, which is reused once the
// handler returns.
func bookIDParam(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

// optionalQuery returns nil when the query argument is absent.
func optionalQuery(c *fiber.Ctx, key string) *string {
	args := c.Context().QueryArgs()
	if !args.Has(key) {
		return nil
	}
	value := string(args.Peek(key))
	return &value
}
