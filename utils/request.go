package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/apperr"
)

const (
	MinLimit = 1
	MaxLimit = 50
)

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// BindJSON parses the request body into dst and validates its struct tags.
func BindJSON(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.BadRequest("cannot parse request body")
	}
	return Validate(dst)
}

// Validate runs struct tag validation and reports the first failing field.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		msg := fmt.Sprintf("%s failed on %s", f.Field(), f.Tag())
		if f.Param() != "" {
			msg += "=" + f.Param()
		}
		return apperr.BadRequest("%s", msg)
	}
	return apperr.BadRequest("%s", err.Error())
}

// Limit reads the limit query parameter clamped to [MinLimit, MaxLimit].
// A missing parameter yields 0 so the service default applies.
func Limit(c *fiber.Ctx) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit := c.QueryInt("limit", MinLimit)
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Page reads the 1-indexed page query parameter.
func Page(c *fiber.Ctx) int {
	return c.QueryInt("page", 1)
}

// QueryFloat parses an optional float query parameter.
func QueryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	var v float64
	if _, err := fmt.Sscan(raw, &v); err != nil {
		return nil, apperr.BadRequest("%s must be a number", key)
	}
	return &v, nil
}

// QueryList splits a comma separated query parameter, dropping blanks.
func QueryList(c *fiber.Ctx, key string) []string {
	var out []string
	for _, part := range strings.Split(c.Query(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
