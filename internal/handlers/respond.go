package handlers

import (
	"errors"
	"reflect"
	"strings"

	appErr "folio/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// FieldError is one entry of a 400 validation response.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// newValidator returns a validator that reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateRequest checks req and returns one FieldError per failing field,
// using the field's msg tag as the message.
func validateRequest(v *validator.Validate, req any) []FieldError {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Msg: err.Error()}}
	}

	t := reflect.Indirect(reflect.ValueOf(req)).Type()
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := "Invalid value"
		if f, ok := t.FieldByName(fe.StructField()); ok && f.Tag.Get("msg") != "" {
			msg = f.Tag.Get("msg")
		}
		out = append(out, FieldError{Field: fe.Field(), Msg: msg})
	}
	return out
}

func respondValidation(c *fiber.Ctx, errs []FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"errors": errs,
	})
}

func respondBadBody(c *fiber.Ctx, log *zap.Logger, err error) error {
	log.Debug("unparseable request body", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
	})
}

// respondError writes err as {"message": ...} with the status of its code.
// Server errors are logged with their cause and answered with a generic message.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	code := appErr.CodeOf(err)
	status := appErr.HTTPStatus(code)

	message := "Server error"
	var ae *appErr.AppError
	if code != appErr.CodeInternal && errors.As(err, &ae) {
		message = ae.Message
	}

	if status >= fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
	})
}
