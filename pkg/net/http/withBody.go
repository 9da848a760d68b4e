package http

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/gofiber/fiber/v2"
)

// DecodeHandlerFunc receives a request body already decoded (and
// validated) into the struct WithBody was constructed with.
type DecodeHandlerFunc func(payload any, c *fiber.Ctx) error

func newOfType(sample any) any {
	t := reflect.TypeOf(sample)
	return reflect.New(t.Elem()).Interface()
}

// WithBody decodes the request body as JSON into a fresh instance of the
// same type as sample, ignoring unknown fields, runs struct-tag
// validation, and only then calls handler.
func WithBody(sample any, handler DecodeHandlerFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := newOfType(sample)

		dec := json.NewDecoder(bytes.NewReader(c.Body()))

		if err := dec.Decode(payload); err != nil {
			return BadRequest(c, ResponseError{
				Code:    "MALFORMED_REQUEST",
				Title:   "Malformed Request",
				Message: err.Error(),
			})
		}

		if err := ValidateStruct(payload); err != nil {
			return BadRequest(c, err)
		}

		return handler(payload, c)
	}
}
