// Package http holds the Fiber-facing response and error-rendering
// helpers shared by every handler in internal/adapters/http/in.
package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ResponseError is the wire shape of every error response body.
type ResponseError struct {
	Code    string `json:"code,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r ResponseError) Error() string { return r.Message }

// ValidationFieldError is the wire shape of a single-field validation failure.
type ValidationFieldError struct {
	Code    string            `json:"code,omitempty"`
	Title   string            `json:"title,omitempty"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (r ValidationFieldError) Error() string { return r.Message }

// OK writes a 200 with the given payload.
func OK(c *fiber.Ctx, payload any) error {
	return c.Status(fiber.StatusOK).JSON(payload)
}

// Created writes a 201 with the given payload.
func Created(c *fiber.Ctx, payload any) error {
	return c.Status(fiber.StatusCreated).JSON(payload)
}

// NoContent writes a 204.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// BadRequest writes a 400 with a ResponseError or ValidationFieldError body.
func BadRequest(c *fiber.Ctx, body error) error {
	return c.Status(fiber.StatusBadRequest).JSON(body)
}

// Unauthorized writes a 401.
func Unauthorized(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// Forbidden writes a 403.
func Forbidden(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// NotFound writes a 404.
func NotFound(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// Conflict writes a 409.
func Conflict(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusConflict).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// TooManyRequests writes a 429, setting Retry-After when retryAfter > 0.
func TooManyRequests(c *fiber.Ctx, code, title, message string, retryAfterSeconds int) error {
	if retryAfterSeconds > 0 {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
	}

	return c.Status(fiber.StatusTooManyRequests).JSON(ResponseError{Code: code, Title: title, Message: message})
}

// InternalServerError writes a 500.
func InternalServerError(c *fiber.Ctx, code, title, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ResponseError{Code: code, Title: title, Message: message})
}
