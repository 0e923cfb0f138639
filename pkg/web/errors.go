package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/go-urdfpose/internal/log"
	"github.com/teslashibe/go-urdfpose/pkg/motion"
	"github.com/teslashibe/go-urdfpose/pkg/robot"
	"github.com/teslashibe/go-urdfpose/pkg/urdf"
	"github.com/teslashibe/go-urdfpose/pkg/video"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
}

// statusError maps domain errors to HTTP errors.
func statusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, urdf.ErrUnknownJoint),
		errors.Is(err, motion.ErrNotFound),
		errors.Is(err, video.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, robot.ErrNotMovable),
		errors.Is(err, motion.ErrInvalidRate),
		errors.Is(err, motion.ErrTooFewKeyframes),
		errors.Is(err, motion.ErrTooManyFrames),
		errors.Is(err, video.ErrSeek):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, motion.ErrAlreadyPlaying):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, video.ErrOpen):
		return fiber.NewError(fiber.StatusUnsupportedMediaType, err.Error())
	}
	return err
}

func badRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}
