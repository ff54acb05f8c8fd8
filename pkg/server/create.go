package server

import (
	"errors"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

func NewFiber() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:     "livepoll",
		ProxyHeader: "X-Real-Ip",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		Network:     "tcp4",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"code":    strconv.Itoa(code),
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())

	app.Use(fiberzerolog.New(fiberzerolog.Config{
		Logger: &log.Logger,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET, POST, OPTIONS",
		AllowHeaders: "authorization, content-type, origin, x-request-id",
		MaxAge:       864000,
	}))

	return app
}
