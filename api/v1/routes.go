package v1

import (
	"livepoll/api/v1/handlers"
	"livepoll/internal/gateway"
	"livepoll/internal/poll"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, svc *poll.Service, gw *gateway.Gateway) {
	api := app.Group("/api/v1")

	handlers.RegisterPolls(api.Group("/polls"), svc, gw)
	handlers.RegisterSystem(api.Group("/system"))
}
