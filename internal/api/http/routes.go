// Package httpapi serves the local preferences UI: an embedded HTML
// form backed by two request/response operations, get settings and
// save settings.
package httpapi

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"

	"github.com/dualtemp/dualtemp/internal/settings"
)

//go:embed preferences.html
var prefsPage string

// SettingsService is the app-side contract behind the preferences UI.
// Saving is also the trigger for login-item registration, icon refresh,
// timer restart, and an immediate refresh cycle; all of that lives
// behind SaveSettings, not in the HTTP layer.
type SettingsService interface {
	Settings() settings.Settings
	SaveSettings(settings.Settings) error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service SettingsService) {
	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html")
		return c.SendString(prefsPage)
	})

	v1 := app.Group("/api/v1")

	v1.Get("/settings", func(c *fiber.Ctx) error {
		return c.JSON(service.Settings())
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		var st settings.Settings
		if err := c.BodyParser(&st); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := st.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := service.SaveSettings(st); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save settings")
		}

		return c.SendStatus(fiber.StatusNoContent)
	})
}
