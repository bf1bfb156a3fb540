package handlers

import (
	"net/http"

	"landlord_docs_app_go/config"
	"landlord_docs_app_go/services"

	"github.com/labstack/echo/v4"
)

// Assembler renders previews and packs; set at startup
var Assembler *services.Assembler

// Validator checks request payloads
var Validator = services.NewValidator()

func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get("config").(*config.Config); ok {
		return cfg
	}
	return &config.Config{EmailTestMode: true}
}

// HealthHandler reports liveness
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
