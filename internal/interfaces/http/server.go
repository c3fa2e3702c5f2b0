package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ServerConfig configuración de Fiber para la API. Immutable copia parámetros y cabeceras,
// que por defecto apuntan al buffer de fasthttp reutilizado entre peticiones.
func ServerConfig(appName string) fiber.Config {
	return fiber.Config{
		AppName:      appName,
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	}
}
