package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()

		logger.Printf("%s %s%s\033[0m %s %s%d\033[0m %v",
			c.IP(),
			getMethodColor(method), method,
			c.Path(),
			getStatusColor(status), status,
			time.Since(start),
		)

		return err
	}
}

func getStatusColor(status int) string {
	switch {
	case status >= 500:
		return "\033[31m"
	case status >= 400:
		return "\033[33m"
	case status >= 300:
		return "\033[36m"
	case status >= 200:
		return "\033[32m"
	default:
		return "\033[37m"
	}
}

func getMethodColor(method string) string {
	switch method {
	case "GET":
		return "\033[34m"
	case "POST":
		return "\033[33m"
	case "PUT":
		return "\033[36m"
	case "DELETE":
		return "\033[31m"
	default:
		return "\033[37m"
	}
}
