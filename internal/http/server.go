package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Server wraps the Fiber application setup.
type Server struct {
	app *fiber.App
}

// NewServer builds a Fiber app with shared middleware and lets the
// caller register its route table.
func NewServer(prefork bool, register func(app *fiber.App)) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Prefork:               prefork,
	})
	app.Use(recover.New())

	register(app)

	return &Server{app: app}
}

// Listen runs the server on the provided addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
