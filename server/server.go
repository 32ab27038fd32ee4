// Package server exposes the photo triage HTTP API and the embedded
// browser UI. The process assumes a single trusted local user; there is
// no authentication.
package server

import (
	_ "embed"
	"time"

	"phototriage/catalog"
	"phototriage/thumbnail"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

//go:embed static/index.html
var indexHTML []byte

// writeWait bounds how long a metadata POST waits for its persistent
// write before answering with the optimistic result
const writeWait = 5 * time.Second

// Handlers carries the session and renderer the routes operate on
type Handlers struct {
	session  *catalog.Session
	renderer *thumbnail.Renderer
}

// New builds the fiber application with all routes registered
func New(session *catalog.Session, renderer *thumbnail.Renderer) *fiber.App {
	h := &Handlers{session: session, renderer: renderer}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "phototriage",
	})
	app.Use(cors.New())

	app.Get("/", h.index)
	app.Get("/photos", h.photos)
	app.Get("/folders", h.folders)
	app.Get("/thumbnail", h.thumbnail)
	app.Get("/image", h.image)
	app.Get("/metadata", h.readMetadata)
	app.Post("/metadata", h.writeMetadata)
	app.Post("/copy-files", h.copyFiles)

	return app
}

func (h *Handlers) index(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(indexHTML)
}
