package server

import (
	"os"
	"time"

	"phototriage/copier"
	"phototriage/scanner"
	"phototriage/types"

	"github.com/gofiber/fiber/v2"
)

// photos scans the requested folder and returns the visible set. The
// catalog is replaced wholesale on every request; optional minRating and
// label parameters adjust the session filter before the set is derived.
func (h *Handlers) photos(c *fiber.Ctx) error {
	root := c.Query("path")
	if root == "" {
		return errorJSON(c, fiber.StatusBadRequest, "path parameter is required")
	}
	recursive := c.QueryBool("recursive", false)

	if c.Query("minRating") != "" || c.Query("label") != "" {
		h.session.SetCriteria(types.FilterCriteria{
			MinRating: c.QueryInt("minRating", 0),
			Label:     types.ColorLabel(c.Query("label", string(types.LabelAny))),
		})
	}

	visible := h.session.Scan(root, recursive)
	return c.JSON(fiber.Map{
		"path":     root,
		"photos":   visible,
		"selected": h.session.Selected(),
	})
}

func (h *Handlers) folders(c *fiber.Ctx) error {
	root := c.Query("path")
	if root == "" {
		return errorJSON(c, fiber.StatusBadRequest, "path parameter is required")
	}

	folders, err := scanner.ListFolders(root)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{
		"path":    root,
		"folders": folders,
	})
}

func (h *Handlers) thumbnail(c *fiber.Ctx) error {
	file := c.Query("file")
	if file == "" {
		return errorJSON(c, fiber.StatusBadRequest, "file parameter is required")
	}
	if _, err := os.Stat(file); err != nil {
		return errorJSON(c, fiber.StatusNotFound, "file not found")
	}

	data, err := h.renderer.Thumbnail(file)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(data)
}

func (h *Handlers) image(c *fiber.Ctx) error {
	file := c.Query("file")
	if file == "" {
		return errorJSON(c, fiber.StatusBadRequest, "file parameter is required")
	}
	if _, err := os.Stat(file); err != nil {
		return errorJSON(c, fiber.StatusNotFound, "file not found")
	}

	data, err := h.renderer.Image(file)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(data)
}

// readMetadata reports the in-memory record when the file is part of the
// catalog, falling back to a direct gateway read. Read failures surface
// as default metadata, never as an error.
func (h *Handlers) readMetadata(c *fiber.Ctx) error {
	file := c.Query("file")
	if file == "" {
		return errorJSON(c, fiber.StatusBadRequest, "file parameter is required")
	}

	if rec, ok := h.session.Store().Get(file); ok {
		return c.JSON(tagsResponse(rec.Rating, rec.Label))
	}

	rating, label, err := h.session.Store().Gateway().ReadTags(file)
	if err != nil {
		return c.JSON(tagsResponse(0, types.LabelNone))
	}
	return c.JSON(tagsResponse(rating, label))
}

type metadataRequest struct {
	File   string            `json:"file"`
	Rating *int              `json:"rating"`
	Label  *types.ColorLabel `json:"label"`
}

// writeMetadata applies an optimistic edit and queues the persistent
// write. The response waits for the write up to writeWait; a write still
// in flight after that is answered as accepted, since the optimistic
// value is already live.
func (h *Handlers) writeMetadata(c *fiber.Ctx) error {
	var req metadataRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.File == "" {
		return errorJSON(c, fiber.StatusBadRequest, "file field is required")
	}
	if req.Rating == nil && req.Label == nil {
		return errorJSON(c, fiber.StatusBadRequest, "nothing to write: provide rating or label")
	}
	if req.Label != nil && !types.ValidLabel(*req.Label) {
		return errorJSON(c, fiber.StatusBadRequest, "invalid label")
	}

	result, ok := h.session.SubmitWrite(req.File, types.Tags{Rating: req.Rating, Label: req.Label})
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "file is not part of the current catalog")
	}

	select {
	case err := <-result:
		if err != nil {
			// Optimistic value stays; the client decides how loudly to surface this
			return errorJSON(c, fiber.StatusInternalServerError, err.Error())
		}
	case <-time.After(writeWait):
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"selected": h.session.Selected(),
	})
}

type copyRequest struct {
	Files       []string `json:"files"`
	Destination string   `json:"destination"`
}

func (h *Handlers) copyFiles(c *fiber.Ctx) error {
	var req copyRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Files) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "files field is required")
	}

	count, err := copier.CopyFiles(req.Files, req.Destination)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   count,
	})
}

// tagsResponse shapes the metadata payload; an unset label serializes as
// null rather than an empty string
func tagsResponse(rating int, label types.ColorLabel) fiber.Map {
	var l *types.ColorLabel
	if label != types.LabelNone {
		l = &label
	}
	return fiber.Map{
		"rating": rating,
		"label":  l,
	}
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}
