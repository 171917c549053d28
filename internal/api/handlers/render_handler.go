package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/clipcast/internal/service"
	"github.com/maheshrc27/clipcast/internal/transfer"
)

type RenderHandler struct {
	s service.RenderService
}

func NewRenderHandler(s service.RenderService) *RenderHandler {
	return &RenderHandler{s: s}
}

func (h *RenderHandler) CreateRender(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	rc := &transfer.RenderCreation{
		Prompt:        c.FormValue("prompt"),
		Title:         c.FormValue("title"),
		Caption:       c.FormValue("caption"),
		FrameDuration: c.FormValue("frame_duration"),
		DriveToken:    c.FormValue("drive_token"),
		DriveFolder:   c.FormValue("drive_folder"),
		Facebook:      targetConfig(c, "fb", "page_id"),
		Instagram:     targetConfig(c, "ig", "user_id"),
		Tiktok:        targetConfig(c, "tiktok", ""),
		Youtube:       targetConfig(c, "yt", ""),
	}

	report, err := h.s.Render(c.Context(), rc, form)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, service.ErrNoPrompt) || errors.Is(err, service.ErrNoImages) || errors.Is(err, service.ErrDecode) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(report)
	}

	return c.Status(fiber.StatusOK).JSON(report)
}
