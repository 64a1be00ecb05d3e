package recon

import (
	"bytes"

	"datarec/core/errors"
	"datarec/core/logger"
	"datarec/feature/source"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reconciliation jobs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the reconciliation routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/recon")
	group.Get("/jobs", h.HandleListJobs)
	group.Get("/jobs/:name", h.HandleGetJob)
	group.Post("/jobs/:name/run", h.HandleRunJob)
	group.Get("/reports/:name", h.HandleListReports)
}

// HandleListJobs lists the configured jobs.
func (h *Handler) HandleListJobs(c *fiber.Ctx) error {
	names, err := h.service.ListJobs()
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list jobs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(fiber.Map{"jobs": names})
}

// HandleGetJob returns a job definition.
func (h *Handler) HandleGetJob(c *fiber.Ctx) error {
	j, err := h.service.GetJob(c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(j)
}

// HandleRunJob runs a job and answers with its report.
func (h *Handler) HandleRunJob(c *fiber.Ctx) error {
	name := c.Params("name")
	l := logger.WithJob(logger.WithRayID(h.service.logger, c), name)
	l.Info("Running reconciliation job")

	j, err := h.service.GetJob(name)
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.service.Run(c.UserContext(), j, l)
	if err != nil {
		return h.fail(c, err)
	}

	rep := res.Report()
	if c.Query("upload") == "true" {
		key, err := h.service.UploadReport(c.UserContext(), j.Name, rep)
		if err != nil {
			l.Error("Report upload failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":  "Failed to upload report",
				"report": rep,
			})
		}
		c.Set("X-Report-Key", key)
	}

	if c.Query("format") == "text" {
		var buf bytes.Buffer
		if err := res.WriteSummary(&buf); err != nil {
			return h.fail(c, err)
		}
		return c.SendString(buf.String())
	}
	return c.JSON(rep)
}

// HandleListReports lists the uploaded reports of a job.
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	reports, err := h.service.ListReports(c.UserContext(), c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	l := logger.WithRayID(h.service.logger, c)
	if status >= fiber.StatusInternalServerError {
		l.Error("Request failed", zap.Int("status", status), zap.Error(err))
	} else {
		l.Warn("Request rejected", zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrUnknownJob):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidJob):
		return fiber.StatusBadRequest
	case errors.Is(err, source.ErrLoad):
		return fiber.StatusInternalServerError
	case errors.Is(err, ErrRun):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrNoReportStore):
		return fiber.StatusNotImplemented
	}
	return fiber.StatusInternalServerError
}
