package handler

import (
	"github.com/gofiber/fiber/v2"

	"pinkilang/internal/service"
	"pinkilang/internal/utils"
)

type JobHandler struct {
	jobs *service.JobStore
}

func NewJobHandler(jobs *service.JobStore) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	if h.jobs == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Background jobs are disabled", nil)
	}
	job, err := h.jobs.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve job")
	}
	return utils.SuccessResponse(c, "Job retrieved successfully", job)
}
