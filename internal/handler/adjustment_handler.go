package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"pinkilang/internal/accounting"
	"pinkilang/internal/middleware"
	"pinkilang/internal/models"
	"pinkilang/internal/service"
	"pinkilang/internal/utils"
)

type AdjustmentHandler struct {
	adjustments *service.AdjustmentService
	jobs        JobEnqueuer
}

func NewAdjustmentHandler(adjustments *service.AdjustmentService, jobs JobEnqueuer) *AdjustmentHandler {
	return &AdjustmentHandler{adjustments: adjustments, jobs: jobs}
}

type SweepRequest struct {
	AsOf  string `json:"as_of"`
	Async bool   `json:"async"`
}

func (h *AdjustmentHandler) Manual(c *fiber.Ctx) error {
	var req models.ManualAdjustmentRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	result, err := h.adjustments.ApplyAdjustment(c.UserContext(), accounting.AdjustmentManual, service.AdjustmentRequest{Manual: req}, middleware.Actor(c))
	if err != nil {
		return respondError(c, err, "Failed to record adjustment")
	}
	return utils.CreatedResponse(c, "Adjustment recorded successfully", result)
}

// DepreciationSweep catches every fixed asset up to as_of (default today).
func (h *AdjustmentHandler) DepreciationSweep(c *fiber.Ctx) error {
	var req SweepRequest
	if len(c.Body()) > 0 {
		if ok, err := bind(c, &req); !ok {
			return err
		}
	}
	asOf, err := service.ParseDate(req.AsOf, time.Now())
	if err != nil {
		return respondError(c, err, "Invalid as_of date")
	}

	if req.Async && h.jobs != nil {
		jobID, err := h.jobs.EnqueueDepreciationSweep(c.UserContext(), asOf, middleware.Actor(c))
		if err != nil {
			return respondError(c, err, "Failed to queue depreciation sweep")
		}
		return c.Status(fiber.StatusAccepted).JSON(utils.Response{
			Success: true,
			Message: "Depreciation sweep queued",
			Data:    fiber.Map{"job_id": jobID},
		})
	}

	result, err := h.adjustments.ApplyAdjustment(c.UserContext(), accounting.AdjustmentAutoSweep, service.AdjustmentRequest{AsOf: asOf}, middleware.Actor(c))
	if err != nil {
		return respondError(c, err, "Failed to run depreciation sweep")
	}
	return utils.SuccessResponse(c, "Depreciation sweep finished", result.Sweep)
}

func (h *AdjustmentHandler) ListFixedAssets(c *fiber.Ctx) error {
	assets, err := h.adjustments.ListFixedAssets(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to retrieve fixed assets")
	}
	return utils.SuccessResponse(c, "Fixed assets retrieved successfully", assets)
}

func (h *AdjustmentHandler) GetFixedAsset(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid fixed asset ID", err)
	}
	asset, err := h.adjustments.GetFixedAsset(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to retrieve fixed asset")
	}
	return utils.SuccessResponse(c, "Fixed asset retrieved successfully", asset)
}

func (h *AdjustmentHandler) CreateFixedAsset(c *fiber.Ctx) error {
	var req models.FixedAssetRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	asset, err := h.adjustments.CreateFixedAsset(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Failed to create fixed asset")
	}
	return utils.CreatedResponse(c, "Fixed asset created successfully", asset)
}

func (h *AdjustmentHandler) Depreciate(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid fixed asset ID", err)
	}
	var req models.DepreciationRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	result, err := h.adjustments.ApplyAdjustment(c.UserContext(), accounting.AdjustmentAssetDepreciation,
		service.AdjustmentRequest{AssetID: id, Months: req.Months, Date: req.Date}, middleware.Actor(c))
	if err != nil {
		return respondError(c, err, "Failed to depreciate fixed asset")
	}
	return utils.SuccessResponse(c, "Depreciation recorded successfully", result.Depreciation)
}
