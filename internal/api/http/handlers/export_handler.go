package handlers

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recruitment-crm/internal/export"
	"github.com/spec-kit/recruitment-crm/internal/service"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

// ExportHandler streams CSV and XLSX downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exportService}
}

// Candidates GET /export/candidates?format=csv|xlsx plus any candidate search filter.
func (h *ExportHandler) Candidates(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	format, err := exportFormat(c)
	if err != nil {
		return err
	}
	filter, err := parseCandidateFilter(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	result, err := h.exports.ExportCandidates(c.UserContext(), principal, filter, format, &buf)
	if err != nil {
		return err
	}
	return sendExport(c, result, buf.Bytes())
}

// Calls GET /export/calls?format=csv|xlsx plus any call filter.
func (h *ExportHandler) Calls(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	format, err := exportFormat(c)
	if err != nil {
		return err
	}
	filter, err := parseCallFilter(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	result, err := h.exports.ExportCalls(c.UserContext(), principal, filter, format, &buf)
	if err != nil {
		return err
	}
	return sendExport(c, result, buf.Bytes())
}

func exportFormat(c *fiber.Ctx) (export.Format, error) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return "", apperrors.NewValidationError(err.Error(), map[string]any{"format": c.Query("format")})
	}
	return format, nil
}

func sendExport(c *fiber.Ctx, result *service.ExportResult, body []byte) error {
	c.Set(fiber.HeaderContentType, result.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Set("X-Export-Rows", fmt.Sprint(result.Rows))
	return c.Send(body)
}
