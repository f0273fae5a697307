package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/laocorp/pos-facturacion/internal/application/billing"
	"github.com/laocorp/pos-facturacion/internal/application/dto"
	"github.com/laocorp/pos-facturacion/internal/domain"
	"github.com/laocorp/pos-facturacion/internal/domain/repository"
)

// InvoiceHandler maneja la emisión y consulta de comprobantes electrónicos.
type InvoiceHandler struct {
	issueUC     *billing.IssueInvoiceUseCase
	invoiceRepo repository.ElectronicInvoiceRepository
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(issueUC *billing.IssueInvoiceUseCase, invoiceRepo repository.ElectronicInvoiceRepository) *InvoiceHandler {
	return &InvoiceHandler{issueUC: issueUC, invoiceRepo: invoiceRepo}
}

// Issue emite el comprobante de la venta de forma síncrona y devuelve el
// registro del intento, cualquiera sea su estado terminal.
// POST /api/v1/sales/:id/issue
func (h *InvoiceHandler) Issue(c *fiber.Ctx) error {
	record, err := h.issueUC.Issue(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapIssueError(c, err)
	}
	return c.JSON(dto.FromElectronicInvoice(record))
}

// Reissue repite la emisión de una venta cuyo último intento terminó en
// ERROR_ENVIO, con secuencial y clave de acceso nuevos.
// POST /api/v1/sales/:id/reissue
func (h *InvoiceHandler) Reissue(c *fiber.Ctx) error {
	record, err := h.issueUC.Reissue(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapIssueError(c, err)
	}
	return c.JSON(dto.FromElectronicInvoice(record))
}

// ListBySale devuelve los intentos de emisión de la venta, del más reciente
// al más antiguo.
// GET /api/v1/sales/:id/invoices
func (h *InvoiceHandler) ListBySale(c *fiber.Ctx) error {
	records, err := h.invoiceRepo.ListBySaleID(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.InvoiceResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.FromElectronicInvoice(r))
	}
	return c.JSON(out)
}

// GetByClaveAcceso busca un intento por su clave de acceso.
// GET /api/v1/invoices/clave/:clave
func (h *InvoiceHandler) GetByClaveAcceso(c *fiber.Ctx) error {
	record, err := h.invoiceRepo.GetByClaveAcceso(c.Context(), c.Params("clave"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.FromElectronicInvoice(record))
}

func (h *InvoiceHandler) mapIssueError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrNoSequential):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NO_SEQUENTIAL", Message: err.Error()})
	case errors.Is(err, domain.ErrNotRetryable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_RETRYABLE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
