package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/laocorp/pos-facturacion/internal/application/billing"
	"github.com/laocorp/pos-facturacion/internal/application/dto"
	"github.com/laocorp/pos-facturacion/internal/application/sales"
	"github.com/laocorp/pos-facturacion/internal/domain"
	"github.com/laocorp/pos-facturacion/internal/domain/repository"
)

// SaleHandler maneja las peticiones HTTP de ventas.
type SaleHandler struct {
	createSale *sales.CreateSaleUseCase
	issueUC    *billing.IssueInvoiceUseCase
	saleRepo   repository.SaleRepository
}

// NewSaleHandler construye el handler.
func NewSaleHandler(createSale *sales.CreateSaleUseCase, issueUC *billing.IssueInvoiceUseCase, saleRepo repository.SaleRepository) *SaleHandler {
	return &SaleHandler{createSale: createSale, issueUC: issueUC, saleRepo: saleRepo}
}

// Create registra una venta y dispara la emisión del comprobante en segundo
// plano. La respuesta no espera al SRI: el estado del comprobante se consulta
// por GET /sales/:id/invoices.
// POST /api/v1/sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	sale, err := h.createSale.Execute(c.Context(), &in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
		case errors.Is(err, domain.ErrInsufficientStock):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	// Solo ventas con secuencial fiscal entran al pipeline de emisión.
	if sale.Sequential {
		h.issueUC.ProcessAsync(sale.ID)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.FromSale(sale))
}

// GetByID devuelve la venta con sus líneas.
// GET /api/v1/sales/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	sale, err := h.saleRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	items, err := h.saleRepo.GetItemsBySaleID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	sale.Items = items
	return c.JSON(dto.FromSale(sale))
}
