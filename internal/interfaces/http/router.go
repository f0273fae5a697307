// Package http expone la API REST del punto de venta y facturación.
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/laocorp/pos-facturacion/internal/application/billing"
	"github.com/laocorp/pos-facturacion/internal/application/sales"
	"github.com/laocorp/pos-facturacion/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateSale   *sales.CreateSaleUseCase
	IssueInvoice *billing.IssueInvoiceUseCase
	SaleRepo     repository.SaleRepository
	InvoiceRepo  repository.ElectronicInvoiceRepository
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1")

	// Ventas
	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.CreateSale, deps.IssueInvoice, deps.SaleRepo)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)

	// Emisión y consulta de comprobantes
	invoiceHandler := NewInvoiceHandler(deps.IssueInvoice, deps.InvoiceRepo)
	salesGroup.Post("/:id/issue", invoiceHandler.Issue)
	salesGroup.Post("/:id/reissue", invoiceHandler.Reissue)
	salesGroup.Get("/:id/invoices", invoiceHandler.ListBySale)

	invoices := api.Group("/invoices")
	invoices.Get("/clave/:clave", invoiceHandler.GetByClaveAcceso)
}
