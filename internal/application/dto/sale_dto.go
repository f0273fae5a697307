// Package dto define los contratos de entrada/salida de la capa HTTP.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/laocorp/pos-facturacion/internal/domain/entity"
)

// CreateSaleItemRequest línea solicitada en una venta.
type CreateSaleItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateSaleRequest payload de creación de venta.
type CreateSaleRequest struct {
	CompanyID     string                  `json:"company_id"`
	CustomerID    string                  `json:"customer_id,omitempty"` // vacío = consumidor final
	PaymentMethod string                  `json:"payment_method"`        // código Tabla 24 SRI
	Discount      decimal.Decimal         `json:"discount"`
	Items         []CreateSaleItemRequest `json:"items"`
}

// SaleItemResponse línea de venta en respuestas.
type SaleItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse representación de una venta.
type SaleResponse struct {
	ID            string             `json:"id"`
	CompanyID     string             `json:"company_id"`
	CustomerID    string             `json:"customer_id,omitempty"`
	Secuencial    string             `json:"secuencial"`
	Sequential    bool               `json:"sequential"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	InvoiceID     string             `json:"invoice_id,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	Items         []SaleItemResponse `json:"items,omitempty"`
}

// FromSale convierte la entidad al contrato de respuesta.
func FromSale(s *entity.Sale) SaleResponse {
	resp := SaleResponse{
		ID:            s.ID,
		CompanyID:     s.CompanyID,
		CustomerID:    s.CustomerID,
		Secuencial:    s.Secuencial,
		Sequential:    s.Sequential,
		Subtotal:      s.Subtotal,
		Tax:           s.Tax,
		Discount:      s.Discount,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
		InvoiceID:     s.InvoiceID,
		CreatedAt:     s.CreatedAt,
	}
	for _, it := range s.Items {
		resp.Items = append(resp.Items, SaleItemResponse{
			ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity,
			UnitPrice: it.UnitPrice, Subtotal: it.Subtotal,
		})
	}
	return resp
}
