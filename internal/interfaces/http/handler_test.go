package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laocorp/pos-facturacion/internal/application/dto"
	"github.com/laocorp/pos-facturacion/internal/domain"
	"github.com/laocorp/pos-facturacion/internal/domain/entity"
)

type stubSaleRepo struct {
	sale  *entity.Sale
	items []*entity.SaleItem
}

func (s *stubSaleRepo) Create(context.Context, *entity.Sale) error         { return nil }
func (s *stubSaleRepo) CreateItem(context.Context, *entity.SaleItem) error { return nil }
func (s *stubSaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	if s.sale != nil && s.sale.ID == id {
		return s.sale, nil
	}
	return nil, domain.ErrNotFound
}
func (s *stubSaleRepo) GetItemsBySaleID(context.Context, string) ([]*entity.SaleItem, error) {
	return s.items, nil
}
func (s *stubSaleRepo) AttachInvoice(context.Context, string, string) error { return nil }

type stubInvoiceRepo struct {
	records []*entity.ElectronicInvoice
}

func (s *stubInvoiceRepo) Create(context.Context, *entity.ElectronicInvoice) error { return nil }
func (s *stubInvoiceRepo) GetByID(context.Context, string) (*entity.ElectronicInvoice, error) {
	return nil, domain.ErrNotFound
}
func (s *stubInvoiceRepo) GetByClaveAcceso(_ context.Context, clave string) (*entity.ElectronicInvoice, error) {
	for _, r := range s.records {
		if r.ClaveAcceso == clave {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (s *stubInvoiceRepo) ListBySaleID(_ context.Context, saleID string) ([]*entity.ElectronicInvoice, error) {
	var out []*entity.ElectronicInvoice
	for _, r := range s.records {
		if r.SaleID == saleID {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestApp(saleRepo *stubSaleRepo, invoiceRepo *stubInvoiceRepo) *fiber.App {
	app := fiber.New()
	Router(app, RouterDeps{
		SaleRepo:    saleRepo,
		InvoiceRepo: invoiceRepo,
	})
	return app
}

func TestGetSale_ConLineas(t *testing.T) {
	saleRepo := &stubSaleRepo{
		sale: &entity.Sale{
			ID: "venta-1", CompanyID: "emp-1", Secuencial: "000000123", Sequential: true,
			Total: decimal.RequireFromString("23.00"), Status: entity.SaleStatusCompleted,
			CreatedAt: time.Now(),
		},
		items: []*entity.SaleItem{{ID: "item-1", SaleID: "venta-1", ProductID: "prod-1",
			Quantity: decimal.RequireFromString("2")}},
	}
	app := newTestApp(saleRepo, &stubInvoiceRepo{})

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/sales/venta-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	var out dto.SaleResponse
	body, _ := io.ReadAll(res.Body)
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "000000123", out.Secuencial)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "prod-1", out.Items[0].ProductID)
}

func TestGetSale_NoExiste(t *testing.T) {
	app := newTestApp(&stubSaleRepo{}, &stubInvoiceRepo{})

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/sales/nada", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)

	var out dto.ErrorResponse
	body, _ := io.ReadAll(res.Body)
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "NOT_FOUND", out.Code)
}

func TestListInvoicesBySale(t *testing.T) {
	invoiceRepo := &stubInvoiceRepo{records: []*entity.ElectronicInvoice{
		{ID: "int-2", SaleID: "venta-1", Estado: entity.EstadoAutorizada,
			ClaveAcceso: "2911202401179001234400110010020000001243210000011",
			Mensajes:    `[{"identificador":"60","mensaje":"ok"}]`},
		{ID: "int-1", SaleID: "venta-1", Estado: entity.EstadoErrorEnvio,
			ClaveAcceso: "2911202401179001234400110010020000001233210000013"},
	}}
	app := newTestApp(&stubSaleRepo{}, invoiceRepo)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/sales/venta-1/invoices", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	var out []dto.InvoiceResponse
	body, _ := io.ReadAll(res.Body)
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out, 2)
	assert.Equal(t, entity.EstadoAutorizada, out[0].Estado)
	require.Len(t, out[0].Mensajes, 1, "los mensajes JSON del registro se expanden en el DTO")
	assert.Equal(t, "60", out[0].Mensajes[0].Identificador)
}

func TestGetInvoiceByClaveAcceso(t *testing.T) {
	const clave = "2911202401179001234400110010020000001233210000013"
	invoiceRepo := &stubInvoiceRepo{records: []*entity.ElectronicInvoice{
		{ID: "int-1", SaleID: "venta-1", ClaveAcceso: clave, Estado: entity.EstadoAutorizada},
	}}
	app := newTestApp(&stubSaleRepo{}, invoiceRepo)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/invoices/clave/"+clave, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest("GET", "/api/v1/invoices/clave/0000", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}
