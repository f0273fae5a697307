package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/laocorp/pos-facturacion/internal/domain"
	"github.com/laocorp/pos-facturacion/internal/domain/entity"
	"github.com/laocorp/pos-facturacion/internal/domain/repository"
)

var _ repository.ElectronicInvoiceRepository = (*ElectronicInvoiceRepo)(nil)

// ElectronicInvoiceRepo registros de emisión sobre PostgreSQL. Solo inserta y
// consulta: los registros son inmutables.
type ElectronicInvoiceRepo struct {
	q Querier
}

// NewElectronicInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewElectronicInvoiceRepository(q Querier) *ElectronicInvoiceRepo {
	return &ElectronicInvoiceRepo{q: q}
}

const invoiceColumns = `id, company_id, sale_id, cod_doc, secuencial, clave_acceso, COALESCE(numero_autorizacion, ''), fecha_autorizacion, estado, buyer_name, buyer_tax_id, subtotal, tax, total, xml_firmado, ambiente, COALESCE(mensajes, ''), created_at`

// Create inserta el registro del intento de emisión. La clave de acceso tiene
// constraint único: una clave repetida es un bug del pipeline, no un caso de uso.
func (r *ElectronicInvoiceRepo) Create(ctx context.Context, inv *entity.ElectronicInvoice) error {
	query := `
		INSERT INTO electronic_invoices (id, company_id, sale_id, cod_doc, secuencial, clave_acceso, numero_autorizacion, fecha_autorizacion, estado, buyer_name, buyer_tax_id, subtotal, tax, total, xml_firmado, ambiente, mensajes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.CompanyID, inv.SaleID, inv.CodDoc, inv.Secuencial, inv.ClaveAcceso,
		nullIfEmpty(inv.NumeroAutorizacion), inv.FechaAutorizacion, inv.Estado,
		inv.BuyerName, inv.BuyerTaxID, inv.Subtotal, inv.Tax, inv.Total,
		inv.XMLFirmado, inv.Ambiente, nullIfEmpty(inv.Mensajes), inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert electronic invoice: %w", err)
	}
	return nil
}

// GetByID obtiene un registro por ID.
func (r *ElectronicInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.ElectronicInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM electronic_invoices WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByClaveAcceso obtiene un registro por su clave de acceso (única).
func (r *ElectronicInvoiceRepo) GetByClaveAcceso(ctx context.Context, clave string) (*entity.ElectronicInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM electronic_invoices WHERE clave_acceso = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, clave))
}

// ListBySaleID devuelve los intentos de la venta, del más reciente al más antiguo.
func (r *ElectronicInvoiceRepo) ListBySaleID(ctx context.Context, saleID string) ([]*entity.ElectronicInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM electronic_invoices WHERE sale_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list electronic invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.ElectronicInvoice
	for rows.Next() {
		var inv entity.ElectronicInvoice
		if err := rows.Scan(
			&inv.ID, &inv.CompanyID, &inv.SaleID, &inv.CodDoc, &inv.Secuencial, &inv.ClaveAcceso,
			&inv.NumeroAutorizacion, &inv.FechaAutorizacion, &inv.Estado,
			&inv.BuyerName, &inv.BuyerTaxID, &inv.Subtotal, &inv.Tax, &inv.Total,
			&inv.XMLFirmado, &inv.Ambiente, &inv.Mensajes, &inv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan electronic invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

func (r *ElectronicInvoiceRepo) scanOne(row pgx.Row) (*entity.ElectronicInvoice, error) {
	var inv entity.ElectronicInvoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.SaleID, &inv.CodDoc, &inv.Secuencial, &inv.ClaveAcceso,
		&inv.NumeroAutorizacion, &inv.FechaAutorizacion, &inv.Estado,
		&inv.BuyerName, &inv.BuyerTaxID, &inv.Subtotal, &inv.Tax, &inv.Total,
		&inv.XMLFirmado, &inv.Ambiente, &inv.Mensajes, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get electronic invoice: %w", err)
	}
	return &inv, nil
}
