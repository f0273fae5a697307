package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laocorp/pos-facturacion/internal/application/dto"
	"github.com/laocorp/pos-facturacion/internal/domain"
	"github.com/laocorp/pos-facturacion/internal/domain/entity"
	"github.com/laocorp/pos-facturacion/internal/domain/repository"
	"github.com/laocorp/pos-facturacion/pkg/logger"
	srivals "github.com/laocorp/pos-facturacion/pkg/sri"
)

// CreateSaleUseCase registra una venta completa en una sola transacción:
// secuencial, decremento de stock por línea, totales, cabecera, líneas y
// asiento de caja. Todo o nada; una línea sin stock revierte la venta entera.
type CreateSaleUseCase struct {
	txRunner    TxRunner
	companyRepo repository.CompanyRepository
	log         *logger.Logger
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(txRunner TxRunner, companyRepo repository.CompanyRepository, log *logger.Logger) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:    txRunner,
		companyRepo: companyRepo,
		log:         log.Component("create_sale"),
	}
}

// Execute valida el request y persiste la venta. Devuelve la venta con sus
// líneas tal como quedó escrita.
func (uc *CreateSaleUseCase) Execute(ctx context.Context, req *dto.CreateSaleRequest) (*entity.Sale, error) {
	if err := uc.validate(req); err != nil {
		return nil, err
	}

	company, err := uc.companyRepo.GetByID(ctx, req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("empresa %s: %w", req.CompanyID, err)
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:            uuid.NewString(),
		CompanyID:     req.CompanyID,
		CustomerID:    req.CustomerID,
		Discount:      req.Discount,
		PaymentMethod: req.PaymentMethod,
		Status:        entity.SaleStatusCompleted,
		CreatedAt:     now,
	}

	err = uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
		counterRepo repository.SequentialCounterRepository,
		cashRepo repository.CashRegisterRepository,
	) error {
		// 1. Secuencial fiscal. Sin contador configurado la venta igual se
		// registra, con número sintético no facturable, para no perder la
		// operación de mostrador.
		secuencial, sequential, err := uc.allocateSecuencial(ctx, counterRepo, company, now)
		if err != nil {
			return err
		}
		sale.Secuencial, sale.Sequential = secuencial, sequential

		// 2. Líneas: bloquear producto, verificar stock, decrementar.
		subtotal, tax := decimal.Zero, decimal.Zero
		for _, item := range req.Items {
			product, err := productRepo.GetForUpdate(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("producto %s: %w", item.ProductID, err)
			}
			if product.Stock.LessThan(item.Quantity) {
				return fmt.Errorf("%w: %s (disponible %s, pedido %s)",
					domain.ErrInsufficientStock, product.Name,
					product.Stock.String(), item.Quantity.String())
			}
			if err := productRepo.UpdateStock(ctx, product.ID, product.Stock.Sub(item.Quantity)); err != nil {
				return err
			}

			lineSubtotal := product.Price.Mul(item.Quantity).Round(2)
			subtotal = subtotal.Add(lineSubtotal)
			tax = tax.Add(lineSubtotal.Mul(product.TaxRate).Round(2))

			sale.Items = append(sale.Items, &entity.SaleItem{
				ID:        uuid.NewString(),
				SaleID:    sale.ID,
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
				Subtotal:  lineSubtotal,
			})
		}

		sale.Subtotal = subtotal
		sale.Tax = tax
		sale.Total = subtotal.Add(tax).Sub(sale.Discount)

		// 3. Persistir cabecera y líneas.
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		for _, it := range sale.Items {
			if err := saleRepo.CreateItem(ctx, it); err != nil {
				return err
			}
		}

		// 4. Asiento de caja, solo si hay caja abierta. Sin caja no es error.
		register, err := cashRepo.GetOpenByCompany(ctx, req.CompanyID)
		if err != nil {
			return err
		}
		if register == nil {
			uc.log.Debug().Str("sale_id", sale.ID).Msg("sin caja abierta, venta sin asiento")
			return nil
		}
		return cashRepo.CreateMovement(ctx, &entity.CashMovement{
			ID:             uuid.NewString(),
			CashRegisterID: register.ID,
			Type:           entity.CashMovementIncome,
			Amount:         sale.Total,
			Description:    "Venta " + sale.Secuencial,
			SaleID:         sale.ID,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("secuencial", sale.Secuencial).
		Str("total", sale.Total.StringFixed(2)).
		Msg("venta registrada")
	return sale, nil
}

func (uc *CreateSaleUseCase) validate(req *dto.CreateSaleRequest) error {
	if req == nil || req.CompanyID == "" {
		return fmt.Errorf("%w: company_id es obligatorio", domain.ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: la venta necesita al menos una línea", domain.ErrInvalidInput)
	}
	for _, it := range req.Items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: línea sin product_id", domain.ErrInvalidInput)
		}
		if !it.Quantity.IsPositive() {
			return fmt.Errorf("%w: cantidad inválida para %s", domain.ErrInvalidInput, it.ProductID)
		}
	}
	if req.Discount.IsNegative() {
		return fmt.Errorf("%w: descuento negativo", domain.ErrInvalidInput)
	}
	if !srivals.ValidPaymentMethodCodes[req.PaymentMethod] {
		return fmt.Errorf("%w: forma de pago %q fuera de la tabla SRI", domain.ErrInvalidInput, req.PaymentMethod)
	}
	return nil
}

// allocateSecuencial asigna el siguiente número del contador de la empresa.
// Sin contador configurado cae a un número sintético con prefijo "T": la
// venta queda registrada pero marcada como no facturable.
func (uc *CreateSaleUseCase) allocateSecuencial(
	ctx context.Context,
	counterRepo repository.SequentialCounterRepository,
	company *entity.Company,
	now time.Time,
) (string, bool, error) {
	next, err := counterRepo.Allocate(ctx, company.ID, srivals.DocFactura, company.Estab, company.PtoEmi)
	if err == nil {
		return fmt.Sprintf("%09d", next), true, nil
	}
	if !errors.Is(err, domain.ErrNoSequential) {
		return "", false, err
	}
	synthetic := fmt.Sprintf("T%d", now.UnixNano())
	uc.log.Warn().
		Str("company_id", company.ID).
		Str("secuencial", synthetic).
		Msg("empresa sin contador de secuenciales, la venta no podrá facturarse")
	return synthetic, false, nil
}
