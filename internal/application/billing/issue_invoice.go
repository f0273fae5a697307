package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laocorp/pos-facturacion/internal/domain"
	"github.com/laocorp/pos-facturacion/internal/domain/entity"
	"github.com/laocorp/pos-facturacion/internal/domain/repository"
	domainsri "github.com/laocorp/pos-facturacion/internal/domain/sri"
	infrasri "github.com/laocorp/pos-facturacion/internal/infrastructure/sri"
	"github.com/laocorp/pos-facturacion/pkg/config"
	"github.com/laocorp/pos-facturacion/pkg/logger"
	srivals "github.com/laocorp/pos-facturacion/pkg/sri"
)

// processTimeout techo para el ciclo completo de emisión en ProcessAsync.
const processTimeout = 60 * time.Second

// IssueInvoiceUseCase orquesta el ciclo de emisión:
//
//	venta → clave de acceso → XML → firma XAdES-BES → recepción → autorización
//
// Cada intento produce exactamente un registro ElectronicInvoice con estado
// terminal; un fallo local o de red queda como ERROR_ENVIO (re-emitible), un
// veredicto de la autoridad queda como AUTORIZADA, DEVUELTA, NO_AUTORIZADA o
// RECHAZADA (definitivos).
//
// Modos (SRIConfig.AppEnv):
//   - "dev"        → genera y firma, NO envía al WS. El registro queda FIRMADA.
//   - "test"/"prod" → envío real al ambiente configurado.
type IssueInvoiceUseCase struct {
	saleRepo     repository.SaleRepository
	companyRepo  repository.CompanyRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	invoiceRepo  repository.ElectronicInvoiceRepository
	counterTx    CounterTxRunner

	claveSvc   *domainsri.ClaveAccesoService
	xmlBuilder XMLBuilder
	signer     Signer
	submitter  Submitter
	certSource CertificateSource

	cfg config.SRIConfig
	log *logger.Logger
}

// NewIssueInvoiceUseCase construye el caso de uso con todas sus dependencias.
func NewIssueInvoiceUseCase(
	saleRepo repository.SaleRepository,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.ElectronicInvoiceRepository,
	counterTx CounterTxRunner,
	claveSvc *domainsri.ClaveAccesoService,
	xmlBuilder XMLBuilder,
	signer Signer,
	submitter Submitter,
	certSource CertificateSource,
	cfg config.SRIConfig,
	log *logger.Logger,
) *IssueInvoiceUseCase {
	return &IssueInvoiceUseCase{
		saleRepo:     saleRepo,
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		invoiceRepo:  invoiceRepo,
		counterTx:    counterTx,
		claveSvc:     claveSvc,
		xmlBuilder:   xmlBuilder,
		signer:       signer,
		submitter:    submitter,
		certSource:   certSource,
		cfg:          cfg,
		log:          log.Component("issue_invoice"),
	}
}

// ProcessAsync dispara la emisión en una goroutine independiente, con su
// propio context desacoplado del ciclo HTTP.
func (uc *IssueInvoiceUseCase) ProcessAsync(saleID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		if _, err := uc.Issue(ctx, saleID); err != nil {
			uc.log.Error().Err(err).Str("sale_id", saleID).Msg("emisión asíncrona falló")
		}
	}()
}

// Issue emite el comprobante de la venta con su secuencial original. Solo
// procede si la venta no tiene intentos previos: la clave de acceso es
// determinista y un segundo envío reutilizaría una clave que la autoridad ya
// conoce. Con intentos previos la única vía es Reissue, que quema un
// secuencial nuevo. Retorna error si la emisión no pudo ni arrancar (venta
// inexistente, anulada, sin secuencial fiscal o ya intentada); cualquier fallo
// dentro del pipeline queda registrado en el ElectronicInvoice retornado.
func (uc *IssueInvoiceUseCase) Issue(ctx context.Context, saleID string) (*entity.ElectronicInvoice, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("venta %s: %w", saleID, err)
	}

	attempts, err := uc.invoiceRepo.ListBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if len(attempts) > 0 {
		if last := attempts[0]; !last.Retryable() {
			return nil, fmt.Errorf("%w: último intento en estado %s", domain.ErrNotRetryable, last.Estado)
		}
		return nil, fmt.Errorf("%w: la venta %s ya tiene un intento de emisión; use la re-emisión", domain.ErrConflict, saleID)
	}

	return uc.issue(ctx, sale, sale.Secuencial)
}

// Reissue repite la emisión de una venta cuyo último intento terminó en
// ERROR_ENVIO, con secuencial y clave de acceso nuevos. Un intento con
// veredicto de la autoridad (cualquiera) no es re-emitible.
func (uc *IssueInvoiceUseCase) Reissue(ctx context.Context, saleID string) (*entity.ElectronicInvoice, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("venta %s: %w", saleID, err)
	}

	attempts, err := uc.invoiceRepo.ListBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, fmt.Errorf("%w: la venta %s no tiene intentos de emisión", domain.ErrConflict, saleID)
	}
	if last := attempts[0]; !last.Retryable() {
		return nil, fmt.Errorf("%w: último intento en estado %s", domain.ErrNotRetryable, last.Estado)
	}

	company, err := uc.companyRepo.GetByID(ctx, sale.CompanyID)
	if err != nil {
		return nil, err
	}

	// Secuencial fresco en su propia transacción: el número del intento
	// fallido queda quemado y auditado en su registro.
	var secuencial string
	err = uc.counterTx.RunCounter(ctx, func(counterRepo repository.SequentialCounterRepository) error {
		next, aerr := counterRepo.Allocate(ctx, company.ID, srivals.DocFactura, company.Estab, company.PtoEmi)
		if aerr != nil {
			return aerr
		}
		secuencial = fmt.Sprintf("%09d", next)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("asignar secuencial de re-emisión: %w", err)
	}

	return uc.issue(ctx, sale, secuencial)
}

// issue es el núcleo del pipeline. Crea exactamente un registro de intento y
// lo persiste una sola vez, ya con estado terminal (o FIRMADA en modo dev).
func (uc *IssueInvoiceUseCase) issue(ctx context.Context, sale *entity.Sale, secuencial string) (*entity.ElectronicInvoice, error) {
	if sale.Status != entity.SaleStatusCompleted {
		return nil, fmt.Errorf("%w: la venta está %s", domain.ErrConflict, sale.Status)
	}
	if !sale.Sequential {
		return nil, fmt.Errorf("%w: la venta tiene número sintético %s", domain.ErrNoSequential, sale.Secuencial)
	}

	company, err := uc.companyRepo.GetByID(ctx, sale.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("empresa %s: %w", sale.CompanyID, err)
	}

	buyerName, buyerTaxID, buyerAddress, buyerEmail, err := uc.buyerSnapshot(ctx, sale)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &entity.ElectronicInvoice{
		ID:         uuid.NewString(),
		CompanyID:  sale.CompanyID,
		SaleID:     sale.ID,
		CodDoc:     srivals.DocFactura,
		Secuencial: secuencial,
		Estado:     entity.EstadoGenerada,
		BuyerName:  buyerName,
		BuyerTaxID: buyerTaxID,
		Subtotal:   sale.Subtotal,
		Tax:        sale.Tax,
		Total:      sale.Total,
		Ambiente:   uc.cfg.Ambiente,
		CreatedAt:  now,
	}

	// markError registra el fallo local o de transporte como ERROR_ENVIO y
	// persiste el intento: el operador puede re-emitir.
	markError := func(step string, cause error) *entity.ElectronicInvoice {
		record.Estado = entity.EstadoErrorEnvio
		record.Mensajes = localMensajes(step, cause)
		uc.log.Error().Err(cause).
			Str("sale_id", sale.ID).
			Str("step", step).
			Msg("emisión interrumpida")
		uc.finalize(ctx, sale, record)
		return record
	}

	// 1. Clave de acceso determinista de 49 dígitos.
	clave, err := uc.claveSvc.Generate(&domainsri.ClaveParams{
		FechaEmision: now,
		CodDoc:       srivals.DocFactura,
		RUC:          company.RUC,
		Ambiente:     uc.cfg.Ambiente,
		Estab:        company.Estab,
		PtoEmi:       company.PtoEmi,
		Secuencial:   secuencial,
		TipoEmision:  srivals.EmisionNormal,
	})
	if err != nil {
		return markError("clave-acceso", err), nil
	}
	record.ClaveAcceso = clave

	// 2. XML de factura.
	lines, err := uc.facturaLines(ctx, sale)
	if err != nil {
		return markError("detalle", err), nil
	}
	xmlBytes, err := uc.xmlBuilder.Build(infrasri.FacturaContext{
		Company:       company,
		ClaveAcceso:   clave,
		Ambiente:      uc.cfg.Ambiente,
		Secuencial:    secuencial,
		FechaEmision:  now,
		BuyerName:     buyerName,
		BuyerTaxID:    buyerTaxID,
		BuyerAddress:  buyerAddress,
		BuyerEmail:    buyerEmail,
		PaymentMethod: sale.PaymentMethod,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Tax:           sale.Tax,
		Total:         sale.Total,
		Lines:         lines,
	})
	if err != nil {
		return markError("xml-build", err), nil
	}

	// 3. Certificado: cargar y validar vigencia ANTES de firmar o enviar.
	mat, err := uc.certSource.Material(ctx, company)
	if err != nil {
		return markError("certificado", err), nil
	}
	if !mat.Vigente(now) {
		return markError("cert-vigencia", fmt.Errorf("%w: expiró el %s",
			domain.ErrCertExpired, mat.NotAfter.Format("2006-01-02"))), nil
	}

	// 4. Firma XAdES-BES.
	signed, err := uc.signer.Sign(xmlBytes, mat, now)
	if err != nil {
		return markError("firma", err), nil
	}
	record.XMLFirmado = string(signed)
	record.Estado = entity.EstadoFirmada

	// 5. Modo dev: firmado pero sin envío.
	if uc.cfg.AppEnv == "dev" || uc.submitter == nil {
		uc.log.Info().
			Str("sale_id", sale.ID).
			Str("clave_acceso", clave).
			Msg("modo dev: comprobante firmado, sin envío al SRI")
		uc.finalize(ctx, sale, record)
		return record, nil
	}

	// 6. Recepción.
	recepcion, err := uc.submitter.EnviarComprobante(ctx, signed)
	if err != nil {
		return markError("recepcion", err), nil
	}
	if !recepcion.Recibida() {
		record.Estado = entity.EstadoDevuelta
		record.Mensajes = marshalMensajes(recepcion.Mensajes)
		uc.log.Warn().
			Str("sale_id", sale.ID).
			Str("clave_acceso", clave).
			Msg("comprobante devuelto en recepción")
		uc.finalize(ctx, sale, record)
		return record, nil
	}
	record.Estado = entity.EstadoRecibida

	// 7. Espera fija y una consulta de autorización.
	if err := uc.wait(ctx); err != nil {
		return markError("espera-autorizacion", err), nil
	}
	autorizacion, err := uc.submitter.ConsultarAutorizacion(ctx, clave)
	if err != nil {
		return markError("autorizacion", err), nil
	}

	switch autorizacion.Estado {
	case infrasri.EstadoAutorizado:
		record.Estado = entity.EstadoAutorizada
		record.NumeroAutorizacion = autorizacion.NumeroAutorizacion
		record.FechaAutorizacion = autorizacion.FechaAutorizacion
	case infrasri.EstadoNoAutorizado:
		record.Estado = entity.EstadoNoAutorizada
	default:
		// Veredicto no reconocido (incluye EN PROCESO tras la espera): se
		// registra como RECHAZADA para que el operador lo revise; la clave
		// consultada queda en el registro.
		record.Estado = entity.EstadoRechazada
	}
	record.Mensajes = marshalMensajes(autorizacion.Mensajes)

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("clave_acceso", clave).
		Str("estado", record.Estado).
		Str("numero_autorizacion", record.NumeroAutorizacion).
		Msg("emisión terminada")
	uc.finalize(ctx, sale, record)
	return record, nil
}

// finalize persiste el registro del intento y adjunta su referencia a la
// venta. Errores de persistencia se loguean: el pipeline ya terminó y el
// resultado está en memoria del caller.
func (uc *IssueInvoiceUseCase) finalize(ctx context.Context, sale *entity.Sale, record *entity.ElectronicInvoice) {
	if err := uc.invoiceRepo.Create(ctx, record); err != nil {
		uc.log.Error().Err(err).Str("sale_id", sale.ID).Msg("no se pudo persistir el intento de emisión")
		return
	}
	if err := uc.saleRepo.AttachInvoice(ctx, sale.ID, record.ID); err != nil {
		uc.log.Error().Err(err).Str("sale_id", sale.ID).Msg("no se pudo adjuntar el comprobante a la venta")
	}
}

// wait espera el delay fijo antes de consultar la autorización.
func (uc *IssueInvoiceUseCase) wait(ctx context.Context) error {
	delay := time.Duration(uc.cfg.PollDelaySeconds) * time.Second
	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buyerSnapshot resuelve la foto del comprador: cliente identificado o
// consumidor final.
func (uc *IssueInvoiceUseCase) buyerSnapshot(ctx context.Context, sale *entity.Sale) (name, taxID, address, email string, err error) {
	if sale.CustomerID == "" {
		return srivals.ConsumidorFinalNombre, srivals.ConsumidorFinalID, "", "", nil
	}
	customer, err := uc.customerRepo.GetByID(ctx, sale.CustomerID)
	if err != nil {
		return "", "", "", "", fmt.Errorf("cliente %s: %w", sale.CustomerID, err)
	}
	return customer.Name, customer.TaxID, customer.Address, customer.Email, nil
}

// facturaLines arma el detalle con el snapshot de producto por línea.
func (uc *IssueInvoiceUseCase) facturaLines(ctx context.Context, sale *entity.Sale) ([]infrasri.FacturaLine, error) {
	items := sale.Items
	if len(items) == 0 {
		var err error
		items, err = uc.saleRepo.GetItemsBySaleID(ctx, sale.ID)
		if err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: venta %s sin líneas", domain.ErrConflict, sale.ID)
	}

	cien := decimal.NewFromInt(100)
	lines := make([]infrasri.FacturaLine, 0, len(items))
	for _, it := range items {
		product, err := uc.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("producto %s: %w", it.ProductID, err)
		}
		lines = append(lines, infrasri.FacturaLine{
			CodigoPrincipal: product.CodigoPrincipal,
			Descripcion:     product.Name,
			Cantidad:        it.Quantity,
			PrecioUnitario:  it.UnitPrice,
			Descuento:       decimal.Zero,
			Subtotal:        it.Subtotal,
			TarifaIVA:       product.TaxRate.Mul(cien),
		})
	}
	return lines, nil
}

// localMensajes serializa un fallo local con la misma forma que los mensajes
// de la autoridad, para que el registro sea homogéneo.
func localMensajes(step string, cause error) string {
	detalle := ""
	if cause != nil {
		detalle = cause.Error()
	}
	return marshalMensajes([]infrasri.Mensaje{{
		Identificador:        "LOCAL",
		Mensaje:              step,
		InformacionAdicional: detalle,
		Tipo:                 "ERROR",
	}})
}

func marshalMensajes(mensajes []infrasri.Mensaje) string {
	if len(mensajes) == 0 {
		return ""
	}
	b, err := json.Marshal(mensajes)
	if err != nil {
		return ""
	}
	return string(b)
}
