// Construcción del XML de factura (esquema factura v1.1.0 del SRI).

package sri

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/laocorp/pos-facturacion/internal/domain/entity"
	srivals "github.com/laocorp/pos-facturacion/pkg/sri"
)

// FacturaLine línea de detalle con el snapshot del producto al momento de la
// venta; la factura nunca vuelve a leer el catálogo.
type FacturaLine struct {
	CodigoPrincipal string
	Descripcion     string
	Cantidad        decimal.Decimal
	PrecioUnitario  decimal.Decimal
	Descuento       decimal.Decimal
	Subtotal        decimal.Decimal
	TarifaIVA       decimal.Decimal
}

// FacturaContext todo lo que el builder necesita para emitir el comprobante.
type FacturaContext struct {
	Company      *entity.Company
	ClaveAcceso  string
	Ambiente     string
	Secuencial   string
	FechaEmision time.Time

	BuyerName      string
	BuyerTaxID     string
	BuyerAddress   string
	BuyerEmail     string
	PaymentMethod  string
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	Lines          []FacturaLine
}

// FacturaBuilder serializa el contexto de venta al XML que se firma y envía.
type FacturaBuilder struct{}

// NewFacturaBuilder crea el builder.
func NewFacturaBuilder() *FacturaBuilder {
	return &FacturaBuilder{}
}

// Build genera el documento completo, con el raíz <factura id="comprobante">
// que la firma referencia por URI.
func (b *FacturaBuilder) Build(ctx FacturaContext) ([]byte, error) {
	if ctx.Company == nil {
		return nil, fmt.Errorf("sri: factura sin emisor")
	}
	if len(ctx.Lines) == 0 {
		return nil, fmt.Errorf("sri: factura sin líneas de detalle")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	factura := doc.CreateElement("factura")
	factura.CreateAttr("id", "comprobante")
	factura.CreateAttr("version", "1.1.0")

	b.buildInfoTributaria(factura, ctx)
	if err := b.buildInfoFactura(factura, ctx); err != nil {
		return nil, err
	}
	if err := b.buildDetalles(factura, ctx); err != nil {
		return nil, err
	}
	b.buildInfoAdicional(factura, ctx)

	return doc.WriteToBytes()
}

func (b *FacturaBuilder) buildInfoTributaria(parent *etree.Element, ctx FacturaContext) {
	it := parent.CreateElement("infoTributaria")
	addText(it, "ambiente", ctx.Ambiente)
	addText(it, "tipoEmision", srivals.EmisionNormal)
	addText(it, "razonSocial", ctx.Company.RazonSocial)
	if ctx.Company.NombreComercial != "" {
		addText(it, "nombreComercial", ctx.Company.NombreComercial)
	}
	addText(it, "ruc", ctx.Company.RUC)
	addText(it, "claveAcceso", ctx.ClaveAcceso)
	addText(it, "codDoc", srivals.DocFactura)
	addText(it, "estab", ctx.Company.Estab)
	addText(it, "ptoEmi", ctx.Company.PtoEmi)
	addText(it, "secuencial", ctx.Secuencial)
	addText(it, "dirMatriz", ctx.Company.DirMatriz)
}

func (b *FacturaBuilder) buildInfoFactura(parent *etree.Element, ctx FacturaContext) error {
	inf := parent.CreateElement("infoFactura")
	addText(inf, "fechaEmision", ctx.FechaEmision.Format("02/01/2006"))
	addText(inf, "dirEstablecimiento", ctx.Company.DirMatriz)
	if ctx.Company.ObligadoContabilidad {
		addText(inf, "obligadoContabilidad", "SI")
	} else {
		addText(inf, "obligadoContabilidad", "NO")
	}
	addText(inf, "tipoIdentificacionComprador", srivals.IdentificationTypeCodeFor(ctx.BuyerTaxID))
	addText(inf, "razonSocialComprador", ctx.BuyerName)
	addText(inf, "identificacionComprador", ctx.BuyerTaxID)
	if ctx.BuyerAddress != "" {
		addText(inf, "direccionComprador", ctx.BuyerAddress)
	}
	addText(inf, "totalSinImpuestos", ctx.Subtotal.StringFixed(2))
	addText(inf, "totalDescuento", ctx.Discount.StringFixed(2))

	// totalConImpuestos: un totalImpuesto por tarifa de IVA presente.
	tci := inf.CreateElement("totalConImpuestos")
	for _, g := range groupByTarifa(ctx.Lines) {
		code, err := codigoPorcentajeIVA(g.tarifa)
		if err != nil {
			return err
		}
		ti := tci.CreateElement("totalImpuesto")
		addText(ti, "codigo", srivals.ImpuestoIVA)
		addText(ti, "codigoPorcentaje", code)
		addText(ti, "baseImponible", g.base.StringFixed(2))
		addText(ti, "valor", g.valor.StringFixed(2))
	}

	addText(inf, "propina", "0.00")
	addText(inf, "importeTotal", ctx.Total.StringFixed(2))
	addText(inf, "moneda", "DOLAR")

	pagos := inf.CreateElement("pagos")
	pago := pagos.CreateElement("pago")
	addText(pago, "formaPago", ctx.PaymentMethod)
	addText(pago, "total", ctx.Total.StringFixed(2))
	return nil
}

func (b *FacturaBuilder) buildDetalles(parent *etree.Element, ctx FacturaContext) error {
	detalles := parent.CreateElement("detalles")
	for _, line := range ctx.Lines {
		det := detalles.CreateElement("detalle")
		addText(det, "codigoPrincipal", line.CodigoPrincipal)
		addText(det, "descripcion", line.Descripcion)
		addText(det, "cantidad", line.Cantidad.StringFixed(2))
		addText(det, "precioUnitario", line.PrecioUnitario.StringFixed(2))
		addText(det, "descuento", line.Descuento.StringFixed(2))
		addText(det, "precioTotalSinImpuesto", line.Subtotal.StringFixed(2))

		code, err := codigoPorcentajeIVA(line.TarifaIVA)
		if err != nil {
			return fmt.Errorf("detalle %s: %w", line.CodigoPrincipal, err)
		}
		imps := det.CreateElement("impuestos")
		imp := imps.CreateElement("impuesto")
		addText(imp, "codigo", srivals.ImpuestoIVA)
		addText(imp, "codigoPorcentaje", code)
		addText(imp, "tarifa", line.TarifaIVA.StringFixed(2))
		addText(imp, "baseImponible", line.Subtotal.StringFixed(2))
		valor := line.Subtotal.Mul(line.TarifaIVA).Div(decimal.NewFromInt(100)).Round(2)
		addText(imp, "valor", valor.StringFixed(2))
	}
	return nil
}

func (b *FacturaBuilder) buildInfoAdicional(parent *etree.Element, ctx FacturaContext) {
	if ctx.BuyerEmail == "" && ctx.BuyerAddress == "" {
		return
	}
	ia := parent.CreateElement("infoAdicional")
	if ctx.BuyerEmail != "" {
		campo := ia.CreateElement("campoAdicional")
		campo.CreateAttr("nombre", "email")
		campo.SetText(ctx.BuyerEmail)
	}
	if ctx.BuyerAddress != "" {
		campo := ia.CreateElement("campoAdicional")
		campo.CreateAttr("nombre", "direccion")
		campo.SetText(ctx.BuyerAddress)
	}
}

func addText(parent *etree.Element, tag, text string) {
	parent.CreateElement(tag).SetText(text)
}

type tarifaGroup struct {
	tarifa decimal.Decimal
	base   decimal.Decimal
	valor  decimal.Decimal
}

// groupByTarifa agrupa las líneas por tarifa de IVA preservando el orden de
// primera aparición.
func groupByTarifa(lines []FacturaLine) []tarifaGroup {
	var groups []tarifaGroup
	idx := make(map[string]int)
	for _, line := range lines {
		key := line.TarifaIVA.StringFixed(2)
		valor := line.Subtotal.Mul(line.TarifaIVA).Div(decimal.NewFromInt(100)).Round(2)
		if i, ok := idx[key]; ok {
			groups[i].base = groups[i].base.Add(line.Subtotal)
			groups[i].valor = groups[i].valor.Add(valor)
			continue
		}
		idx[key] = len(groups)
		groups = append(groups, tarifaGroup{tarifa: line.TarifaIVA, base: line.Subtotal, valor: valor})
	}
	return groups
}

// codigoPorcentajeIVA mapea la tarifa porcentual al código de la tabla de IVA
// del SRI.
func codigoPorcentajeIVA(tarifa decimal.Decimal) (string, error) {
	switch tarifa.IntPart() {
	case 0:
		return "0", nil
	case 12:
		return "2", nil
	case 14:
		return "3", nil
	case 15:
		return "4", nil
	case 5:
		return "5", nil
	case 13:
		return "10", nil
	case 8:
		return "8", nil
	}
	return "", fmt.Errorf("sri: tarifa de IVA sin código: %s", tarifa.String())
}
