package sri_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laocorp/pos-facturacion/internal/domain/entity"
	"github.com/laocorp/pos-facturacion/internal/infrastructure/sri"
)

func facturaContext() sri.FacturaContext {
	return sri.FacturaContext{
		Company: &entity.Company{
			RUC:                  "1790012344001",
			RazonSocial:          "COMERCIAL LA ESQUINA S.A.",
			NombreComercial:      "La Esquina",
			DirMatriz:            "Av. Amazonas N34-12, Quito",
			Estab:                "001",
			PtoEmi:               "002",
			ObligadoContabilidad: true,
		},
		ClaveAcceso:  "2911202401179001234400110010020000001233210000013",
		Ambiente:     "1",
		Secuencial:   "000000123",
		FechaEmision: time.Date(2024, 11, 29, 14, 0, 0, 0, time.UTC),

		BuyerName:     "CONSUMIDOR FINAL",
		BuyerTaxID:    "9999999999999",
		PaymentMethod: "01",
		Subtotal:      decimal.RequireFromString("20.00"),
		Discount:      decimal.Zero,
		Tax:           decimal.RequireFromString("3.00"),
		Total:         decimal.RequireFromString("23.00"),
		Lines: []sri.FacturaLine{
			{
				CodigoPrincipal: "PROD-001",
				Descripcion:     "Gaseosa 500ml",
				Cantidad:        decimal.RequireFromString("4"),
				PrecioUnitario:  decimal.RequireFromString("5.00"),
				Descuento:       decimal.Zero,
				Subtotal:        decimal.RequireFromString("20.00"),
				TarifaIVA:       decimal.RequireFromString("15"),
			},
		},
	}
}

func parseFactura(t *testing.T, xml []byte) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xml))
	return doc
}

func textOf(t *testing.T, doc *etree.Document, path string) string {
	t.Helper()
	el := doc.FindElement(path)
	require.NotNil(t, el, "falta el elemento %s", path)
	return el.Text()
}

func TestFacturaBuilder_EstructuraBasica(t *testing.T) {
	out, err := sri.NewFacturaBuilder().Build(facturaContext())
	require.NoError(t, err)

	doc := parseFactura(t, out)
	root := doc.Root()
	require.NotNil(t, root)

	assert.Equal(t, "factura", root.Tag)
	assert.Equal(t, "comprobante", root.SelectAttrValue("id", ""), "la firma referencia #comprobante")
	assert.Equal(t, "1.1.0", root.SelectAttrValue("version", ""))

	assert.Equal(t, "1790012344001", textOf(t, doc, "//infoTributaria/ruc"))
	assert.Equal(t, "01", textOf(t, doc, "//infoTributaria/codDoc"))
	assert.Equal(t, "000000123", textOf(t, doc, "//infoTributaria/secuencial"))
	assert.Equal(t, "29/11/2024", textOf(t, doc, "//infoFactura/fechaEmision"))
	assert.Equal(t, "SI", textOf(t, doc, "//infoFactura/obligadoContabilidad"))
	assert.Equal(t, "07", textOf(t, doc, "//infoFactura/tipoIdentificacionComprador"),
		"consumidor final usa el código 07")
	assert.Equal(t, "23.00", textOf(t, doc, "//infoFactura/importeTotal"))
	assert.Equal(t, "01", textOf(t, doc, "//pagos/pago/formaPago"))
}

func TestFacturaBuilder_ImpuestosPorTarifa(t *testing.T) {
	ctx := facturaContext()
	ctx.Lines = append(ctx.Lines, sri.FacturaLine{
		CodigoPrincipal: "PROD-002",
		Descripcion:     "Pan integral",
		Cantidad:        decimal.RequireFromString("2"),
		PrecioUnitario:  decimal.RequireFromString("1.50"),
		Descuento:       decimal.Zero,
		Subtotal:        decimal.RequireFromString("3.00"),
		TarifaIVA:       decimal.Zero,
	})
	ctx.Subtotal = decimal.RequireFromString("23.00")
	ctx.Total = decimal.RequireFromString("26.00")

	out, err := sri.NewFacturaBuilder().Build(ctx)
	require.NoError(t, err)
	doc := parseFactura(t, out)

	totales := doc.FindElements("//totalConImpuestos/totalImpuesto")
	require.Len(t, totales, 2, "una agrupación por cada tarifa presente")

	// Tarifa 15% primero (orden de aparición en las líneas).
	assert.Equal(t, "4", totales[0].FindElement("codigoPorcentaje").Text())
	assert.Equal(t, "20.00", totales[0].FindElement("baseImponible").Text())
	assert.Equal(t, "3.00", totales[0].FindElement("valor").Text())

	assert.Equal(t, "0", totales[1].FindElement("codigoPorcentaje").Text())
	assert.Equal(t, "3.00", totales[1].FindElement("baseImponible").Text())
	assert.Equal(t, "0.00", totales[1].FindElement("valor").Text())

	detalles := doc.FindElements("//detalles/detalle")
	require.Len(t, detalles, 2)
	assert.Equal(t, "15.00", detalles[0].FindElement("impuestos/impuesto/tarifa").Text())
}

func TestFacturaBuilder_CompradorIdentificado(t *testing.T) {
	ctx := facturaContext()
	ctx.BuyerName = "MARIA GOMEZ"
	ctx.BuyerTaxID = "1710392422"
	ctx.BuyerAddress = "Calle Larga 123"
	ctx.BuyerEmail = "maria@example.com"

	out, err := sri.NewFacturaBuilder().Build(ctx)
	require.NoError(t, err)
	doc := parseFactura(t, out)

	assert.Equal(t, "05", textOf(t, doc, "//infoFactura/tipoIdentificacionComprador"), "cédula de 10 dígitos")
	assert.Equal(t, "MARIA GOMEZ", textOf(t, doc, "//infoFactura/razonSocialComprador"))
	assert.Equal(t, "Calle Larga 123", textOf(t, doc, "//infoFactura/direccionComprador"))

	campos := doc.FindElements("//infoAdicional/campoAdicional")
	require.Len(t, campos, 2)
	assert.Equal(t, "email", campos[0].SelectAttrValue("nombre", ""))
	assert.Equal(t, "maria@example.com", campos[0].Text())
}

func TestFacturaBuilder_Validaciones(t *testing.T) {
	ctx := facturaContext()
	ctx.Lines = nil
	_, err := sri.NewFacturaBuilder().Build(ctx)
	assert.Error(t, err, "una factura sin detalle no se puede emitir")

	ctx = facturaContext()
	ctx.Lines[0].TarifaIVA = decimal.RequireFromString("7")
	_, err = sri.NewFacturaBuilder().Build(ctx)
	assert.Error(t, err, "tarifa sin código en la tabla de IVA")
}

func TestFacturaBuilder_FirmableDeExtremoAExtremo(t *testing.T) {
	out, err := sri.NewFacturaBuilder().Build(facturaContext())
	require.NoError(t, err)

	mat := generateMaterial(t, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	signed, err := sri.NewXAdESSigner().Sign(out, mat, time.Now())
	require.NoError(t, err)

	// El documento firmado sigue siendo XML bien formado con la firma como
	// último hijo del raíz.
	doc := parseFactura(t, signed)
	root := doc.Root()
	require.NotNil(t, root)
	children := root.ChildElements()
	require.NotEmpty(t, children)
	assert.Equal(t, "Signature", children[len(children)-1].Tag)
}
