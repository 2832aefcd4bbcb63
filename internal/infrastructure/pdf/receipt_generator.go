// Package pdf genera el comprobante de pago (A4) de un cargo confirmado.
//
// Layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Colegio + RUC        │  COMPROBANTE N° + Fecha pago │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ALUMNO: Apellidos, Nombres + DNI                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Concepto | Vencimiento | Monto | Mora | Total        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR (referencia|total|fecha|operación) + leyenda     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/colegio-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// School datos del emisor impresos en el encabezado.
type School struct {
	Name string
	RUC  string
}

// ReceiptGenerator implementa finance.ReceiptPDFGenerator usando Maroto v2.
type ReceiptGenerator struct {
	school School
	loc    *time.Location
}

// NewReceiptGenerator construye el generador. loc es la zona en la que se imprime la fecha de pago.
func NewReceiptGenerator(school School, loc *time.Location) *ReceiptGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &ReceiptGenerator{school: school, loc: loc}
}

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) GenerateReceiptPDF(_ context.Context, p *entity.Payment, st *entity.Student) ([]byte, error) {
	if p.PaidAt == nil {
		return nil, fmt.Errorf("pdf: el pago %s no tiene fecha de pago", p.ID)
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de pago", true).
		WithAuthor(g.school.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(studentRow(st))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(detailRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(p))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(g.footerRow(p))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *ReceiptGenerator) headerRow(p *entity.Payment) core.Row {
	paid := p.PaidAt.In(g.loc).Format("02/01/2006 15:04")
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.school.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RUC: "+nonEmpty(g.school.RUC, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE PAGO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(shortID(p.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Pagado: "+paid, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func studentRow(st *entity.Student) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("ALUMNO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(st.FullName(), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New("DNI: "+st.DNI, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Concepto", 5, align.Left),
		h("Vencimiento", 2, align.Center),
		h("Monto", 2, align.Right),
		h("Mora", 1, align.Right),
		h("Total", 2, align.Right),
	)
}

func detailRow(p *entity.Payment) core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	return row.New(7).Add(
		cell(p.Concept, 5, align.Left),
		cell(p.DueDate.Format("02/01/2006"), 2, align.Center),
		cell(formatMoney(p.Amount), 2, align.Right),
		cell(formatMoney(p.LateFee), 1, align.Right),
		cell(formatMoney(p.Total), 2, align.Right),
	)
}

func totalRow(p *entity.Payment) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL PAGADO:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("S/ "+formatMoney(p.Total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func (g *ReceiptGenerator) footerRow(p *entity.Payment) core.Row {
	return row.New(45).Add(
		col.New(4).Add(code.NewQr(QRPayload(p), props.Rect{Percent: 95, Center: true})),
		col.New(8).Add(
			text.New("Operación: "+nonEmpty(p.BankCode, "—"), props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Referencia: "+p.ID, props.Text{
				Size: 7, Top: 10, Left: 3, Color: colorGray,
			}),
			text.New("Conserve este comprobante como constancia de pago.", props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 22, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// QRPayload referencia|total|fecha de pago|código de operación
func QRPayload(p *entity.Payment) string {
	paid := ""
	if p.PaidAt != nil {
		paid = p.PaidAt.UTC().Format(time.RFC3339)
	}
	return strings.Join([]string{p.ID, p.Total.StringFixed(2), paid, p.BankCode}, "|")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return "N° " + strings.ToUpper(id[:8])
	}
	return "N° " + strings.ToUpper(id)
}

// formatMoney separador de miles con coma y dos decimales: 1234.5 -> "1,234.50".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	out := string(buf) + frac
	if neg {
		return "-" + out
	}
	return out
}
