package finance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/colegio-api/internal/domain/entity"
)

// DefaultLateFee mora única aplicada a un pago vencido.
var DefaultLateFee = decimal.NewFromFloat(5.00)

// SelectTariff elige el tipo de trámite que fija el costo de un cargo para un plan.
// Solo considera activos cuyo nombre contiene key y cuyo periodo es el plan o AMBOS;
// prefiere la coincidencia exacta de periodo. Empates se resuelven por nombre e id
// para que la elección sea determinista.
func SelectTariff(candidates []*entity.ProcedureType, key, planType string) *entity.ProcedureType {
	var matches []*entity.ProcedureType
	for _, c := range candidates {
		if c == nil || !c.Active || !NameContains(c.Name, key) {
			continue
		}
		if c.Period != planType && c.Period != entity.PeriodBoth {
			continue
		}
		matches = append(matches, c)
	}
	if len(matches) == 0 {
		return nil
	}
	rank := func(p *entity.ProcedureType) int {
		if p.Period == planType {
			return 1
		}
		return 2
	}
	sort.SliceStable(matches, func(i, j int) bool {
		ri, rj := rank(matches[i]), rank(matches[j])
		if ri != rj {
			return ri < rj
		}
		if matches[i].Name != matches[j].Name {
			return matches[i].Name < matches[j].Name
		}
		return matches[i].ID < matches[j].ID
	})
	return matches[0]
}

// ApplyDiscount aplica porcentajes de exoneración acumulados (tope 100%), redondeo a 2 decimales.
func ApplyDiscount(amount decimal.Decimal, percents ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range percents {
		if p.GreaterThan(decimal.Zero) {
			total = total.Add(p)
		}
	}
	hundred := decimal.NewFromInt(100)
	if total.GreaterThanOrEqual(hundred) {
		return decimal.Zero
	}
	return amount.Mul(hundred.Sub(total)).Div(hundred).Round(2)
}
