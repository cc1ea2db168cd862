package payroll

import (
	"github.com/nagnet2050/quick-sale-hr/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// Taxes holds the statutory side of a payroll breakdown.
type Taxes struct {
	Tax             decimal.Decimal
	Insurance       decimal.Decimal
	HealthInsurance decimal.Decimal
}

// TaxCalculator applies the flat configured rates. Tax is charged on
// income net of pre-tax deductions, only above the exempt limit
// (strict comparison); insurance is charged on basic plus allowances
// regardless of deductions.
type TaxCalculator struct {
	cfg payroll.Config
}

func NewTaxCalculator(cfg payroll.Config) *TaxCalculator {
	return &TaxCalculator{cfg: cfg}
}

func (c *TaxCalculator) Apply(basic, allowances, grossMinusPreTax decimal.Decimal) Taxes {
	taxable := grossMinusPreTax
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	var tax decimal.Decimal
	if taxable.GreaterThan(c.cfg.TaxExemptLimit) {
		tax = taxable.Mul(c.cfg.TaxRate).Round(2)
	}

	insuranceBase := basic.Add(allowances)
	return Taxes{
		Tax:             tax,
		Insurance:       insuranceBase.Mul(c.cfg.InsuranceRate).Round(2),
		HealthInsurance: insuranceBase.Mul(c.cfg.HealthInsuranceRate).Round(2),
	}
}
