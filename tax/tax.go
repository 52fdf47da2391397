package tax

// Rates holds the tax parameters applied to a realized-gains report.
// Defaults follow the Indian equity regime: 15% flat STCG, 10% LTCG on
// the amount above a ₹1,00,000 exemption.
type Rates struct {
	ShortTermRate     float64 `json:"short_term_rate" yaml:"short_term_rate"`
	LongTermRate      float64 `json:"long_term_rate" yaml:"long_term_rate"`
	LongTermExemption float64 `json:"long_term_exemption" yaml:"long_term_exemption"`
}

// DefaultRates returns the Indian STCG/LTCG defaults.
func DefaultRates() Rates {
	return Rates{
		ShortTermRate:     0.15,
		LongTermRate:      0.10,
		LongTermExemption: 100000,
	}
}

// Liability is the tax owed on a report.
type Liability struct {
	NetShortTerm  float64 `json:"net_short_term"`
	NetLongTerm   float64 `json:"net_long_term"`
	TaxableLong   float64 `json:"taxable_long_term"` // after exemption
	ShortTermTax  float64 `json:"short_term_tax"`
	LongTermTax   float64 `json:"long_term_tax"`
	TotalTax      float64 `json:"total_tax"`
}

// Assess applies the rates to a report. Net losses owe no tax; the
// long-term exemption is deducted before the LTCG rate applies.
func Assess(report *Report, rates Rates) Liability {
	l := Liability{
		NetShortTerm: report.NetShortTerm(),
		NetLongTerm:  report.NetLongTerm(),
	}

	if l.NetShortTerm > 0 {
		l.ShortTermTax = l.NetShortTerm * rates.ShortTermRate
	}

	if l.NetLongTerm > rates.LongTermExemption {
		l.TaxableLong = l.NetLongTerm - rates.LongTermExemption
		l.LongTermTax = l.TaxableLong * rates.LongTermRate
	}

	l.TotalTax = l.ShortTermTax + l.LongTermTax
	return l
}
