package tradehistory

// JoinFX sets the USDJPY and EURJPY rates of every transaction from the rates
// of its trade date. The match is exact, there is no fallback to a previous
// day. Rows whose valuation needs a rate that is missing are reported as
// JoinMiss and kept.
func (l *Ledger) JoinFX(fx *FXTable) Diagnostics {
	var diags Diagnostics
	for i := range l.txs {
		tx := &l.txs[i]
		tx.USDJPY.Valid, tx.EURJPY.Valid = false, false
		if tx.TradeDate.IsZero() {
			continue
		}
		if v, ok := fx.Rate("USDJPY", tx.TradeDate); ok {
			tx.USDJPY.Decimal, tx.USDJPY.Valid = v, true
		}
		if v, ok := fx.Rate("EURJPY", tx.TradeDate); ok {
			tx.EURJPY.Decimal, tx.EURJPY.Valid = v, true
		}
		if tx.Currency == USD && !tx.USDJPY.Valid {
			diags = append(diags, Diagnostic{
				Kind:    JoinMiss,
				File:    tx.provenance.File,
				Row:     tx.provenance.Row,
				Field:   "USDJPY",
				Value:   tx.TradeDate.String(),
				Message: "no FX rate on trade date",
			})
		}
	}
	return diags
}

// JoinCrosswalk fills empty security codes from the crosswalk, matching on the
// exact security name. A code already set by the adapter is never replaced.
// Rows that stay without code are reported as JoinMiss.
func (l *Ledger) JoinCrosswalk(cw *Crosswalk) Diagnostics {
	var diags Diagnostics
	for i := range l.txs {
		tx := &l.txs[i]
		if tx.SecurityCode != "" {
			continue
		}
		if code, ok := cw.Lookup(tx.SecurityName); ok && code != "" {
			tx.SecurityCode = code
			continue
		}
		diags = append(diags, Diagnostic{
			Kind:    JoinMiss,
			File:    tx.provenance.File,
			Row:     tx.provenance.Row,
			Field:   "security_name",
			Value:   tx.SecurityName,
			Message: "no security code in crosswalk",
		})
	}
	return diags
}

// ApplyRemap applies post-hoc code corrections and returns the number of
// transactions changed.
func (l *Ledger) ApplyRemap(m *Remap) int {
	n := 0
	for i := range l.txs {
		tx := &l.txs[i]
		if code, ok := m.Code(tx.SecurityName, tx.SecurityCode); ok && code != tx.SecurityCode {
			tx.SecurityCode = code
			n++
		}
	}
	return n
}

// investment type labels, as used in the reports.
const (
	JapaneseStock     = "日本株"
	USStock           = "米国株"
	InvestmentTrust   = "投資信託"
	JapaneseStockOrIT = "日本株か投資信託"
	ForeignExchange   = "為替"
	OtherInvestment   = "その他"
)

// InvestmentTypeOf classifies a transaction by the export it comes from.
func InvestmentTypeOf(f SourceFormat) string {
	switch f {
	case FormatJPStock:
		return JapaneseStock
	case FormatUSStock, FormatSBIForeign:
		return USStock
	case FormatInvestmentTrust:
		return InvestmentTrust
	case FormatSBIDomestic:
		return JapaneseStockOrIT
	case FormatWise:
		return ForeignExchange
	default:
		return OtherInvestment
	}
}

// Classify sets the investment type of every transaction.
func (l *Ledger) Classify() {
	for i := range l.txs {
		l.txs[i].InvestmentType = InvestmentTypeOf(l.txs[i].Format)
	}
}

// Join applies the reference data in order: FX rates, crosswalk, remap and
// classification.
func (l *Ledger) Join(refs *References, logger Logger) Diagnostics {
	var diags Diagnostics
	diags = append(diags, l.JoinFX(refs.FX)...)
	diags = append(diags, l.JoinCrosswalk(refs.Crosswalk)...)
	if refs.Remap != nil {
		n := l.ApplyRemap(refs.Remap)
		logger.Info("remapped security codes", "count", n)
	}
	l.Classify()
	return diags
}
