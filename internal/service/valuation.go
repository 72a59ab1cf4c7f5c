package service

import (
	"AssetReport/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Valuate 按持仓顺序计算估值，没有有效行情的股票不参与计算
func Valuate(cfg *model.AssetConfig, quotes map[string]model.Quote, fx decimal.Decimal) ([]model.ValuationRow, model.Totals) {
	rows := make([]model.ValuationRow, 0, cfg.Portfolio.Len())
	totals := model.Totals{}

	for _, code := range cfg.Portfolio.Codes() {
		quote, ok := quotes[code]
		if !ok {
			continue
		}
		market := model.MarketOf(code)
		if market == model.MarketUnknown {
			continue
		}
		holding, _ := cfg.Portfolio.Get(code)

		rate := decimal.NewFromInt(1)
		if market == model.MarketHK {
			rate = fx
		}
		shares := decimal.NewFromInt(holding.Shares)

		marketValue := quote.Price.Mul(shares).Mul(rate)
		preCloseValue := quote.PreClose.Mul(shares).Mul(rate)
		pnl := marketValue.Sub(preCloseValue)

		rows = append(rows, model.ValuationRow{
			Code:             code,
			Name:             holding.Name,
			Shares:           holding.Shares,
			Currency:         market.Currency(),
			Price:            quote.Price,
			PreClose:         quote.PreClose,
			MarketValueCNY:   marketValue,
			PreCloseValueCNY: preCloseValue,
			PnLCNY:           pnl,
			PnLPercent:       percent(pnl, preCloseValue),
		})

		totals.MarketValue = totals.MarketValue.Add(marketValue)
		totals.PreCloseValue = totals.PreCloseValue.Add(preCloseValue)
		totals.PnL = totals.PnL.Add(pnl)
	}

	totals.PnLPercent = percent(totals.PnL, totals.PreCloseValue)
	totals.Liabilities = decimal.NewFromFloat(cfg.Liabilities)
	totals.NetWorth = totals.MarketValue.Sub(totals.Liabilities)
	return rows, totals
}

// percent 分母为 0 时返回 0
func percent(part, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return part.Div(base).Mul(hundred)
}
