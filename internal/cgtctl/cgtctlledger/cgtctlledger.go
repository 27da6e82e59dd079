// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cgtctlledger converts parsed Flex Query statements into a flat
// ledger of buy/sell rows for capital-gains-tax tooling.
//
// The ledger preserves traversal order: documents in input order, statements
// in document order, trades in statement order. No sorting is performed.
package cgtctlledger

import (
	"math"
	"strconv"

	"github.com/bufdev/cgtctl/internal/pkg/flexstatement"
)

const (
	// SideBuy is the ledger side for buys.
	SideBuy = "BUY"
	// SideSell is the ledger side for sells.
	SideSell = "SELL"

	// assetCategoryCash is the IBKR asset category for cash movements,
	// which are not capital-gains events and are excluded from the ledger.
	assetCategoryCash = "CASH"
)

// Headers returns the ledger column names in output order.
func Headers() []string {
	return []string{"side", "date", "company", "shares", "price", "charges", "tax"}
}

// Row is a single normalized ledger entry.
type Row struct {
	// Side is SideBuy or SideSell.
	Side string `json:"side"`
	// Date is the trade date, verbatim from the statement.
	Date string `json:"date"`
	// Company is the trade symbol, verbatim.
	Company string `json:"company"`
	// Shares is the whole-unit share count, magnitude only. Fractional
	// shares are truncated toward zero.
	Shares int64 `json:"shares"`
	// Price is the per-unit price in the base currency, always non-negative.
	Price float64 `json:"price"`
	// Charges is the commission in the base currency, always non-negative.
	Charges float64 `json:"charges"`
	// Tax is a placeholder for a downstream stage, always zero here.
	Tax int64 `json:"tax"`
}

// ToRecord returns the row as CSV fields in Headers order.
func (r Row) ToRecord() []string {
	return []string{
		r.Side,
		r.Date,
		r.Company,
		strconv.FormatInt(r.Shares, 10),
		strconv.FormatFloat(r.Price, 'f', -1, 64),
		strconv.FormatFloat(r.Charges, 'f', -1, 64),
		strconv.FormatInt(r.Tax, 10),
	}
}

// Convert flattens the parsed statement documents into one ordered ledger.
//
// Documents without a statement collection, statements without a trade block,
// and empty trade blocks contribute zero rows. Trades with the CASH asset
// category are skipped.
func Convert(responses []*flexstatement.FlexQueryResponse) []Row {
	var rows []Row
	for _, response := range responses {
		if response.FlexStatements == nil {
			continue
		}
		for _, statement := range response.FlexStatements.Statements {
			if statement.Trades == nil {
				continue
			}
			for i := range statement.Trades.Trades {
				trade := &statement.Trades.Trades[i]
				if trade.AssetCategory == assetCategoryCash {
					continue
				}
				rows = append(rows, convertTrade(trade))
			}
		}
	}
	return rows
}

// *** PRIVATE ***

// convertTrade derives one ledger row from a trade.
func convertTrade(trade *flexstatement.Trade) Row {
	return Row{
		Side:    side(trade.Quantity),
		Date:    trade.TradeDate,
		Company: trade.Symbol,
		Shares:  int64(math.Abs(trade.Quantity)),
		Price:   priceInBaseCurrency(trade),
		Charges: chargesInBaseCurrency(trade),
		Tax:     0,
	}
}

// side classifies the trade direction from the signed quantity.
// The comparison is strict-less-than-zero: a zero quantity classifies as BUY.
func side(quantity float64) string {
	if quantity < 0 {
		return SideSell
	}
	return SideBuy
}

// priceInBaseCurrency converts the trade price into the base currency.
// Always non-negative regardless of trade direction.
func priceInBaseCurrency(trade *flexstatement.Trade) float64 {
	return math.Abs(trade.TradePrice * trade.FxRateToBase)
}

// chargesInBaseCurrency converts the commission into the base currency.
//
// The commission is converted with the trade's FX rate only when its currency
// code matches the trade currency; otherwise it is taken as-is, on the
// assumption that it is already in the base currency. This mirrors the
// upstream statement semantics and is a known approximation.
func chargesInBaseCurrency(trade *flexstatement.Trade) float64 {
	commission := math.Abs(trade.IBCommission)
	if trade.IBCommissionCurrency == trade.Currency {
		return commission * trade.FxRateToBase
	}
	return commission
}
