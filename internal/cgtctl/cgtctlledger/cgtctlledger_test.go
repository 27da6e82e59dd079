// Copyright 2026 Peter Edge
//
// All rights reserved.

package cgtctlledger

import (
	"testing"

	"github.com/bufdev/cgtctl/internal/pkg/flexstatement"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestConvertSingleSell(t *testing.T) {
	t.Parallel()
	rows := Convert([]*flexstatement.FlexQueryResponse{
		newResponse(newStatement(flexstatement.Trade{
			Symbol:               "AAPL",
			Quantity:             -10,
			TradePrice:           150.0,
			Currency:             "USD",
			FxRateToBase:         1.0,
			AssetCategory:        "STK",
			IBCommission:         1.0,
			IBCommissionCurrency: "USD",
			TradeDate:            "2024-01-05",
		})),
	})
	require.Equal(t, []Row{
		{
			Side:    SideSell,
			Date:    "2024-01-05",
			Company: "AAPL",
			Shares:  10,
			Price:   150.0,
			Charges: 1.0,
			Tax:     0,
		},
	}, rows)
}

func TestConvertSkipsCash(t *testing.T) {
	t.Parallel()
	rows := Convert([]*flexstatement.FlexQueryResponse{
		newResponse(newStatement(
			newTrade("GBP.USD", 2000, "CASH"),
			newTrade("VUSA", 25, "STK"),
		)),
	})
	require.Len(t, rows, 1)
	require.Equal(t, "VUSA", rows[0].Company)
}

func TestConvertSide(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		quantity float64
		expected string
	}{
		{name: "negative quantity is a sell", quantity: -0.5, expected: SideSell},
		{name: "positive quantity is a buy", quantity: 10, expected: SideBuy},
		// The side comparison is strict-less-than-zero, so zero classifies
		// as a buy.
		{name: "zero quantity is a buy", quantity: 0, expected: SideBuy},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			rows := Convert([]*flexstatement.FlexQueryResponse{
				newResponse(newStatement(newTrade("NET", testCase.quantity, "STK"))),
			})
			require.Len(t, rows, 1)
			require.Equal(t, testCase.expected, rows[0].Side)
		})
	}
}

func TestConvertSharesTruncation(t *testing.T) {
	t.Parallel()
	// Fractional shares are truncated toward zero, not rounded.
	rows := Convert([]*flexstatement.FlexQueryResponse{
		newResponse(newStatement(newTrade("VWRL", -12.7, "STK"))),
	})
	require.Len(t, rows, 1)
	require.Equal(t, int64(12), rows[0].Shares)
	require.Equal(t, SideSell, rows[0].Side)
}

func TestConvertPriceNonNegative(t *testing.T) {
	t.Parallel()
	trade := newTrade("NET", -5, "STK")
	trade.TradePrice = -80.0
	trade.FxRateToBase = 0.79
	rows := Convert([]*flexstatement.FlexQueryResponse{newResponse(newStatement(trade))})
	require.Len(t, rows, 1)
	require.Equal(t, 80.0*0.79, rows[0].Price)
}

func TestConvertCharges(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name               string
		commission         float64
		commissionCurrency string
		expected           float64
	}{
		{
			// Commission currency matches the trade currency, so the FX
			// rate applies.
			name:               "matching currency converts to base",
			commission:         -2.0,
			commissionCurrency: "USD",
			expected:           2.0 * 0.79,
		},
		{
			// Commission currency differs from the trade currency, so the
			// amount is taken as-is.
			name:               "differing currency is unconverted",
			commission:         -2.0,
			commissionCurrency: "GBP",
			expected:           2.0,
		},
		{
			// A missing commission was coerced to zero at parse time and
			// still yields a row.
			name:               "zero commission",
			commission:         0,
			commissionCurrency: "USD",
			expected:           0,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			trade := newTrade("NET", 10, "STK")
			trade.Currency = "USD"
			trade.FxRateToBase = 0.79
			trade.IBCommission = testCase.commission
			trade.IBCommissionCurrency = testCase.commissionCurrency
			rows := Convert([]*flexstatement.FlexQueryResponse{newResponse(newStatement(trade))})
			require.Len(t, rows, 1)
			require.Equal(t, testCase.expected, rows[0].Charges)
		})
	}
}

func TestConvertPreservesTraversalOrder(t *testing.T) {
	t.Parallel()
	// Interleave dates and symbols across documents and statements to make
	// any sorting visible.
	rows := Convert([]*flexstatement.FlexQueryResponse{
		newResponse(
			newStatement(
				newTrade("ZZZ", 1, "STK"),
				newTrade("AAA", 1, "STK"),
			),
			newStatement(
				newTrade("MMM", 1, "STK"),
			),
		),
		{QueryName: "no-collection"},
		newResponse(
			newStatement(
				newTrade("BBB", 1, "STK"),
				newTrade("YYY", 1, "STK"),
			),
		),
	})
	companies := make([]string, 0, len(rows))
	for _, row := range rows {
		companies = append(companies, row.Company)
	}
	expected := []string{"ZZZ", "AAA", "MMM", "BBB", "YYY"}
	if diff := cmp.Diff(expected, companies); diff != "" {
		t.Errorf("ledger order mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertEmptyInputs(t *testing.T) {
	t.Parallel()
	require.Empty(t, Convert(nil))
	// No statement collection.
	require.Empty(t, Convert([]*flexstatement.FlexQueryResponse{{}}))
	// Statement without a trade block.
	require.Empty(t, Convert([]*flexstatement.FlexQueryResponse{
		newResponse(flexstatement.FlexStatement{AccountID: "U1234567"}),
	}))
	// Trade block with no trades.
	require.Empty(t, Convert([]*flexstatement.FlexQueryResponse{
		newResponse(flexstatement.FlexStatement{Trades: &flexstatement.Trades{}}),
	}))
}

// *** HELPERS ***

func newResponse(statements ...flexstatement.FlexStatement) *flexstatement.FlexQueryResponse {
	return &flexstatement.FlexQueryResponse{
		QueryName: "cgt-export",
		Type:      "AF",
		FlexStatements: &flexstatement.FlexStatements{
			Count:      len(statements),
			Statements: statements,
		},
	}
}

func newStatement(trades ...flexstatement.Trade) flexstatement.FlexStatement {
	return flexstatement.FlexStatement{
		AccountID: "U1234567",
		Trades:    &flexstatement.Trades{Trades: trades},
	}
}

func newTrade(symbol string, quantity float64, assetCategory string) flexstatement.Trade {
	return flexstatement.Trade{
		Symbol:               symbol,
		TransactionType:      "ExchTrade",
		Exchange:             "NASDAQ",
		Quantity:             quantity,
		TradePrice:           100.0,
		Currency:             "USD",
		FxRateToBase:         1.0,
		AssetCategory:        assetCategory,
		IBCommission:         -1.0,
		IBCommissionCurrency: "USD",
		TradeDate:            "2024-01-05",
	}
}
