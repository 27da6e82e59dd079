// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package flexstatement parses IBKR Flex Query statement XML documents.
//
// A statement document is a FlexQueryResponse root element owning an optional
// FlexStatements collection, which owns per-account FlexStatement elements.
// Each statement optionally carries AccountInformation and a Trades block with
// Trade and Lot entries, all in the IBKR XML attribute-based format.
//
// Descriptive attributes (query name, account id, dates, period) are opaque
// strings and default to empty when absent. The numeric attributes that the
// ledger conversion depends on (quantity, tradePrice, fxRateToBase) must
// parse, and a document that violates this fails with ErrMalformedDocument.
// The trade commission is the one lenient numeric field: IBKR omits it on
// some transaction types, so it coerces to zero instead of failing.
package flexstatement

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedDocument indicates that a statement document is not well-formed
// XML or is missing a load-bearing numeric attribute. Errors returned by
// Parse wrap this sentinel.
var ErrMalformedDocument = errors.New("malformed statement document")

// FlexQueryResponse is the root of a parsed statement document.
type FlexQueryResponse struct {
	// QueryName is the name of the Flex Query that produced the document.
	QueryName string
	// Type is the query type (e.g., "AF").
	Type string
	// FlexStatements is the statement collection, nil if the document has none.
	FlexStatements *FlexStatements
}

// FlexStatements is the collection of per-account statements.
type FlexStatements struct {
	// Count is the declared statement count. It is informational and is not
	// checked against the number of statements actually present.
	Count int
	// Statements is the list of statements in document order.
	Statements []FlexStatement
}

// FlexStatement is the statement for a single account and period.
type FlexStatement struct {
	// AccountID is the IBKR account identifier (e.g., "U1234567").
	AccountID     string
	FromDate      string
	ToDate        string
	Period        string
	WhenGenerated string
	// AccountInformation is the descriptive account block, nil if absent.
	AccountInformation *AccountInformation
	// Trades is the trade block, nil if absent.
	Trades *Trades
}

// AccountInformation is the descriptive account block. It is not consumed by
// the ledger conversion.
type AccountInformation struct {
	AccountID  string
	AcctAlias  string
	Currency   string
	DateOpened string
}

// Trades is the trade block of a statement, holding executed trades and
// closed lots in document order.
type Trades struct {
	// Trades is the list of trade executions.
	Trades []Trade
	// Lots is the list of closed lots. Lots are parsed and retained but not
	// consumed by the ledger conversion.
	Lots []Lot
}

// Trade is a single trade execution.
type Trade struct {
	Symbol          string
	TransactionType string
	Exchange        string
	// Quantity is signed: negative for sells, positive for buys.
	Quantity float64
	// TradePrice is the per-unit price in the trade currency.
	TradePrice float64
	// Currency is the trade currency code.
	Currency string
	// FxRateToBase converts trade-currency amounts into the reporting
	// (base) currency.
	FxRateToBase float64
	// AssetCategory is the IBKR asset category (e.g., "STK", "CASH").
	AssetCategory string
	// IBCommission is the commission amount, zero when IBKR omits it.
	IBCommission float64
	// IBCommissionCurrency is the currency code of the commission.
	IBCommissionCurrency string
	// TradeDate is the trade date as an opaque string.
	TradeDate string
}

// Lot is a single closed lot. Same attribute shape as Trade, but the
// commission is kept as raw text since lots are passively stored.
type Lot struct {
	Symbol               string
	TransactionType      string
	Exchange             string
	Quantity             float64
	TradePrice           float64
	Currency             string
	FxRateToBase         float64
	AssetCategory        string
	IBCommission         string
	IBCommissionCurrency string
	TradeDate            string
}

// Parse parses the raw XML of one statement document.
func Parse(data []byte) (*FlexQueryResponse, error) {
	var xmlResponse xmlFlexQueryResponse
	if err := xml.Unmarshal(data, &xmlResponse); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	response := &FlexQueryResponse{
		QueryName: xmlResponse.QueryName,
		Type:      xmlResponse.Type,
	}
	if xmlResponse.FlexStatements == nil {
		return response, nil
	}
	flexStatements, err := convertFlexStatements(xmlResponse.FlexStatements)
	if err != nil {
		return nil, err
	}
	response.FlexStatements = flexStatements
	return response, nil
}

// *** PRIVATE ***

// xmlFlexQueryResponse is the XML mirror of the root element.
// All nested optional elements are pointers so absence is detectable.
type xmlFlexQueryResponse struct {
	XMLName        xml.Name           `xml:"FlexQueryResponse"`
	QueryName      string             `xml:"queryName,attr"`
	Type           string             `xml:"type,attr"`
	FlexStatements *xmlFlexStatements `xml:"FlexStatements"`
}

type xmlFlexStatements struct {
	Count          string             `xml:"count,attr"`
	FlexStatements []xmlFlexStatement `xml:"FlexStatement"`
}

type xmlFlexStatement struct {
	AccountID          string                 `xml:"accountId,attr"`
	FromDate           string                 `xml:"fromDate,attr"`
	ToDate             string                 `xml:"toDate,attr"`
	Period             string                 `xml:"period,attr"`
	WhenGenerated      string                 `xml:"whenGenerated,attr"`
	AccountInformation *xmlAccountInformation `xml:"AccountInformation"`
	Trades             *xmlTrades             `xml:"Trades"`
}

type xmlAccountInformation struct {
	AccountID  string `xml:"accountId,attr"`
	AcctAlias  string `xml:"acctAlias,attr"`
	Currency   string `xml:"currency,attr"`
	DateOpened string `xml:"dateOpened,attr"`
}

type xmlTrades struct {
	Trades []xmlTrade `xml:"Trade"`
	Lots   []xmlLot   `xml:"Lot"`
}

// xmlTrade represents a trade in the IBKR Flex Query XML format.
// All fields are XML attributes, kept as strings until coercion.
type xmlTrade struct {
	Symbol               string `xml:"symbol,attr"`
	TransactionType      string `xml:"transactionType,attr"`
	Exchange             string `xml:"exchange,attr"`
	Quantity             string `xml:"quantity,attr"`
	TradePrice           string `xml:"tradePrice,attr"`
	Currency             string `xml:"currency,attr"`
	FxRateToBase         string `xml:"fxRateToBase,attr"`
	AssetCategory        string `xml:"assetCategory,attr"`
	IBCommission         string `xml:"ibCommission,attr"`
	IBCommissionCurrency string `xml:"ibCommissionCurrency,attr"`
	TradeDate            string `xml:"tradeDate,attr"`
}

// xmlLot represents a closed lot in the IBKR Flex Query XML format.
// Same attribute names as xmlTrade.
type xmlLot struct {
	Symbol               string `xml:"symbol,attr"`
	TransactionType      string `xml:"transactionType,attr"`
	Exchange             string `xml:"exchange,attr"`
	Quantity             string `xml:"quantity,attr"`
	TradePrice           string `xml:"tradePrice,attr"`
	Currency             string `xml:"currency,attr"`
	FxRateToBase         string `xml:"fxRateToBase,attr"`
	AssetCategory        string `xml:"assetCategory,attr"`
	IBCommission         string `xml:"ibCommission,attr"`
	IBCommissionCurrency string `xml:"ibCommissionCurrency,attr"`
	TradeDate            string `xml:"tradeDate,attr"`
}

func convertFlexStatements(xmlFlexStatements *xmlFlexStatements) (*FlexStatements, error) {
	count, err := strconv.Atoi(xmlFlexStatements.Count)
	if err != nil {
		return nil, fmt.Errorf("%w: statement count %q: not a number", ErrMalformedDocument, xmlFlexStatements.Count)
	}
	statements := make([]FlexStatement, 0, len(xmlFlexStatements.FlexStatements))
	for i := range xmlFlexStatements.FlexStatements {
		statement, err := convertFlexStatement(&xmlFlexStatements.FlexStatements[i])
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		statements = append(statements, *statement)
	}
	return &FlexStatements{
		Count:      count,
		Statements: statements,
	}, nil
}

func convertFlexStatement(xmlStatement *xmlFlexStatement) (*FlexStatement, error) {
	statement := &FlexStatement{
		AccountID:     xmlStatement.AccountID,
		FromDate:      xmlStatement.FromDate,
		ToDate:        xmlStatement.ToDate,
		Period:        xmlStatement.Period,
		WhenGenerated: xmlStatement.WhenGenerated,
	}
	if xmlStatement.AccountInformation != nil {
		statement.AccountInformation = &AccountInformation{
			AccountID:  xmlStatement.AccountInformation.AccountID,
			AcctAlias:  xmlStatement.AccountInformation.AcctAlias,
			Currency:   xmlStatement.AccountInformation.Currency,
			DateOpened: xmlStatement.AccountInformation.DateOpened,
		}
	}
	if xmlStatement.Trades != nil {
		trades, err := convertTrades(xmlStatement.Trades)
		if err != nil {
			return nil, err
		}
		statement.Trades = trades
	}
	return statement, nil
}

func convertTrades(xmlTrades *xmlTrades) (*Trades, error) {
	trades := &Trades{
		Trades: make([]Trade, 0, len(xmlTrades.Trades)),
		Lots:   make([]Lot, 0, len(xmlTrades.Lots)),
	}
	for i := range xmlTrades.Trades {
		trade, err := convertTrade(&xmlTrades.Trades[i])
		if err != nil {
			return nil, fmt.Errorf("trade %d: %w", i, err)
		}
		trades.Trades = append(trades.Trades, *trade)
	}
	for i := range xmlTrades.Lots {
		lot, err := convertLot(&xmlTrades.Lots[i])
		if err != nil {
			return nil, fmt.Errorf("lot %d: %w", i, err)
		}
		trades.Lots = append(trades.Lots, *lot)
	}
	return trades, nil
}

func convertTrade(xmlTrade *xmlTrade) (*Trade, error) {
	quantity, err := parseRequiredFloat("quantity", xmlTrade.Quantity)
	if err != nil {
		return nil, err
	}
	tradePrice, err := parseRequiredFloat("tradePrice", xmlTrade.TradePrice)
	if err != nil {
		return nil, err
	}
	fxRateToBase, err := parseRequiredFloat("fxRateToBase", xmlTrade.FxRateToBase)
	if err != nil {
		return nil, err
	}
	return &Trade{
		Symbol:               xmlTrade.Symbol,
		TransactionType:      xmlTrade.TransactionType,
		Exchange:             xmlTrade.Exchange,
		Quantity:             quantity,
		TradePrice:           tradePrice,
		Currency:             xmlTrade.Currency,
		FxRateToBase:         fxRateToBase,
		AssetCategory:        xmlTrade.AssetCategory,
		IBCommission:         parseOptionalFloat(xmlTrade.IBCommission),
		IBCommissionCurrency: xmlTrade.IBCommissionCurrency,
		TradeDate:            xmlTrade.TradeDate,
	}, nil
}

func convertLot(xmlLot *xmlLot) (*Lot, error) {
	quantity, err := parseRequiredFloat("quantity", xmlLot.Quantity)
	if err != nil {
		return nil, err
	}
	tradePrice, err := parseRequiredFloat("tradePrice", xmlLot.TradePrice)
	if err != nil {
		return nil, err
	}
	fxRateToBase, err := parseRequiredFloat("fxRateToBase", xmlLot.FxRateToBase)
	if err != nil {
		return nil, err
	}
	return &Lot{
		Symbol:               xmlLot.Symbol,
		TransactionType:      xmlLot.TransactionType,
		Exchange:             xmlLot.Exchange,
		Quantity:             quantity,
		TradePrice:           tradePrice,
		Currency:             xmlLot.Currency,
		FxRateToBase:         fxRateToBase,
		AssetCategory:        xmlLot.AssetCategory,
		IBCommission:         xmlLot.IBCommission,
		IBCommissionCurrency: xmlLot.IBCommissionCurrency,
		TradeDate:            xmlLot.TradeDate,
	}, nil
}

// parseRequiredFloat parses a load-bearing numeric attribute. A missing or
// non-numeric value fails the whole document.
func parseRequiredFloat(name string, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: not a number", ErrMalformedDocument, name, value)
	}
	return f, nil
}

// parseOptionalFloat coerces an optional numeric attribute, defaulting to
// zero when the value is missing or non-numeric.
func parseOptionalFloat(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}
