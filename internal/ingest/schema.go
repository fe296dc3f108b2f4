// Package ingest loads instrument bar files and sector metadata. The
// scoring core never guesses column identity itself: header resolution
// goes through the SchemaResolver strategy.
package ingest

import (
	"strings"

	"github.com/qjlxg/fe/internal/core"
)

// ColumnMap holds resolved column indexes into a bar file's rows.
// Optional columns are -1 when absent.
type ColumnMap struct {
	Date     int
	Open     int
	High     int
	Low      int
	Close    int
	Amount   int
	Turnover int
}

// SchemaResolver maps a header row to a ColumnMap. Implementations may
// match localized vocabularies, positional layouts, or anything else.
type SchemaResolver interface {
	Resolve(headers []string) (ColumnMap, error)
}

// KeywordResolver resolves headers by alias lookup over a localized
// vocabulary. The turnover aliases match by substring because source
// files qualify the column ("换手率(%)" and friends).
type KeywordResolver struct{}

var columnAliases = map[string][]string{
	"date":   {"date", "日期"},
	"open":   {"open", "开盘"},
	"high":   {"high", "最高"},
	"low":    {"low", "最低"},
	"close":  {"close", "收盘"},
	"amount": {"amount", "成交额"},
}

var turnoverAliases = []string{"turnover", "换手率"}

// Resolve implements SchemaResolver. Date, high, low, close and amount
// are required; open and turnover are optional.
func (KeywordResolver) Resolve(headers []string) (ColumnMap, error) {
	cm := ColumnMap{Date: -1, Open: -1, High: -1, Low: -1, Close: -1, Amount: -1, Turnover: -1}

	for i, h := range headers {
		h = normalizeHeader(h)
		for field, aliases := range columnAliases {
			for _, alias := range aliases {
				if h != alias {
					continue
				}
				switch field {
				case "date":
					cm.Date = i
				case "open":
					cm.Open = i
				case "high":
					cm.High = i
				case "low":
					cm.Low = i
				case "close":
					cm.Close = i
				case "amount":
					cm.Amount = i
				}
			}
		}
		if cm.Turnover < 0 {
			for _, alias := range turnoverAliases {
				if strings.Contains(h, alias) {
					cm.Turnover = i
					break
				}
			}
		}
	}

	if cm.Date < 0 || cm.High < 0 || cm.Low < 0 || cm.Close < 0 || cm.Amount < 0 {
		return cm, core.ErrSchemaUnresolved
	}
	return cm, nil
}

// normalizeHeader trims whitespace and the UTF-8 BOM some exports
// carry on the first cell, and lowercases ASCII names.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\uFEFF")
	return strings.ToLower(strings.TrimSpace(h))
}
