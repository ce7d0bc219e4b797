// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money formats amounts in one currency for one display language.
type Money struct {
	unit    currency.Unit
	scale   int
	printer *message.Printer
}

// NewMoney creates a formatter for an ISO 4217 code such as "INR".
func NewMoney(code string, lang language.Tag) (*Money, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("parsing currency %q: %w", code, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return &Money{unit: unit, scale: scale, printer: message.NewPrinter(lang)}, nil
}

// Code returns the ISO code.
func (m *Money) Code() string { return m.unit.String() }

// Symbol returns the localized currency symbol.
func (m *Money) Symbol() string {
	return m.printer.Sprint(currency.Symbol(m.unit))
}

// Format renders amount with the symbol, digit grouping and the currency's
// standard number of decimals, e.g. "$1,234.50".
func (m *Money) Format(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + m.Symbol() + m.printer.Sprint(number.Decimal(amount, number.Scale(m.scale)))
}

// Number renders an integer count with digit grouping.
func (m *Money) Number(n int) string {
	return m.printer.Sprint(number.Decimal(n))
}
