// Package money concentra el redondeo y el formato de montos.
//
// Política de redondeo: half-up a 2 decimales (decimal.Round redondea la mitad
// alejándose de cero, que para montos positivos es half-up). Los totales se
// construyen sumando líneas ya redondeadas, nunca redondeando el total directo,
// para que subtotal, líneas y total mostrados cuadren al centavo.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Round2 redondea half-up a 2 decimales.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Sum suma montos redondeando cada uno antes de acumular.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(Round2(a))
	}
	return total
}

// Format devuelve symbol + monto con agrupación de miles y 2 decimales según locale.
// Un locale inválido cae a inglés.
func Format(amount decimal.Decimal, symbol, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	f := Round2(amount).InexactFloat64()
	if f < 0 {
		return "-" + symbol + p.Sprint(number.Decimal(-f, number.Scale(2)))
	}
	return symbol + p.Sprint(number.Decimal(f, number.Scale(2)))
}
