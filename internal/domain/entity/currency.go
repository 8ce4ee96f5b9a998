package entity

// BaseCurrency moneda en la que se guardan todos los montos.
const BaseCurrency = "USD"

// Currency moneda de visualización. Locale se usa para agrupar miles y decimales.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Flag   string `json:"flag"`
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

// SupportedCurrencies catálogo de monedas del selector.
var SupportedCurrencies = []Currency{
	{Code: "USD", Symbol: "$", Flag: "🇺🇸", Name: "US Dollar", Locale: "en-US"},
	{Code: "EUR", Symbol: "€", Flag: "🇪🇺", Name: "Euro", Locale: "de-DE"},
	{Code: "GBP", Symbol: "£", Flag: "🇬🇧", Name: "British Pound", Locale: "en-GB"},
	{Code: "NGN", Symbol: "₦", Flag: "🇳🇬", Name: "Nigerian Naira", Locale: "en-NG"},
	{Code: "GHS", Symbol: "GH₵", Flag: "🇬🇭", Name: "Ghanaian Cedi", Locale: "en-GH"},
	{Code: "KES", Symbol: "KSh", Flag: "🇰🇪", Name: "Kenyan Shilling", Locale: "en-KE"},
	{Code: "ZAR", Symbol: "R", Flag: "🇿🇦", Name: "South African Rand", Locale: "en-ZA"},
	{Code: "CAD", Symbol: "CA$", Flag: "🇨🇦", Name: "Canadian Dollar", Locale: "en-CA"},
}

// countryCurrency moneda por defecto según país (ISO 3166-1 alfa-2).
var countryCurrency = map[string]string{
	"US": "USD", "GB": "GBP", "NG": "NGN", "GH": "GHS", "KE": "KES", "ZA": "ZAR", "CA": "CAD",
	"DE": "EUR", "FR": "EUR", "ES": "EUR", "IT": "EUR", "NL": "EUR", "IE": "EUR", "PT": "EUR", "BE": "EUR",
}

// CurrencyByCode busca una moneda soportada.
func CurrencyByCode(code string) (Currency, bool) {
	for _, c := range SupportedCurrencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// CurrencyForCountry resuelve la moneda por defecto de un país.
func CurrencyForCountry(country string) (Currency, bool) {
	code, ok := countryCurrency[country]
	if !ok {
		return Currency{}, false
	}
	return CurrencyByCode(code)
}
