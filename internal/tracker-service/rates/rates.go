package rates

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Tabela estática de cotações aproximadas para USD.
// Moedas fora da tabela convertem com taxa 0 e ficam de fora da
// classificação high roller (política fail-closed, não é erro).
var exchangeRates = map[string]float64{
	"btc":   66000,   // Bitcoin
	"eth":   3500,    // Ethereum
	"usdt":  1,       // Tether
	"USDT":  1,       // variante maiúscula presente no feed
	"usdc":  1,       // USD Coin
	"ltc":   65.82,   // Litecoin
	"doge":  0.15,    // Dogecoin
	"bnb":   460,     // Binance Coin
	"xrp":   0.58,    // Ripple
	"trx":   0.12,    // TRON
	"bch":   320,     // Bitcoin Cash
	"matic": 0.85,    // Polygon
	"shib":  0.00002, // Shiba Inu
	"dot":   7.20,    // Polkadot
	"dai":   1,       // DAI
	"busd":  1,       // Binance USD
	"usd":   1,       // Dólar americano
	"inr":   0.012,   // Rupia indiana
	"ars":   0.0012,  // Peso argentino
	"sol":   175.50,  // Solana
	"cad":   0.74,    // Dólar canadense
	"ngn":   0.00067, // Naira nigeriana
}

// ConvertToUSD converte um valor para USD usando a tabela estática.
// Busca primeiro o código exato, depois em minúsculas; sem correspondência
// a taxa é 0.
func ConvertToUSD(amount float64, currency string) float64 {
	rate, ok := exchangeRates[currency]
	if !ok {
		rate = exchangeRates[strings.ToLower(currency)]
	}
	return amount * rate
}

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatUSD formata um valor como moeda americana para exibição.
// Não participa de nenhuma lógica de filtro.
func FormatUSD(amount float64) string {
	return usdPrinter.Sprintf("$%.2f", amount)
}
