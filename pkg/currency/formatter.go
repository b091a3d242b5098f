package currency

import (
	"fmt"
	"math"
	"strings"
)

const Default = "GBP"

var symbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
}

// zeroDecimal currencies are shown without minor units.
var zeroDecimal = map[string]bool{
	"IDR": true,
	"JPY": true,
}

// Round rounds half away from zero to two decimal places.
func Round(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func Format(amount float64, code string) string {
	code = strings.ToUpper(code)
	if code == "" {
		code = Default
	}

	negative := amount < 0
	if negative {
		amount = -amount
	}

	var body string
	if zeroDecimal[code] {
		body = addThousandsSeparator(fmt.Sprintf("%.0f", math.Round(amount)), ".")
	} else {
		s := fmt.Sprintf("%.2f", Round(amount))
		intPart, frac, _ := strings.Cut(s, ".")
		body = addThousandsSeparator(intPart, ",") + "." + frac
	}

	result := code + " " + body
	if sym, ok := symbols[code]; ok {
		result = sym + body
	}
	if negative {
		result = "-" + result
	}
	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
