package util

import "fmt"

const (
	decimalValue  = 100
	thousandValue = 1000
)

// FormatAmount formats minor currency units with "." thousands and "," decimals.
func FormatAmount(value int64) string {
	return FormatMoney(value, ".", ",")
}

// FormatMoney formats value, expressed in minor currency units, with the given
// separators.
func FormatMoney(value int64, thousand, decimal string) string {
	var result string
	var isNegative bool

	if value < 0 {
		value *= -1
		isNegative = true
	}

	// apply the decimal separator
	result = fmt.Sprintf("%s%02d%s", decimal, value%decimalValue, result)
	value /= decimalValue

	// group the integer part in thousands
	for value >= thousandValue {
		result = fmt.Sprintf("%s%03d%s", thousand, value%thousandValue, result)
		value /= thousandValue
	}

	if isNegative {
		return fmt.Sprintf("-%d%s", value, result)
	}

	return fmt.Sprintf("%d%s", value, result)
}
