package billing

import "strings"

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountInWords spells out a rupee amount using Indian numbering
// (thousand and lakh groupings). Amounts of one crore or more come
// back as "Amount too large" instead of an error.
func AmountInWords(num int) string {
	if num < 0 || num >= 10000000 {
		return "Amount too large"
	}
	if num == 0 {
		return "Zero"
	}
	return strings.TrimSpace(spell(num))
}

func spell(num int) string {
	switch {
	case num < 20:
		return onesWords[num]

	case num < 100:
		s := tensWords[num/10]
		if num%10 != 0 {
			s += " " + onesWords[num%10]
		}
		return s

	case num < 1000:
		s := onesWords[num/100] + " Hundred"
		if num%100 != 0 {
			s += " and " + spell(num%100)
		}
		return s

	case num < 100000:
		s := spell(num/1000) + " Thousand"
		if num%1000 != 0 {
			s += " " + spell(num%1000)
		}
		return s

	default:
		s := spell(num/100000) + " Lakh"
		if num%100000 != 0 {
			s += " " + spell(num%100000)
		}
		return s
	}
}
