package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountInWords(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "Zero"},
		{7, "Seven"},
		{19, "Nineteen"},
		{20, "Twenty"},
		{42, "Forty Two"},
		{100, "One Hundred"},
		{101, "One Hundred and One"},
		{999, "Nine Hundred and Ninety Nine"},
		{1000, "One Thousand"},
		{1500, "One Thousand Five Hundred"},
		{88, "Eighty Eight"},
		{99999, "Ninety Nine Thousand Nine Hundred and Ninety Nine"},
		{100000, "One Lakh"},
		{250000, "Two Lakh Fifty Thousand"},
		{9999999, "Ninety Nine Lakh Ninety Nine Thousand Nine Hundred and Ninety Nine"},
		{10000000, "Amount too large"},
		{-1, "Amount too large"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, AmountInWords(tc.in), "input %d", tc.in)
	}
}
