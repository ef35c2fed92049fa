package dto

import (
	"strconv"
	"strings"

	"tileledger/internal/model"

	"github.com/shopspring/decimal"
)

// NumericText is a numeric form field. It accepts a JSON number or a JSON
// string; text that does not parse reads as zero (or null), the way typed
// form input is treated.
type NumericText string

func (n *NumericText) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = ""
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*n = NumericText(strings.TrimSpace(s))
	return nil
}

func (n NumericText) Blank() bool { return strings.TrimSpace(string(n)) == "" }

// Decimal is the parsed value; blank or invalid text is zero.
func (n NumericText) Decimal() decimal.Decimal { return model.ParseDecimal(string(n)) }

// NullDecimal is the parsed value; blank or invalid text is null.
func (n NumericText) NullDecimal() decimal.NullDecimal { return model.ParseNullDecimal(string(n)) }
