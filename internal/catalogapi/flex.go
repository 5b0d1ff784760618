package catalogapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// The catalog API is loosely typed: ids arrive as numbers or strings, money as JSON
// numbers or decimal strings, flags can be null. The flex types below accept every
// variant seen in practice and never fail, so one odd field cannot drop a product.

var null = []byte("null")

type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			*s = ""
			return nil
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*s = flexString(n.String())
		return nil
	}
	*s = ""
	return nil
}

type flexDecimal struct {
	Value decimal.Decimal
	Valid bool
}

func (d *flexDecimal) UnmarshalJSON(b []byte) error {
	*d = flexDecimal{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return nil
		}
		raw = strings.TrimSpace(v)
	}
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	*d = flexDecimal{Value: v, Valid: true}
	return nil
}

// OrZero returns the value, or zero when the field was absent or not numeric.
func (d flexDecimal) OrZero() decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Value
}

// flexInt only accepts JSON numbers with an integral value; anything else is treated
// as absent.
type flexInt struct {
	Value int
	Valid bool
}

func (i *flexInt) UnmarshalJSON(b []byte) error {
	*i = flexInt{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] == '"' || bytes.Equal(b, null) {
		return nil
	}
	v, err := decimal.NewFromString(string(b))
	if err != nil || !v.IsInteger() {
		return nil
	}
	*i = flexInt{Value: int(v.IntPart()), Valid: true}
	return nil
}

type flexBool struct {
	Value bool
	Valid bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	*f = flexBool{}
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, null) {
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*f = flexBool{Value: v, Valid: true}
	return nil
}

// Or returns the value, or def when the field was absent, null or not a boolean.
func (f flexBool) Or(def bool) bool {
	if !f.Valid {
		return def
	}
	return f.Value
}
