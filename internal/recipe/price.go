package recipe

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	priceMaxDigits        = 5
	priceDecimalPlaces    = 2
	priceMaxWholeDigits   = priceMaxDigits - priceDecimalPlaces
	msgPriceDigits        = "Ensure that there are no more than 5 digits in total."
	msgPriceDecimalPlaces = "Ensure that there are no more than 2 decimal places."
	msgPriceWholeDigits   = "Ensure that there are no more than 3 digits before the decimal point."
	msgPriceInvalid       = "A valid number is required."
)

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// PriceError carries the user-facing reason a price was rejected.
type PriceError struct {
	Message string
}

func (e *PriceError) Error() string { return e.Message }

// Price is a NUMERIC(5,2) amount held in hundredths. It marshals as a
// two-decimal string such as "5.00".
type Price int64

// ParsePrice accepts the decimal text of a price (from a JSON number or a
// JSON string) with at most 5 digits, 2 of them after the point.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return 0, &PriceError{Message: msgPriceInvalid}
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	whole = strings.TrimLeft(whole, "0")

	// Leading zeros are not significant; a value below 1 counts every
	// fractional place.
	total := len(whole) + len(frac)
	if total > priceMaxDigits {
		return 0, &PriceError{Message: msgPriceDigits}
	}
	if len(frac) > priceDecimalPlaces {
		return 0, &PriceError{Message: msgPriceDecimalPlaces}
	}
	if len(whole) > priceMaxWholeDigits {
		return 0, &PriceError{Message: msgPriceWholeDigits}
	}

	frac += strings.Repeat("0", priceDecimalPlaces-len(frac))
	cents, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, &PriceError{Message: msgPriceInvalid}
	}
	if negative {
		cents = -cents
	}

	return Price(cents), nil
}

// parsePriceJSON reads a price from a raw JSON number or string.
func parsePriceJSON(raw json.RawMessage) (Price, error) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return ParsePrice(num.String())
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return ParsePrice(str)
	}

	return 0, &PriceError{Message: msgPriceInvalid}
}

func (p Price) String() string {
	sign := ""
	cents := int64(p)
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Price) UnmarshalJSON(data []byte) error {
	parsed, err := parsePriceJSON(data)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
