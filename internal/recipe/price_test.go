package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want Price
		msg  string
	}{
		{in: "5", want: 500},
		{in: "5.00", want: 500},
		{in: "5.5", want: 550},
		{in: "0.05", want: 5},
		{in: ".5", want: 50},
		{in: "999.99", want: 99999},
		{in: "-1.25", want: -125},
		{in: " 12.30 ", want: 1230},
		{in: "0012.30", want: 1230},
		{in: "1234.56", msg: msgPriceDigits},
		{in: "1234.5", msg: msgPriceWholeDigits},
		{in: "5.001", msg: msgPriceDecimalPlaces},
		{in: "1000", msg: msgPriceWholeDigits},
		{in: "abc", msg: msgPriceInvalid},
		{in: "", msg: msgPriceInvalid},
		{in: "1e3", msg: msgPriceInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.msg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.msg, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrice_String(t *testing.T) {
	assert.Equal(t, "5.00", Price(500).String())
	assert.Equal(t, "0.05", Price(5).String())
	assert.Equal(t, "-1.25", Price(-125).String())
}

func TestPrice_JSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Price Price `json:"price"`
	}{Price: 550})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"5.50"}`, string(out))

	var fromNumber, fromString Price
	require.NoError(t, json.Unmarshal([]byte(`5.5`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"5.50"`), &fromString))
	assert.Equal(t, fromNumber, fromString)

	var bad Price
	assert.Error(t, json.Unmarshal([]byte(`"five"`), &bad))
}
