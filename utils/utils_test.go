package utils

import (
	"math/big"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHash = "0xAbCdEf0123456789abcdef0123456789ABCDEF0123456789abcdef0123456789"

func TestNormalizeTxHash(t *testing.T) {
	got, err := NormalizeTxHash(sampleHash)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(sampleHash), got)

	got, err = NormalizeTxHash(strings.TrimPrefix(sampleHash, "0x"))
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(sampleHash), got)

	got, err = NormalizeTxHash("  " + sampleHash + "\n")
	require.NoError(t, err)
	assert.Len(t, got, 66)
}

func TestNormalizeTxHash_Malformed(t *testing.T) {
	cases := []string{
		"",
		"0x",
		"0x1234",
		sampleHash + "00",
		"0xzz" + strings.Repeat("0", 62),
		"not-a-hash",
	}
	for _, c := range cases {
		_, err := NormalizeTxHash(c)
		assert.Error(t, err, "input %q", c)
	}
}

func TestValidatePrice(t *testing.T) {
	p, err := ValidatePrice("0.02")
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.RequireFromString("0.02")))

	_, err = ValidatePrice("0")
	assert.Error(t, err)
	_, err = ValidatePrice("-1")
	assert.Error(t, err)
	_, err = ValidatePrice("0.015")
	assert.Error(t, err)
	_, err = ValidatePrice("abc")
	assert.Error(t, err)
}

func TestTokenAmountConversion(t *testing.T) {
	amount := FormatTokenAmount(big.NewInt(20000), 6)
	assert.Equal(t, "0.02", amount.String())
	assert.True(t, amount.Equal(decimal.RequireFromString("0.02")))

	assert.Equal(t, "0.000005", FormatTokenAmount(big.NewInt(5), 6).String())
	assert.Equal(t, "5", FormatTokenAmount(big.NewInt(5), 0).String())
	assert.True(t, FormatTokenAmount(nil, 6).IsZero())
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2), ToMinorUnits(decimal.RequireFromString("0.02")))
	assert.Equal(t, int64(105), ToMinorUnits(decimal.RequireFromString("1.05")))
	assert.Equal(t, "0.07", FormatMinorUnits(7))
	assert.Equal(t, "0.00", FormatMinorUnits(0))
	assert.Equal(t, "12.30", FormatMinorUnits(1230))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(sampleHash)
	assert.Len(t, a, fingerprintBytes*2)
	assert.Equal(t, a, Fingerprint(strings.ToLower(sampleHash)))
	assert.NotEqual(t, a, Fingerprint("0x"+strings.Repeat("1", 64)))
	assert.NotContains(t, a, strings.ToLower(sampleHash)[2:12])
}
