package entities

import (
	"encoding/json"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kromsten/cosmwasm/domain/errors"
)

func TestBinary_JSON(t *testing.T) {
	data, err := json.Marshal(Binary("hello"))
	require.NoError(t, err)
	assert.Equal(t, `"aGVsbG8="`, string(data))

	var b Binary
	require.NoError(t, json.Unmarshal([]byte(`"aGVsbG8="`), &b))
	assert.Equal(t, Binary("hello"), b)
}

func TestBinary_RejectsInvalidBase64(t *testing.T) {
	var b Binary
	err := json.Unmarshal([]byte(`"not base64!!"`), &b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid base64")
}

func TestCoins_Validate(t *testing.T) {
	tests := []struct {
		name    string
		coins   Coins
		wantErr string
	}{
		{name: "empty set", coins: nil},
		{name: "single coin", coins: Coins{NewCoin(1, "uatom")}},
		{name: "huge amount", coins: Coins{{Denom: "uatom", Amount: "340282366920938463463374607431768211456"}}},
		{name: "duplicate denom", coins: Coins{NewCoin(1, "uatom"), NewCoin(2, "uatom")}, wantErr: "duplicate"},
		{name: "empty denom", coins: Coins{{Denom: "", Amount: "1"}}, wantErr: "empty coin denom"},
		{name: "garbage amount", coins: Coins{{Denom: "uatom", Amount: "12x"}}, wantErr: "invalid coin amount"},
		{name: "negative amount", coins: Coins{{Denom: "uatom", Amount: "-3"}}, wantErr: "negative"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.coins.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestFeatures(t *testing.T) {
	t.Run("ibc3 implies stargate", func(t *testing.T) {
		fs, err := NewFeatures(FeatureIBC3)
		require.NoError(t, err)
		assert.True(t, fs.Has(FeatureStargate))
		assert.Equal(t, "ibc3,stargate", fs.String())
	})

	t.Run("unknown feature rejected", func(t *testing.T) {
		_, err := NewFeatures(Feature("teleport"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown feature")
	})
}

func TestBinary_InvalidBase64IsTyped(t *testing.T) {
	var b Binary
	err := json.Unmarshal([]byte(`"not//valid!!"`), &b)
	require.Error(t, err)
	var invalid *errors.InvalidBase64Error
	assert.True(t, stdErrors.As(err, &invalid))
}
