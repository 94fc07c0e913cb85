package entities

import (
	"fmt"
	"math/big"
)

// Coin is an amount of a single token denomination. The amount is a decimal
// string on the wire because it can exceed the range of a uint64.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// NewCoin builds a Coin from a uint64 amount.
func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: fmt.Sprintf("%d", amount)}
}

// AmountBig parses the amount as an arbitrary-precision integer.
func (c Coin) AmountBig() (*big.Int, error) {
	v, ok := new(big.Int).SetString(c.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid coin amount %q", c.Amount)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative coin amount %q", c.Amount)
	}
	return v, nil
}

func (c Coin) String() string {
	return c.Amount + c.Denom
}

// Coins is a set of Coin, at most one entry per denom.
type Coins []Coin

// Validate checks amounts parse and denoms are unique.
func (cs Coins) Validate() error {
	seen := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		if c.Denom == "" {
			return fmt.Errorf("empty coin denom")
		}
		if _, dup := seen[c.Denom]; dup {
			return fmt.Errorf("duplicate coin denom %q", c.Denom)
		}
		seen[c.Denom] = struct{}{}
		if _, err := c.AmountBig(); err != nil {
			return err
		}
	}
	return nil
}
