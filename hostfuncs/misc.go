package hostfuncs

import (
	"unicode/utf8"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/errors"
)

// Debug forwards a contract debug message to the host logger. Messages are
// truncated rather than rejected; debugging must not abort execution.
func (e *Env) Debug(message []byte) error {
	if err := e.gas.ConsumeGas(e.costs.DebugFlat, "debug"); err != nil {
		return err
	}
	if len(message) > e.limits.MaxDebugLength {
		message = message[:e.limits.MaxDebugLength]
	}
	text := string(message)
	if !utf8.ValidString(text) {
		text = string([]rune(text))
	}
	e.logger.Debug("contract debug",
		"contract", string(e.contract),
		"height", e.height,
		"message", text,
	)
	return nil
}

// Abort terminates the invocation with the guest's panic message. Requires
// the abort feature; without it the guest import is absent and a trapping
// contract fails with a plain trap instead.
func (e *Env) Abort(message []byte) error {
	if !e.features.Has(entities.FeatureAbort) {
		return &errors.FeatureError{Feature: string(entities.FeatureAbort), Subject: "abort"}
	}
	return &errors.AbortError{Message: string(message)}
}

// Random hands the contract its deterministic per-call entropy. Requires
// the random feature and a wired beacon.
func (e *Env) Random() ([]byte, error) {
	if !e.features.Has(entities.FeatureRandom) {
		return nil, &errors.FeatureError{Feature: string(entities.FeatureRandom), Subject: "random"}
	}
	if e.random == nil {
		return nil, errors.Generic("random feature enabled but no random source wired")
	}
	if err := e.gas.ConsumeGas(e.costs.RandomFlat, "random"); err != nil {
		return nil, err
	}
	return e.random.Random(e.height, e.contract)
}

// CheckGas reports gas consumed so far so contracts can pace their work.
func (e *Env) CheckGas() (uint64, error) {
	return e.gas.GasConsumed(), nil
}

// GasEvaporate burns the given amount of gas unconditionally. Contracts use
// this to flatten gas profiles that would otherwise leak information about
// private state.
func (e *Env) GasEvaporate(amount uint32) error {
	return e.gas.ConsumeGas(uint64(amount), "gas_evaporate")
}
