package wazero

import (
	"context"
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/errors"
	"github.com/kromsten/cosmwasm/hostfuncs"
	"github.com/kromsten/cosmwasm/internal/region"
	"github.com/kromsten/cosmwasm/internal/sections"
)

// Boundary limits of the signature imports. These bound what the host is
// willing to read out of guest memory, not what the algorithms accept;
// malformed-but-small inputs still come back as error codes.
const (
	maxHashLength      = 64
	maxSignatureLength = 64
	maxPubkeyLength    = 65
	maxMessageLength   = 128 * 1024
	maxBatchCount      = 256
)

// fatal aborts the guest call. Used for errors the contract must not be
// able to observe or swallow: gas exhaustion, broken regions, host bugs.
func fatal(err error) {
	if err != nil {
		panic(err)
	}
}

func dbRead(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	key := readRegion(mod.Memory(), uint32(stack[0]), env.Limits().MaxKeyLength)
	value, err := env.DBRead(key)
	fatal(err)
	if value == nil {
		stack[0] = 0
		return
	}
	stack[0] = uint64(writeToGuest(ctx, mod, value))
}

func dbWrite(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	key := readRegion(mod.Memory(), uint32(stack[0]), env.Limits().MaxKeyLength)
	value := readRegion(mod.Memory(), uint32(stack[1]), env.Limits().MaxValueLength)
	fatal(env.DBWrite(key, value))
}

func dbRemove(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	key := readRegion(mod.Memory(), uint32(stack[0]), env.Limits().MaxKeyLength)
	fatal(env.DBRemove(key))
}

func dbScan(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	start := readOptionalRegion(mod.Memory(), uint32(stack[0]), env.Limits().MaxKeyLength)
	end := readOptionalRegion(mod.Memory(), uint32(stack[1]), env.Limits().MaxKeyLength)
	order := entities.Order(uint32(stack[2]))
	id, err := env.DBScan(start, end, order)
	fatal(err)
	stack[0] = uint64(id)
}

func dbNext(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	record, err := env.DBNext(uint32(stack[0]))
	fatal(err)
	var key, value []byte
	if record != nil {
		key, value = record.Key, record.Value
	}
	// an empty key signals the end of the range
	encoded, err := sections.EncodePair(key, value)
	fatal(err)
	stack[0] = uint64(writeToGuest(ctx, mod, encoded))
}

func addrValidate(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	human := readRegion(mod.Memory(), uint32(stack[0]), entities.MaxHumanAddressLength)
	errMsg, err := env.AddrValidate(human)
	fatal(err)
	if errMsg == "" {
		stack[0] = 0
		return
	}
	stack[0] = uint64(writeToGuest(ctx, mod, []byte(errMsg)))
}

func addrCanonicalize(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	human := readRegion(mod.Memory(), uint32(stack[0]), entities.MaxHumanAddressLength)
	canonical, errMsg, err := env.AddrCanonicalize(human)
	fatal(err)
	if errMsg != "" {
		stack[0] = uint64(writeToGuest(ctx, mod, []byte(errMsg)))
		return
	}
	fatal(region.WriteData(mod.Memory(), uint32(stack[1]), canonical))
	stack[0] = 0
}

func addrHumanize(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	canonical := readRegion(mod.Memory(), uint32(stack[0]), entities.CanonicalAddressBufferLength)
	human, errMsg, err := env.AddrHumanize(canonical)
	fatal(err)
	if errMsg != "" {
		stack[0] = uint64(writeToGuest(ctx, mod, []byte(errMsg)))
		return
	}
	fatal(region.WriteData(mod.Memory(), uint32(stack[1]), []byte(human)))
	stack[0] = 0
}

// verifyCode folds a verify result into the numeric wire code. Gas
// exhaustion stays fatal.
func verifyCode(ok bool, err error) uint64 {
	if err != nil {
		if errors.IsOutOfGas(err) {
			panic(err)
		}
		return uint64(errors.VerifyCode(err))
	}
	if ok {
		return uint64(errors.CodeVerifySuccess)
	}
	return uint64(errors.CodeVerifyFailed)
}

func secp256k1Verify(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	hash := readRegion(mod.Memory(), uint32(stack[0]), maxHashLength)
	signature := readRegion(mod.Memory(), uint32(stack[1]), maxSignatureLength)
	pubkey := readRegion(mod.Memory(), uint32(stack[2]), maxPubkeyLength)
	ok, err := env.Secp256k1Verify(hash, signature, pubkey)
	stack[0] = verifyCode(ok, err)
}

func secp256k1RecoverPubkey(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	hash := readRegion(mod.Memory(), uint32(stack[0]), maxHashLength)
	signature := readRegion(mod.Memory(), uint32(stack[1]), maxSignatureLength)
	param := uint32(stack[2])
	if param > math.MaxUint8 {
		stack[0] = region.PackCodePtr(errors.CodeInvalidRecovery, 0)
		return
	}
	pubkey, err := env.Secp256k1RecoverPubkey(hash, signature, byte(param))
	if err != nil {
		if errors.IsOutOfGas(err) {
			panic(err)
		}
		stack[0] = region.PackCodePtr(errors.VerifyCode(err), 0)
		return
	}
	stack[0] = region.PackCodePtr(0, writeToGuest(ctx, mod, pubkey))
}

func secp256k1Sign(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	message := readRegion(mod.Memory(), uint32(stack[0]), maxMessageLength)
	privateKey := readRegion(mod.Memory(), uint32(stack[1]), maxHashLength)
	signature, err := env.Secp256k1Sign(message, privateKey)
	if err != nil {
		if errors.IsOutOfGas(err) {
			panic(err)
		}
		stack[0] = region.PackCodePtr(errors.SignCode(err), 0)
		return
	}
	stack[0] = region.PackCodePtr(0, writeToGuest(ctx, mod, signature))
}

func ed25519Verify(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	message := readRegion(mod.Memory(), uint32(stack[0]), maxMessageLength)
	signature := readRegion(mod.Memory(), uint32(stack[1]), maxSignatureLength)
	pubkey := readRegion(mod.Memory(), uint32(stack[2]), maxPubkeyLength)
	ok, err := env.Ed25519Verify(message, signature, pubkey)
	stack[0] = verifyCode(ok, err)
}

func ed25519BatchVerify(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	messages := decodeBatch(mod.Memory(), uint32(stack[0]), maxMessageLength)
	signatures := decodeBatch(mod.Memory(), uint32(stack[1]), maxSignatureLength)
	pubkeys := decodeBatch(mod.Memory(), uint32(stack[2]), maxPubkeyLength)
	ok, err := env.Ed25519BatchVerify(messages, signatures, pubkeys)
	stack[0] = verifyCode(ok, err)
}

// decodeBatch reads a sections-framed list of byte slices from a region.
func decodeBatch(mem region.Memory, ptr uint32, itemLimit int) [][]byte {
	blob := readRegion(mem, ptr, (itemLimit+4)*maxBatchCount)
	items, err := sections.DecodeAll(blob)
	fatal(err)
	if len(items) > maxBatchCount {
		fatal(errors.Generic("batch of %d items exceeds limit of %d", len(items), maxBatchCount))
	}
	return items
}

func ed25519Sign(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	message := readRegion(mod.Memory(), uint32(stack[0]), maxMessageLength)
	privateKey := readRegion(mod.Memory(), uint32(stack[1]), maxHashLength)
	signature, err := env.Ed25519Sign(message, privateKey)
	if err != nil {
		if errors.IsOutOfGas(err) {
			panic(err)
		}
		stack[0] = region.PackCodePtr(errors.SignCode(err), 0)
		return
	}
	stack[0] = region.PackCodePtr(0, writeToGuest(ctx, mod, signature))
}

func debug(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	message := readRegion(mod.Memory(), uint32(stack[0]), env.Limits().MaxDebugLength)
	fatal(env.Debug(message))
}

func queryChain(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	request := readRegion(mod.Memory(), uint32(stack[0]), env.Limits().MaxQueryLength)
	response, err := env.QueryChain(request)
	fatal(err)
	stack[0] = uint64(writeToGuest(ctx, mod, response))
}

func abort(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	message := readRegion(mod.Memory(), uint32(stack[0]), env.Limits().MaxDebugLength)
	// always terminates the call
	fatal(env.Abort(message))
}

func random(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	entropy, err := env.Random()
	fatal(err)
	stack[0] = uint64(writeToGuest(ctx, mod, entropy))
}

func checkGas(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	used, err := env.CheckGas()
	fatal(err)
	stack[0] = used
}

func gasEvaporate(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64) {
	fatal(env.GasEvaporate(uint32(stack[0])))
	stack[0] = 0
}
