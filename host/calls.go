package host

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/errors"
	"github.com/kromsten/cosmwasm/domain/ports"
	"github.com/kromsten/cosmwasm/hostfuncs"
	hostwazero "github.com/kromsten/cosmwasm/infrastructure/wazero"
	"github.com/kromsten/cosmwasm/internal/metering"
	"github.com/kromsten/cosmwasm/log"
)

// Instantiate runs the instantiate entrypoint of stored code.
func (vm *VM) Instantiate(ctx context.Context, checksum entities.Checksum, env entities.Env, info entities.MessageInfo, msg []byte, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[entities.Response], uint64, error) {
	return call[entities.Response](vm, ctx, checksum, "instantiate", env, &info, msg, store, querier, gasLimit)
}

// Execute runs the execute entrypoint.
func (vm *VM) Execute(ctx context.Context, checksum entities.Checksum, env entities.Env, info entities.MessageInfo, msg []byte, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[entities.Response], uint64, error) {
	return call[entities.Response](vm, ctx, checksum, "execute", env, &info, msg, store, querier, gasLimit)
}

// Migrate runs the migrate entrypoint. No MessageInfo: migrations are
// authorized by the chain, not by a sender.
func (vm *VM) Migrate(ctx context.Context, checksum entities.Checksum, env entities.Env, msg []byte, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[entities.Response], uint64, error) {
	return call[entities.Response](vm, ctx, checksum, "migrate", env, nil, msg, store, querier, gasLimit)
}

// Sudo runs the sudo entrypoint, reserved for privileged chain modules.
func (vm *VM) Sudo(ctx context.Context, checksum entities.Checksum, env entities.Env, msg []byte, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[entities.Response], uint64, error) {
	return call[entities.Response](vm, ctx, checksum, "sudo", env, nil, msg, store, querier, gasLimit)
}

// Reply delivers a submessage result back to the contract.
func (vm *VM) Reply(ctx context.Context, checksum entities.Checksum, env entities.Env, reply entities.Reply, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[entities.Response], uint64, error) {
	msg, err := json.Marshal(reply)
	if err != nil {
		return nil, 0, errors.Serialize("reply", err)
	}
	return call[entities.Response](vm, ctx, checksum, "reply", env, nil, msg, store, querier, gasLimit)
}

// Query runs the query entrypoint against a read-only store.
func (vm *VM) Query(ctx context.Context, checksum entities.Checksum, env entities.Env, msg []byte, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[entities.Binary], uint64, error) {
	return call[entities.Binary](vm, ctx, checksum, "query", env, nil, msg, store, querier, gasLimit)
}

// IBCChannelOpen runs the channel handshake open handler.
func (vm *VM) IBCChannelOpen(ctx context.Context, checksum entities.Checksum, env entities.Env, msg entities.IBCChannelOpenMsg, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[entities.IBC3ChannelOpenResponse], uint64, error) {
	return callValue[entities.IBC3ChannelOpenResponse](vm, ctx, checksum, "ibc_channel_open", env, msg, store, querier, gasLimit)
}

// IBCChannelConnect runs the channel handshake ack/confirm handler.
func (vm *VM) IBCChannelConnect(ctx context.Context, checksum entities.Checksum, env entities.Env, msg entities.IBCChannelConnectMsg, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[entities.IBCBasicResponse], uint64, error) {
	return callValue[entities.IBCBasicResponse](vm, ctx, checksum, "ibc_channel_connect", env, msg, store, querier, gasLimit)
}

// IBCChannelClose runs the channel close handler.
func (vm *VM) IBCChannelClose(ctx context.Context, checksum entities.Checksum, env entities.Env, msg entities.IBCChannelCloseMsg, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[entities.IBCBasicResponse], uint64, error) {
	return callValue[entities.IBCBasicResponse](vm, ctx, checksum, "ibc_channel_close", env, msg, store, querier, gasLimit)
}

// IBCPacketReceive delivers an incoming packet.
func (vm *VM) IBCPacketReceive(ctx context.Context, checksum entities.Checksum, env entities.Env, msg entities.IBCPacketReceiveMsg, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[entities.IBCReceiveResponse], uint64, error) {
	return callValue[entities.IBCReceiveResponse](vm, ctx, checksum, "ibc_packet_receive", env, msg, store, querier, gasLimit)
}

// IBCPacketAck delivers the acknowledgement of an outgoing packet.
func (vm *VM) IBCPacketAck(ctx context.Context, checksum entities.Checksum, env entities.Env, msg entities.IBCPacketAckMsg, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[entities.IBCBasicResponse], uint64, error) {
	return callValue[entities.IBCBasicResponse](vm, ctx, checksum, "ibc_packet_ack", env, msg, store, querier, gasLimit)
}

// IBCPacketTimeout reports an outgoing packet that will never arrive.
func (vm *VM) IBCPacketTimeout(ctx context.Context, checksum entities.Checksum, env entities.Env, msg entities.IBCPacketTimeoutMsg, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[entities.IBCBasicResponse], uint64, error) {
	return callValue[entities.IBCBasicResponse](vm, ctx, checksum, "ibc_packet_timeout", env, msg, store, querier, gasLimit)
}

// callValue marshals a typed entrypoint message before dispatching.
func callValue[T any](vm *VM, ctx context.Context, checksum entities.Checksum, name string, env entities.Env, msg any, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[T], uint64, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, 0, errors.Serialize(name+" message", err)
	}
	return call[T](vm, ctx, checksum, name, env, nil, raw, store, querier, gasLimit)
}

func call[T any](vm *VM, ctx context.Context, checksum entities.Checksum, name string, env entities.Env, info *entities.MessageInfo, msg []byte, store ports.Storage, querier ports.Querier, gasLimit uint64) (*entities.ContractResult[T], uint64, error) {
	data, gasUsed, err := vm.callEntrypoint(ctx, checksum, name, env, info, msg, store, querier, gasLimit)
	if err != nil {
		return nil, gasUsed, err
	}
	var result entities.ContractResult[T]
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, gasUsed, errors.Parse(name+" result", err)
	}
	if result.Ok != nil {
		if carrier, ok := any(*result.Ok).(interface{ SubMessages() []entities.SubMsg }); ok {
			if err := vm.checkMessages(carrier.SubMessages()); err != nil {
				return nil, gasUsed, err
			}
		}
	}
	return &result, gasUsed, nil
}

// checkMessages rejects outbound message variants that need a feature this
// host does not have enabled.
func (vm *VM) checkMessages(msgs []entities.SubMsg) error {
	for _, sub := range msgs {
		if feature, gated := sub.Msg.RequiredFeature(); gated && !vm.features.Has(feature) {
			return &errors.FeatureError{Feature: string(feature), Subject: "contract message"}
		}
	}
	return nil
}

// callEntrypoint instantiates a fresh module, wires the invocation
// environment into the context and runs one guest export.
func (vm *VM) callEntrypoint(ctx context.Context, checksum entities.Checksum, name string, env entities.Env, info *entities.MessageInfo, msg []byte, store ports.Storage, querier ports.Querier, gasLimit uint64) ([]byte, uint64, error) {
	entry, err := vm.cache.get(checksum)
	if err != nil {
		return nil, 0, err
	}

	meter := hostfuncs.NewGasMeter(gasLimit)
	if err := meter.ConsumeGas(vm.costs.EntrypointFlat, "entrypoint"); err != nil {
		return nil, meter.GasConsumed(), err
	}

	if vm.features.Has(entities.FeatureRandom) && vm.random != nil && env.Block.Random == nil {
		entropy, err := vm.random.Random(env.Block.Height, env.Contract.Address)
		if err != nil {
			return nil, meter.GasConsumed(), fmt.Errorf("derive block entropy: %w", err)
		}
		random := entities.Binary(entropy)
		env.Block.Random = &random
	}
	if env.Contract.CodeHash == "" {
		env.Contract.CodeHash = checksum.String()
	}

	henv := hostfuncs.NewEnv(store, vm.api, querier, meter,
		hostfuncs.WithFeatures(vm.features),
		hostfuncs.WithGasCosts(vm.costs),
		hostfuncs.WithLimits(vm.limits),
		hostfuncs.WithLogger(vm.logger),
		hostfuncs.WithRandomSource(vm.random),
		hostfuncs.WithInvocation(env.Contract.Address, env.Block.Height),
	)
	defer henv.Close()
	ctx = hostfuncs.WithEnv(ctx, henv)
	ctx = log.WithInvocation(ctx, env.Contract.Address, env.Block.Height)

	// fresh anonymous instance per call, no start functions
	module, err := vm.runtime.InstantiateModule(ctx, entry.compiled,
		wazero.NewModuleConfig().WithName("").WithStartFunctions())
	if err != nil {
		return nil, meter.GasConsumed(), fmt.Errorf("instantiate contract: %w", err)
	}
	defer module.Close(ctx)

	fn := module.ExportedFunction(name)
	if fn == nil {
		return nil, meter.GasConsumed(), errors.Generic("contract has no %q entrypoint", name)
	}

	gas, ok := module.ExportedGlobal(metering.GasGlobal).(api.MutableGlobal)
	if !ok {
		return nil, meter.GasConsumed(), errors.Generic("contract misses the gas counter")
	}
	opGas := meter.Remaining()
	gas.Set(opGas)

	// settleOps moves the instruction gas the guest burned since the last
	// settlement into the meter.
	settleOps := func() error {
		remaining := gas.Get()
		used := opGas - remaining
		opGas = remaining
		if used == 0 {
			return nil
		}
		return meter.ConsumeGas(used, "wasm ops")
	}
	// fail settles first: a drained counter means the injected gas check
	// tripped, and that must surface as gas exhaustion rather than as the
	// trap it caused.
	fail := func(err error) ([]byte, uint64, error) {
		drained := gas.Get() == 0
		if serr := settleOps(); serr != nil {
			return nil, meter.GasConsumed(), serr
		}
		if drained {
			if serr := meter.ConsumeGas(1, "wasm ops"); serr != nil {
				return nil, meter.GasConsumed(), serr
			}
		}
		return nil, meter.GasConsumed(), err
	}

	args := make([]uint64, 0, 3)
	envJSON, err := json.Marshal(env)
	if err != nil {
		return nil, meter.GasConsumed(), errors.Serialize("env", err)
	}
	envPtr, err := hostwazero.WriteInput(ctx, module, envJSON)
	if err != nil {
		return fail(err)
	}
	args = append(args, uint64(envPtr))
	if info != nil {
		infoJSON, err := json.Marshal(info)
		if err != nil {
			return nil, meter.GasConsumed(), errors.Serialize("info", err)
		}
		ptr, err := hostwazero.WriteInput(ctx, module, infoJSON)
		if err != nil {
			return fail(err)
		}
		args = append(args, uint64(ptr))
	}
	msgPtr, err := hostwazero.WriteInput(ctx, module, msg)
	if err != nil {
		return fail(err)
	}
	args = append(args, uint64(msgPtr))

	results, err := callGuest(ctx, fn, args...)
	if err != nil {
		return fail(guestError(name, err))
	}
	if err := settleOps(); err != nil {
		return nil, meter.GasConsumed(), err
	}
	if len(results) != 1 {
		return nil, meter.GasConsumed(), errors.Generic("%s returned %d results, want 1", name, len(results))
	}

	data, err := hostwazero.ReadResult(module, uint32(results[0]), vm.limits.MaxResultLength)
	if err != nil {
		return nil, meter.GasConsumed(), fmt.Errorf("read %s result: %w", name, err)
	}
	return data, meter.GasConsumed(), nil
}

// callGuest runs a guest export, converting host import panics back into
// errors at the call boundary.
func callGuest(ctx context.Context, fn api.Function, params ...uint64) (results []uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = errors.Generic("guest call panic: %v", r)
		}
	}()
	return fn.Call(ctx, params...)
}

// guestError maps a failed guest call to the error the embedder should
// see: gas exhaustion and guest aborts keep their types.
func guestError(name string, err error) error {
	var outOfGas *errors.OutOfGasError
	if stdErrors.As(err, &outOfGas) {
		return outOfGas
	}
	var abortErr *errors.AbortError
	if stdErrors.As(err, &abortErr) {
		return abortErr
	}
	return fmt.Errorf("call %s: %w", name, err)
}
