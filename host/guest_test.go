package host_test

import (
	"context"
	"encoding/binary"
	"encoding/json"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/errors"
	"github.com/kromsten/cosmwasm/host"
	"github.com/kromsten/cosmwasm/hostfuncs"
	"github.com/kromsten/cosmwasm/infrastructure/querier"
	"github.com/kromsten/cosmwasm/infrastructure/storage"
)

// The guest contract below is assembled by hand, instruction by
// instruction. It implements the full host interface of a real contract:
// a linear memory, a bump allocator backing the allocate/deallocate hooks,
// and entrypoints that return pre-baked results from data segments.
//
//	instantiate(env, info, msg) -> staking delegate response
//	query(env, msg)             -> debug(msg) on the host, then static data
//	execute(env, info, msg)     -> infinite loop, never returns

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func wasmSection(id byte, payload []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint64(len(payload)))...)
	return append(out, payload...)
}

func wasmVec(entries ...[]byte) []byte {
	out := uleb(uint64(len(entries)))
	for _, e := range entries {
		out = append(out, e...)
	}
	return out
}

func wasmExport(name string, kind byte, index uint64) []byte {
	out := uleb(uint64(len(name)))
	out = append(out, name...)
	out = append(out, kind)
	return append(out, uleb(index)...)
}

func wasmBody(code []byte) []byte {
	return append(uleb(uint64(len(code))), code...)
}

// regionBlob packs a Region struct followed by its payload and returns the
// bytes plus the absolute pointer of the Region.
func regionBlob(base uint32, payload []byte) ([]byte, uint32) {
	out := make([]byte, 12, 12+len(payload))
	binary.LittleEndian.PutUint32(out[0:], base+12)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[8:], uint32(len(payload)))
	return append(out, payload...), base
}

func guestContract(t *testing.T, instantiateResult, queryResult []byte) []byte {
	t.Helper()

	const dataBase = 4
	instBlob, instPtr := regionBlob(dataBase, instantiateResult)
	queryBlob, queryPtr := regionBlob(dataBase+uint32(len(instBlob)), queryResult)
	data := append(append([]byte{}, instBlob...), queryBlob...)
	require.Less(t, len(data), 2048-dataBase, "static data would collide with the allocator arena")

	module := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	module = append(module, wasmSection(1, wasmVec( // types
		[]byte{0x60, 0x01, 0x7F, 0x01, 0x7F},             // (i32) -> i32
		[]byte{0x60, 0x01, 0x7F, 0x00},                   // (i32) -> ()
		[]byte{0x60, 0x02, 0x7F, 0x7F, 0x01, 0x7F},       // (i32, i32) -> i32
		[]byte{0x60, 0x03, 0x7F, 0x7F, 0x7F, 0x01, 0x7F}, // (i32, i32, i32) -> i32
	))...)
	module = append(module, wasmSection(2, wasmVec( // import env.debug
		append(append([]byte{0x03}, "env"...), append(append([]byte{0x05}, "debug"...), 0x00, 0x01)...),
	))...)
	module = append(module, wasmSection(3, wasmVec( // function type indices
		[]byte{0x00}, []byte{0x01}, []byte{0x02}, []byte{0x03}, []byte{0x03},
	))...)
	module = append(module, wasmSection(5, wasmVec([]byte{0x00, 0x01}))...) // one memory page
	// allocator head, starts past the data segments
	module = append(module, wasmSection(6, wasmVec(
		append(append([]byte{0x7F, 0x01, 0x41}, sleb(2048)...), 0x0B),
	))...)
	module = append(module, wasmSection(7, wasmVec(
		wasmExport("memory", 0x02, 0),
		wasmExport("allocate", 0x00, 1),
		wasmExport("deallocate", 0x00, 2),
		wasmExport("query", 0x00, 3),
		wasmExport("instantiate", 0x00, 4),
		wasmExport("execute", 0x00, 5),
	))...)

	// allocate(size): carve size+12 bytes off the arena, fill in the Region
	// header {offset, capacity, length} and return its pointer
	allocate := []byte{
		0x01, 0x01, 0x7F, // one local i32
		0x23, 0x00, // global.get $head
		0x21, 0x01, // local.set $r
		0x20, 0x01, // local.get $r
		0x20, 0x01, 0x41, 0x0C, 0x6A, // $r + 12
		0x36, 0x02, 0x00, // region.offset = $r + 12
		0x20, 0x01, 0x20, 0x00, // $r, size
		0x36, 0x02, 0x04, // region.capacity = size
		0x20, 0x01, 0x41, 0x00, // $r, 0
		0x36, 0x02, 0x08, // region.length = 0
		0x20, 0x01, 0x41, 0x0C, 0x6A, 0x20, 0x00, 0x6A, // $r + 12 + size
		0x24, 0x00, // global.set $head
		0x20, 0x01, // return $r
		0x0B,
	}
	deallocate := []byte{0x00, 0x0B} // bump allocators never free
	query := append(append([]byte{
		0x00,       // no locals
		0x20, 0x01, // local.get $msg
		0x10, 0x00, // call debug
		0x41}, sleb(int64(queryPtr))...), 0x0B)
	instantiate := append(append([]byte{0x00, 0x41}, sleb(int64(instPtr))...), 0x0B)
	execute := []byte{
		0x00,
		0x03, 0x40, // loop
		0x0C, 0x00, // br 0
		0x0B, // end loop
		0x00, // unreachable
		0x0B,
	}
	module = append(module, wasmSection(10, wasmVec(
		wasmBody(allocate), wasmBody(deallocate), wasmBody(query),
		wasmBody(instantiate), wasmBody(execute),
	))...)
	segment := append([]byte{0x00, 0x41}, sleb(dataBase)...) // active, offset expr
	segment = append(segment, 0x0B)
	segment = append(segment, uleb(uint64(len(data)))...)
	segment = append(segment, data...)
	module = append(module, wasmSection(11, wasmVec(segment))...)
	return module
}

func guestFixtures(t *testing.T) (wasm []byte, env entities.Env, info entities.MessageInfo) {
	t.Helper()
	response := entities.Response{
		Messages: []entities.SubMsg{{
			ID: 1,
			Msg: entities.CosmosMsg{Staking: &entities.StakingMsg{
				Delegate: &entities.DelegateMsg{
					Validator: "cosmosvaloper1xyz",
					Amount:    entities.NewCoin(700, "ustake"),
				},
			}},
			ReplyOn: entities.ReplyNever,
		}},
		Attributes: []entities.Attribute{},
		Events:     []entities.Event{},
	}
	instJSON, err := json.Marshal(entities.ContractResult[entities.Response]{Ok: &response})
	require.NoError(t, err)
	payload := entities.Binary("queried")
	queryJSON, err := json.Marshal(entities.ContractResult[entities.Binary]{Ok: &payload})
	require.NoError(t, err)

	env = entities.Env{
		Block:    entities.BlockInfo{Height: 42, Time: "1700000000000000000", ChainID: "testing"},
		Contract: entities.ContractInfo{Address: "cosmos1contract"},
	}
	info = entities.MessageInfo{Sender: "cosmos1sender", Funds: entities.Coins{}}
	return guestContract(t, instJSON, queryJSON), env, info
}

func TestGuestCall_Instantiate(t *testing.T) {
	vm := newVM(t)
	wasm, env, info := guestFixtures(t)
	checksum, err := vm.StoreCode(context.Background(), wasm)
	require.NoError(t, err)

	res, gasUsed, err := vm.Instantiate(context.Background(), checksum, env, info,
		[]byte(`{}`), storage.NewMemStore(), querier.New(), 5_000_000)
	require.NoError(t, err)
	require.NotNil(t, res.Ok)
	require.Len(t, res.Ok.Messages, 1)
	delegate := res.Ok.Messages[0].Msg.Staking.Delegate
	require.NotNil(t, delegate)
	assert.Equal(t, "cosmosvaloper1xyz", delegate.Validator)
	assert.Greater(t, gasUsed, hostfuncs.DefaultGasCosts().EntrypointFlat,
		"guest instructions must cost gas on top of the entrypoint flat fee")
}

func TestGuestCall_QueryCrossesHostBoundary(t *testing.T) {
	vm := newVM(t)
	wasm, env, _ := guestFixtures(t)
	checksum, err := vm.StoreCode(context.Background(), wasm)
	require.NoError(t, err)

	res, gasUsed, err := vm.Query(context.Background(), checksum, env,
		[]byte(`{"config":{}}`), storage.NewMemStore(), querier.New(), 5_000_000)
	require.NoError(t, err)
	require.NotNil(t, res.Ok)
	assert.Equal(t, entities.Binary("queried"), *res.Ok)
	// the entrypoint routed its msg through the debug import
	costs := hostfuncs.DefaultGasCosts()
	assert.Greater(t, gasUsed, costs.EntrypointFlat+costs.DebugFlat)
}

func TestGuestCall_OutboundMessageNeedsFeature(t *testing.T) {
	features, err := entities.NewFeatures(entities.FeatureIterator, entities.FeatureAbort)
	require.NoError(t, err)
	vm := newVM(t, host.WithFeatures(features))
	wasm, env, info := guestFixtures(t)
	checksum, err := vm.StoreCode(context.Background(), wasm)
	require.NoError(t, err)

	_, _, err = vm.Instantiate(context.Background(), checksum, env, info,
		[]byte(`{}`), storage.NewMemStore(), querier.New(), 5_000_000)
	require.Error(t, err)
	var featErr *errors.FeatureError
	require.True(t, stdErrors.As(err, &featErr))
	assert.Equal(t, string(entities.FeatureStaking), featErr.Feature)
}

func TestGuestCall_ComputeLoopExhaustsGas(t *testing.T) {
	vm := newVM(t)
	wasm, env, info := guestFixtures(t)
	checksum, err := vm.StoreCode(context.Background(), wasm)
	require.NoError(t, err)

	const gasLimit = 200_000
	_, gasUsed, err := vm.Execute(context.Background(), checksum, env, info,
		[]byte(`{}`), storage.NewMemStore(), querier.New(), gasLimit)
	require.Error(t, err)
	assert.True(t, errors.IsOutOfGas(err), "got %v", err)
	assert.Equal(t, uint64(gasLimit), gasUsed)
}
