package hostfuncs_test

import (
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/errors"
	"github.com/kromsten/cosmwasm/hostfuncs"
	"github.com/kromsten/cosmwasm/infrastructure/querier"
	"github.com/kromsten/cosmwasm/infrastructure/storage"
	"github.com/kromsten/cosmwasm/infrastructure/wasmapi"
)

const testGasLimit = 10_000_000

func allFeatures(t *testing.T) entities.Features {
	t.Helper()
	fs, err := entities.NewFeatures(
		entities.FeatureIterator,
		entities.FeatureStaking,
		entities.FeatureStargate,
		entities.FeatureCosmwasm11,
		entities.FeatureAbort,
		entities.FeatureRandom,
	)
	require.NoError(t, err)
	return fs
}

func newTestEnv(t *testing.T, opts ...hostfuncs.EnvOption) *hostfuncs.Env {
	t.Helper()
	base := []hostfuncs.EnvOption{hostfuncs.WithFeatures(allFeatures(t))}
	return hostfuncs.NewEnv(
		storage.NewMemStore(),
		wasmapi.New(),
		querier.New(),
		hostfuncs.NewGasMeter(testGasLimit),
		append(base, opts...)...,
	)
}

func TestDBReadWriteRemove(t *testing.T) {
	env := newTestEnv(t)

	v, err := env.DBRead([]byte("k"))
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, env.DBWrite([]byte("k"), []byte("v1")))
	v, err = env.DBRead([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))

	require.NoError(t, env.DBRemove([]byte("k")))
	v, err = env.DBRead([]byte("k"))
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Greater(t, env.GasMeter().GasConsumed(), uint64(0))
}

func TestDBWrite_Rejections(t *testing.T) {
	env := newTestEnv(t)

	err := env.DBWrite([]byte("k"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")

	err = env.DBWrite(nil, []byte("v"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key must not be empty")

	limits := hostfuncs.DefaultLimits()
	limits.MaxValueLength = 4
	small := newTestEnv(t, hostfuncs.WithLimits(limits))
	err = small.DBWrite([]byte("k"), []byte("five5"))
	var sle *errors.SizeLimitError
	require.True(t, stdErrors.As(err, &sle))
	assert.Equal(t, "storage value", sle.Subject)
}

func TestDBScanNext(t *testing.T) {
	env := newTestEnv(t)
	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}} {
		require.NoError(t, env.DBWrite([]byte(kv[0]), []byte(kv[1])))
	}

	id, err := env.DBScan(nil, nil, entities.Descending)
	require.NoError(t, err)
	require.NotZero(t, id)

	var keys []string
	for {
		rec, err := env.DBNext(id)
		require.NoError(t, err)
		if rec == nil {
			break
		}
		keys = append(keys, string(rec.Key))
	}
	assert.Equal(t, []string{"c", "b", "a"}, keys)

	// the handle is released at end of range
	_, err = env.DBNext(id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown iterator")
}

func TestDBScan_InvertedRangeIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.DBWrite([]byte("m"), []byte("1")))

	id, err := env.DBScan([]byte("z"), []byte("a"), entities.Ascending)
	require.NoError(t, err)
	rec, err := env.DBNext(id)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDBScan_FeatureGated(t *testing.T) {
	env := hostfuncs.NewEnv(
		storage.NewMemStore(),
		wasmapi.New(),
		querier.New(),
		hostfuncs.NewGasMeter(testGasLimit),
	)

	_, err := env.DBScan(nil, nil, entities.Ascending)
	var fe *errors.FeatureError
	require.True(t, stdErrors.As(err, &fe))
	assert.Equal(t, "iterator", fe.Feature)

	_, err = env.DBNext(1)
	require.True(t, stdErrors.As(err, &fe))
}

func TestDBScan_IteratorLimit(t *testing.T) {
	limits := hostfuncs.DefaultLimits()
	limits.MaxIterators = 2
	env := newTestEnv(t, hostfuncs.WithLimits(limits))

	_, err := env.DBScan(nil, nil, entities.Ascending)
	require.NoError(t, err)
	_, err = env.DBScan(nil, nil, entities.Ascending)
	require.NoError(t, err)
	_, err = env.DBScan(nil, nil, entities.Ascending)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many open iterators")

	// Close releases the handles
	require.NoError(t, env.Close())
	_, err = env.DBScan(nil, nil, entities.Ascending)
	require.NoError(t, err)
}

func TestAddrRoundTripThroughEnv(t *testing.T) {
	env := newTestEnv(t)

	api := wasmapi.New()
	human, err := api.HumanizeAddress(make([]byte, 20))
	require.NoError(t, err)

	errMsg, err := env.AddrValidate([]byte(human))
	require.NoError(t, err)
	assert.Empty(t, errMsg)

	canonical, errMsg, err := env.AddrCanonicalize([]byte(human))
	require.NoError(t, err)
	assert.Empty(t, errMsg)
	assert.Len(t, canonical, 20)

	back, errMsg, err := env.AddrHumanize(canonical)
	require.NoError(t, err)
	assert.Empty(t, errMsg)
	assert.Equal(t, human, back)
}

func TestAddr_ContractLevelErrors(t *testing.T) {
	env := newTestEnv(t)

	// garbage input is reported to the contract, not fatal
	errMsg, err := env.AddrValidate([]byte("not an address"))
	require.NoError(t, err)
	assert.NotEmpty(t, errMsg)

	_, errMsg, err = env.AddrCanonicalize([]byte("also garbage"))
	require.NoError(t, err)
	assert.NotEmpty(t, errMsg)

	_, errMsg, err = env.AddrHumanize([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.NotEmpty(t, errMsg)

	// oversized input is fatal: the vm refuses to read it
	long := make([]byte, entities.MaxHumanAddressLength+1)
	_, err = env.AddrValidate(long)
	var sle *errors.SizeLimitError
	require.True(t, stdErrors.As(err, &sle))
}

func TestQueryChain_OkAndGating(t *testing.T) {
	q := querier.New()
	q.SetBalance("cosmos1rich", entities.Coins{entities.NewCoin(9, "uatom")})

	env := hostfuncs.NewEnv(
		storage.NewMemStore(),
		wasmapi.New(),
		q,
		hostfuncs.NewGasMeter(testGasLimit),
		hostfuncs.WithFeatures(allFeatures(t)),
	)

	resp, err := env.QueryChain([]byte(`{"bank":{"balance":{"address":"cosmos1rich","denom":"uatom"}}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":{"amount":{"denom":"uatom","amount":"9"}}}`, string(resp))

	// malformed request is reported inside the envelope
	resp, err = env.QueryChain([]byte(`{not json`))
	require.NoError(t, err)
	assert.Contains(t, string(resp), `"invalid_request"`)
}

func TestQueryChain_FeatureGates(t *testing.T) {
	baseFeatures, err := entities.NewFeatures()
	require.NoError(t, err)
	env := hostfuncs.NewEnv(
		storage.NewMemStore(),
		wasmapi.New(),
		querier.New(),
		hostfuncs.NewGasMeter(testGasLimit),
		hostfuncs.WithFeatures(baseFeatures),
	)

	tests := []struct {
		name string
		req  string
		kind string
	}{
		{name: "staking gated", req: `{"staking":{"bonded_denom":{}}}`, kind: "staking"},
		{name: "stargate gated", req: `{"stargate":{"path":"/p","data":""}}`, kind: "stargate"},
		{name: "ibc gated", req: `{"ibc":{"port_id":{}}}`, kind: "ibc"},
		{name: "supply gated", req: `{"bank":{"supply":{"denom":"uatom"}}}`, kind: "bank supply"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := env.QueryChain([]byte(tc.req))
			require.NoError(t, err)
			assert.Contains(t, string(resp), `"unsupported_request"`)
			assert.Contains(t, string(resp), tc.kind)
		})
	}
}

func TestCrypto_ChargesGas(t *testing.T) {
	env := newTestEnv(t)
	before := env.GasMeter().GasConsumed()

	_, err := env.Ed25519Verify([]byte("m"), make([]byte, 64), make([]byte, 32))
	require.NoError(t, err)
	assert.Greater(t, env.GasMeter().GasConsumed(), before)
}

func TestOutOfGasPropagates(t *testing.T) {
	env := hostfuncs.NewEnv(
		storage.NewMemStore(),
		wasmapi.New(),
		querier.New(),
		hostfuncs.NewGasMeter(10),
		hostfuncs.WithFeatures(allFeatures(t)),
	)

	err := env.DBWrite([]byte("k"), []byte("v"))
	require.Error(t, err)
	assert.True(t, errors.IsOutOfGas(err))
}

func TestAbort(t *testing.T) {
	env := newTestEnv(t)

	err := env.Abort([]byte("integer overflow in contract"))
	abort, ok := errors.IsAbort(err)
	require.True(t, ok)
	assert.Equal(t, "integer overflow in contract", abort.Message)

	// without the feature the import is rejected
	plain, err := entities.NewFeatures()
	require.NoError(t, err)
	gated := newTestEnv(t, hostfuncs.WithFeatures(plain))
	err = gated.Abort([]byte("x"))
	var fe *errors.FeatureError
	require.True(t, stdErrors.As(err, &fe))
}

func TestCheckGasAndEvaporate(t *testing.T) {
	env := newTestEnv(t)

	used, err := env.CheckGas()
	require.NoError(t, err)
	assert.Zero(t, used)

	require.NoError(t, env.GasEvaporate(5_000))
	used, err = env.CheckGas()
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000), used)
}

type fixedBeacon struct{}

func (fixedBeacon) Random(height uint64, contract entities.Addr) ([]byte, error) {
	out := make([]byte, 32)
	out[0] = byte(height)
	return out, nil
}

func TestRandom(t *testing.T) {
	env := newTestEnv(t,
		hostfuncs.WithRandomSource(fixedBeacon{}),
		hostfuncs.WithInvocation("cosmos1c", 7),
	)

	entropy, err := env.Random()
	require.NoError(t, err)
	require.Len(t, entropy, 32)
	assert.Equal(t, byte(7), entropy[0])

	// feature off
	plain, err := entities.NewFeatures()
	require.NoError(t, err)
	gated := newTestEnv(t, hostfuncs.WithFeatures(plain))
	_, err = gated.Random()
	var fe *errors.FeatureError
	require.True(t, stdErrors.As(err, &fe))

	// feature on but no source wired
	unwired := newTestEnv(t)
	_, err = unwired.Random()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no random source")
}
