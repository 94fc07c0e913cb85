package entities

import (
	"fmt"
	"sort"
	"strings"
)

// Feature is an optional host capability a contract may require.
type Feature string

const (
	// FeatureIterator enables the storage range-scan imports.
	FeatureIterator Feature = "iterator"
	// FeatureStaking enables staking messages and queries.
	FeatureStaking Feature = "staking"
	// FeatureStargate enables raw protobuf messages/queries and base IBC.
	FeatureStargate Feature = "stargate"
	// FeatureIBC3 enables the v3 IBC entrypoint types. Implies stargate.
	FeatureIBC3 Feature = "ibc3"
	// FeatureCosmwasm11 enables the supply query added in host runtime 1.1.
	FeatureCosmwasm11 Feature = "cosmwasm_1_1"
	// FeatureRandom enables the per-call randomness import and the block
	// beacon field in Env.
	FeatureRandom Feature = "random"
	// FeatureAbort enables the guest-initiated abort import.
	FeatureAbort Feature = "abort"
	// FeatureBacktraces attaches host backtraces to errors. Diagnostic
	// only; off in production.
	FeatureBacktraces Feature = "backtraces"
)

// Features is an enabled capability set.
type Features map[Feature]struct{}

// NewFeatures builds a set from the given features, applying implications
// (ibc3 implies stargate).
func NewFeatures(features ...Feature) (Features, error) {
	fs := make(Features, len(features))
	for _, f := range features {
		switch f {
		case FeatureIterator, FeatureStaking, FeatureStargate, FeatureIBC3,
			FeatureCosmwasm11, FeatureRandom, FeatureAbort, FeatureBacktraces:
			fs[f] = struct{}{}
		default:
			return nil, fmt.Errorf("unknown feature %q", f)
		}
	}
	if fs.Has(FeatureIBC3) {
		fs[FeatureStargate] = struct{}{}
	}
	return fs, nil
}

// Has reports whether the feature is enabled.
func (fs Features) Has(f Feature) bool {
	_, ok := fs[f]
	return ok
}

// List returns the enabled features in sorted order.
func (fs Features) List() []Feature {
	names := make([]Feature, 0, len(fs))
	for f := range fs {
		names = append(names, f)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// String renders the set as a sorted comma-separated list.
func (fs Features) String() string {
	names := make([]string, 0, len(fs))
	for f := range fs {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
