package repository

import (
	"encoding/json"
	"strings"

	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/domain/types"
)

func encodeResult(r model.MatchResult) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func decodeResult(data []byte, resource string) (model.MatchResult, error) {
	var r model.MatchResult
	if err := json.Unmarshal(data, &r); err != nil {
		return model.MatchResult{}, &model.CorruptResultError{Resource: resource, Err: err}
	}
	r = r.Normalized()
	if err := r.Validate(); err != nil {
		return model.MatchResult{}, &model.CorruptResultError{Resource: resource, Err: err}
	}
	return r, nil
}

// parseKeyName splits "a_vs_b" back into a key.
func parseKeyName(scope, name string) (types.PairKey, bool) {
	a, b, ok := strings.Cut(name, "_vs_")
	if !ok || a == "" || b == "" {
		return types.PairKey{}, false
	}
	return types.NewPairKey(scope, a, b), true
}
