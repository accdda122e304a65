package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// EncodeResponse serializes one survey answer. Scalars, lists, and mappings
// are all permitted; each answer is encoded independently.
func EncodeResponse(value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode survey response: %w", err)
	}
	return raw, nil
}

// Response decodes the stored answer into a usable value.
//
// When the decoded value is a mapping, keys are opportunistically coerced from
// their serialized string form to integers. Coercion is all-or-nothing: if any
// key fails to parse, the whole mapping keeps string keys. Mixed key types are
// not handled, and a failed coercion is tolerated silently rather than
// reported.
func (d SurveyDetail) Response() (any, error) {
	var value any
	if err := json.Unmarshal(d.Raw, &value); err != nil {
		return nil, fmt.Errorf("decode survey response %q: %w", d.QuestionID, err)
	}
	m, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	coerced := make(map[int]any, len(m))
	for k, v := range m {
		n, err := strconv.Atoi(k)
		if err != nil {
			return m, nil
		}
		coerced[n] = v
	}
	return coerced, nil
}
