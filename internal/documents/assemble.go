package documents

import (
	"math"
	"strings"
	"time"

	"myclaim/internal/derive"
)

// Assemble adds derived fields to an extraction result. A derived field is
// only added when its source field was extracted.
func Assemble(kind Kind, result map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(result)+1)
	for k, v := range result {
		out[k] = v
	}
	switch kind.Name {
	case Identity.Name:
		if id, ok := icDigits(result["ic_number"]); ok {
			if age, ok := derive.AgeFromIC(id, now); ok {
				out["age"] = age
			}
		}
	case InsurancePolicy.Name:
		if vehicleMake, ok := result["vehicle_make"].(string); ok {
			out["market_value"] = derive.MarketValue(vehicleMake)
		}
	}
	return out
}

// icDigits renders an extracted IC number as its 12-digit string.
func icDigits(v any) (string, bool) {
	switch t := v.(type) {
	case int64:
		if t < 0 {
			return "", false
		}
		return derive.PadIC(t), true
	case float64:
		if t < 0 || t != math.Trunc(t) || t > math.MaxInt64 {
			return "", false
		}
		return derive.PadIC(int64(t)), true
	case string:
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			if r == '-' || r == ' ' {
				return -1
			}
			return 'x'
		}, t)
		if digits == "" || strings.ContainsRune(digits, 'x') {
			return "", false
		}
		for len(digits) < 12 {
			digits = "0" + digits
		}
		return digits, true
	default:
		return "", false
	}
}
