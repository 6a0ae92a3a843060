// Package claims holds the model input row for claim scoring and the
// normalizer that builds it from loosely typed request payloads.
package claims

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"myclaim/internal/apperr"
)

// FieldOrder is the column order the scoring models were fit with.
var FieldOrder = []string{
	"age",
	"months_as_customer",
	"vehicle_age_years",
	"vehicle_make",
	"policy_expired_flag",
	"deductible_amount",
	"market_value",
	"damage_severity_score",
	"repair_amount",
	"at_fault_flag",
	"time_to_report_days",
	"claim_reported_to_police_flag",
	"license_type_missing_flag",
	"num_third_parties",
	"num_witnesses",
}

type Features struct {
	Age                       int     `json:"age"`
	MonthsAsCustomer          int     `json:"months_as_customer"`
	VehicleAgeYears           int     `json:"vehicle_age_years"`
	VehicleMake               string  `json:"vehicle_make"`
	PolicyExpiredFlag         int     `json:"policy_expired_flag"`
	DeductibleAmount          float64 `json:"deductible_amount"`
	MarketValue               float64 `json:"market_value"`
	DamageSeverityScore       float64 `json:"damage_severity_score"`
	RepairAmount              float64 `json:"repair_amount"`
	AtFaultFlag               int     `json:"at_fault_flag"`
	TimeToReportDays          int     `json:"time_to_report_days"`
	ClaimReportedToPoliceFlag int     `json:"claim_reported_to_police_flag"`
	LicenseTypeMissingFlag    int     `json:"license_type_missing_flag"`
	NumThirdParties           int     `json:"num_third_parties"`
	NumWitnesses              int     `json:"num_witnesses"`
}

// Row returns the values in FieldOrder.
func (f Features) Row() []any {
	return []any{
		f.Age,
		f.MonthsAsCustomer,
		f.VehicleAgeYears,
		f.VehicleMake,
		f.PolicyExpiredFlag,
		f.DeductibleAmount,
		f.MarketValue,
		f.DamageSeverityScore,
		f.RepairAmount,
		f.AtFaultFlag,
		f.TimeToReportDays,
		f.ClaimReportedToPoliceFlag,
		f.LicenseTypeMissingFlag,
		f.NumThirdParties,
		f.NumWitnesses,
	}
}

type kind int

const (
	count kind = iota
	flag
	amount
	unit
	text
)

type field struct {
	name string
	kind kind
	set  func(*Features, any)
}

var fields = []field{
	{"age", count, func(f *Features, v any) { f.Age = v.(int) }},
	{"months_as_customer", count, func(f *Features, v any) { f.MonthsAsCustomer = v.(int) }},
	{"vehicle_age_years", count, func(f *Features, v any) { f.VehicleAgeYears = v.(int) }},
	{"vehicle_make", text, func(f *Features, v any) { f.VehicleMake = v.(string) }},
	{"policy_expired_flag", flag, func(f *Features, v any) { f.PolicyExpiredFlag = v.(int) }},
	{"deductible_amount", amount, func(f *Features, v any) { f.DeductibleAmount = v.(float64) }},
	{"market_value", amount, func(f *Features, v any) { f.MarketValue = v.(float64) }},
	{"damage_severity_score", unit, func(f *Features, v any) { f.DamageSeverityScore = v.(float64) }},
	{"repair_amount", amount, func(f *Features, v any) { f.RepairAmount = v.(float64) }},
	{"at_fault_flag", flag, func(f *Features, v any) { f.AtFaultFlag = v.(int) }},
	{"time_to_report_days", count, func(f *Features, v any) { f.TimeToReportDays = v.(int) }},
	{"claim_reported_to_police_flag", flag, func(f *Features, v any) { f.ClaimReportedToPoliceFlag = v.(int) }},
	{"license_type_missing_flag", flag, func(f *Features, v any) { f.LicenseTypeMissingFlag = v.(int) }},
	{"num_third_parties", count, func(f *Features, v any) { f.NumThirdParties = v.(int) }},
	{"num_witnesses", count, func(f *Features, v any) { f.NumWitnesses = v.(int) }},
}

// Normalize coerces payload into Features. Keys outside FieldOrder are
// ignored. The returned error names the first offending field in FieldOrder.
func Normalize(payload map[string]any) (Features, error) {
	var out Features
	for _, fd := range fields {
		raw, ok := payload[fd.name]
		if !ok || raw == nil {
			return Features{}, apperr.Invalid(fd.name, "field required")
		}
		val, err := coerce(fd, raw)
		if err != nil {
			return Features{}, err
		}
		fd.set(&out, val)
	}
	return out, nil
}

// Validate applies the same range checks as Normalize to an already typed row.
func (f Features) Validate() error {
	row := f.Row()
	for i, fd := range fields {
		if _, err := coerce(fd, row[i]); err != nil {
			return err
		}
	}
	return nil
}

func coerce(fd field, raw any) (any, error) {
	switch fd.kind {
	case text:
		s, ok := raw.(string)
		if !ok {
			return nil, apperr.Invalid(fd.name, "must be a string")
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, apperr.Invalid(fd.name, "must not be empty")
		}
		return s, nil
	case count, flag:
		n, ok := toInt(raw)
		if !ok {
			return nil, apperr.Invalid(fd.name, "must be an integer")
		}
		if n < 0 {
			return nil, apperr.Invalid(fd.name, "must not be negative")
		}
		if fd.kind == flag && n > 1 {
			return nil, apperr.Invalid(fd.name, "must be 0 or 1")
		}
		return n, nil
	default:
		x, ok := toFloat(raw)
		if !ok {
			return nil, apperr.Invalid(fd.name, "must be a number")
		}
		if x < 0 {
			return nil, apperr.Invalid(fd.name, "must not be negative")
		}
		if fd.kind == unit && x > 1 {
			return nil, apperr.Invalid(fd.name, "must be between 0 and 1")
		}
		return x, nil
	}
}

func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	x, ok := toFloat(raw)
	if !ok || x != math.Trunc(x) || x > math.MaxInt32 || x < math.MinInt32 {
		return 0, false
	}
	return int(x), true
}

func toFloat(raw any) (float64, bool) {
	var x float64
	switch v := raw.(type) {
	case float64:
		x = v
	case float32:
		x = float64(v)
	case int:
		x = float64(v)
	case int64:
		x = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		x = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		x = f
	default:
		return 0, false
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x, true
}
