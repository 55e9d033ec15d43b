package service

import (
	"math"
	"strings"

	"github.com/gridsight/meterhub/internal/domain"
)

// Vendors whose meters report per-phase apparent power that most schemas
// leave undeclared. Matched as a case-insensitive substring of the vendor name.
var apparentPowerVendors = []string{"iskra", "iskraemeco", "mt174"}

var apparentPhaseCodes = []string{"Aq1", "Aq2", "Aq3"}

const apparentSumCode = "AqSum"

// Project normalizes one raw reading into the ordered, unit-converted
// parameter list. With a non-empty allow-list only declared codes are emitted,
// in allow-list order; otherwise every field of the reading's static fallback
// table is emitted, null raw values as 0 with HasValue=false. The
// apparent-power augmentation then appends, for the matching vendor family,
// any of Aq1/Aq2/Aq3 plus their sum not already covered. Output is
// deterministic for identical inputs.
func Project(row domain.ReadingRow, allow []string, meta map[string]domain.ParamMeta, vendorName string) []domain.ParamValue {
	if row == nil {
		return nil
	}

	var out []domain.ParamValue
	emitted := map[string]bool{}

	if len(allow) > 0 {
		for _, code := range allow {
			raw, ok := row.Field(code)
			if !ok {
				continue
			}
			out = append(out, makeValue(code, raw, true, meta))
			emitted[strings.ToLower(code)] = true
		}
	} else {
		for _, code := range row.FallbackCodes() {
			raw, ok := row.Field(code)
			out = append(out, makeValue(code, raw, ok, meta))
			emitted[strings.ToLower(code)] = true
		}
	}

	if isApparentPowerFamily(vendorName) {
		inAllow := map[string]bool{}
		for _, code := range allow {
			inAllow[strings.ToLower(code)] = true
		}
		covered := func(code string) bool {
			key := strings.ToLower(code)
			return emitted[key] || inAllow[key]
		}

		var sum float64
		var anyPhase bool
		for _, code := range apparentPhaseCodes {
			raw, ok := row.Field(code)
			if !ok {
				continue
			}
			anyPhase = true
			sum += raw
			if covered(code) {
				continue
			}
			out = append(out, makeValue(code, raw, true, meta))
			emitted[strings.ToLower(code)] = true
		}
		if anyPhase && sum > 0 && !covered(apparentSumCode) {
			out = append(out, makeValue(apparentSumCode, sum, true, meta))
		}
	}

	return out
}

func isApparentPowerFamily(vendorName string) bool {
	name := strings.ToLower(vendorName)
	if name == "" {
		return false
	}
	for _, alias := range apparentPowerVendors {
		if strings.Contains(name, alias) {
			return true
		}
	}
	return false
}

func makeValue(code string, raw float64, hasValue bool, meta map[string]domain.ParamMeta) domain.ParamValue {
	m := metaFor(code, meta)
	value := 0.0
	if hasValue {
		value = roundTo(raw/m.Scale, m.Decimals)
	}
	return domain.ParamValue{
		Code:        m.Code,
		DisplayName: m.DisplayName,
		ShortName:   m.ShortName,
		Value:       value,
		Unit:        m.Unit,
		Decimals:    m.Decimals,
		HasValue:    hasValue,
	}
}

func metaFor(code string, meta map[string]domain.ParamMeta) domain.ParamMeta {
	if m, ok := meta[strings.ToLower(code)]; ok {
		if m.Scale <= 0 {
			m.Scale = domain.BuiltinScale(code)
		}
		return m
	}
	if m, ok := domain.BuiltinParam(code); ok {
		return m
	}
	return domain.ParamMeta{Code: code, DisplayName: code, ShortName: code, Decimals: 2, Scale: 1}
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
