package domain

import "strings"

// ParamMeta bundles the display metadata for one parameter code.
type ParamMeta struct {
	Code        string  `json:"code"`
	DisplayName string  `json:"display_name"`
	ShortName   string  `json:"short_name"`
	Unit        string  `json:"unit"`
	Decimals    int     `json:"decimals"`
	Scale       float64 `json:"scale"`
}

// ParamValue is one projected parameter in a device snapshot. Value is already
// scaled and rounded; HasValue is false only when the raw field was null.
type ParamValue struct {
	Code        string  `json:"code"`
	DisplayName string  `json:"display_name"`
	ShortName   string  `json:"short_name"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Decimals    int     `json:"decimals"`
	HasValue    bool    `json:"has_value"`
}

// builtinParams is the static per-code metadata table. Power and energy class
// parameters arrive as raw W/Wh/l values and carry a 1000 divisor; everything
// else is stored in display units already.
var builtinParams = map[string]ParamMeta{
	"u1":    {Code: "U1", DisplayName: "Voltage L1", ShortName: "U1", Unit: "V", Decimals: 1, Scale: 1},
	"u2":    {Code: "U2", DisplayName: "Voltage L2", ShortName: "U2", Unit: "V", Decimals: 1, Scale: 1},
	"u3":    {Code: "U3", DisplayName: "Voltage L3", ShortName: "U3", Unit: "V", Decimals: 1, Scale: 1},
	"i1":    {Code: "I1", DisplayName: "Current L1", ShortName: "I1", Unit: "A", Decimals: 2, Scale: 1},
	"i2":    {Code: "I2", DisplayName: "Current L2", ShortName: "I2", Unit: "A", Decimals: 2, Scale: 1},
	"i3":    {Code: "I3", DisplayName: "Current L3", ShortName: "I3", Unit: "A", Decimals: 2, Scale: 1},
	"p1":    {Code: "P1", DisplayName: "Active Power L1", ShortName: "P1", Unit: "kW", Decimals: 3, Scale: 1000},
	"p2":    {Code: "P2", DisplayName: "Active Power L2", ShortName: "P2", Unit: "kW", Decimals: 3, Scale: 1000},
	"p3":    {Code: "P3", DisplayName: "Active Power L3", ShortName: "P3", Unit: "kW", Decimals: 3, Scale: 1000},
	"psum":  {Code: "PSum", DisplayName: "Active Power Total", ShortName: "PΣ", Unit: "kW", Decimals: 3, Scale: 1000},
	"aq1":   {Code: "Aq1", DisplayName: "Apparent Power L1", ShortName: "Aq1", Unit: "kVA", Decimals: 3, Scale: 1000},
	"aq2":   {Code: "Aq2", DisplayName: "Apparent Power L2", ShortName: "Aq2", Unit: "kVA", Decimals: 3, Scale: 1000},
	"aq3":   {Code: "Aq3", DisplayName: "Apparent Power L3", ShortName: "Aq3", Unit: "kVA", Decimals: 3, Scale: 1000},
	"aqsum": {Code: "AqSum", DisplayName: "Apparent Power Total", ShortName: "AqΣ", Unit: "kVA", Decimals: 3, Scale: 1000},
	"ea":    {Code: "Ea", DisplayName: "Active Energy", ShortName: "Ea", Unit: "kWh", Decimals: 2, Scale: 1000},
	"freq":  {Code: "Freq", DisplayName: "Frequency", ShortName: "f", Unit: "Hz", Decimals: 2, Scale: 1},
	"cos":   {Code: "Cos", DisplayName: "Power Factor", ShortName: "cosφ", Unit: "", Decimals: 3, Scale: 1},
	"vol":   {Code: "Vol", DisplayName: "Gas Volume", ShortName: "V", Unit: "m³", Decimals: 3, Scale: 1000},
	"flow":  {Code: "Flow", DisplayName: "Gas Flow", ShortName: "Q", Unit: "m³/h", Decimals: 3, Scale: 1000},
	"temp":  {Code: "Temp", DisplayName: "Gas Temperature", ShortName: "T", Unit: "°C", Decimals: 1, Scale: 1},
	"press": {Code: "Press", DisplayName: "Gas Pressure", ShortName: "p", Unit: "bar", Decimals: 3, Scale: 1000},
}

// BuiltinParam looks up the static metadata for code, case-insensitively.
func BuiltinParam(code string) (ParamMeta, bool) {
	m, ok := builtinParams[strings.ToLower(code)]
	return m, ok
}

// BuiltinScale returns the static scale divisor for code, 1 when unknown.
func BuiltinScale(code string) float64 {
	if m, ok := BuiltinParam(code); ok && m.Scale > 0 {
		return m.Scale
	}
	return 1
}
