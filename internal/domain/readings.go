package domain

import (
	"database/sql"
	"strings"
	"time"
)

// ReadingRow is the projector's view of one raw reading. Field returns
// (value, true) when the code is declared on the row and non-null; null or
// undeclared codes return (0, false). FallbackCodes is the static projection
// order used when a device has no declared schema.
type ReadingRow interface {
	Taken() time.Time
	Field(code string) (float64, bool)
	FallbackCodes() []string
}

type ElectricalReading struct {
	ID        int64           `db:"id" json:"id"`
	DeviceID  int64           `db:"device_id" json:"device_id"`
	Timestamp time.Time       `db:"timestamp" json:"timestamp"`
	U1        sql.NullFloat64 `db:"u1" json:"u1"`
	U2        sql.NullFloat64 `db:"u2" json:"u2"`
	U3        sql.NullFloat64 `db:"u3" json:"u3"`
	I1        sql.NullFloat64 `db:"i1" json:"i1"`
	I2        sql.NullFloat64 `db:"i2" json:"i2"`
	I3        sql.NullFloat64 `db:"i3" json:"i3"`
	P1        sql.NullFloat64 `db:"p1" json:"p1"`
	P2        sql.NullFloat64 `db:"p2" json:"p2"`
	P3        sql.NullFloat64 `db:"p3" json:"p3"`
	PSum      sql.NullFloat64 `db:"psum" json:"psum"`
	Aq1       sql.NullFloat64 `db:"aq1" json:"aq1"`
	Aq2       sql.NullFloat64 `db:"aq2" json:"aq2"`
	Aq3       sql.NullFloat64 `db:"aq3" json:"aq3"`
	Ea        sql.NullFloat64 `db:"ea" json:"ea"`
	Freq      sql.NullFloat64 `db:"freq" json:"freq"`
	Cos       sql.NullFloat64 `db:"cos" json:"cos"`
}

type GasReading struct {
	ID        int64           `db:"id" json:"id"`
	DeviceID  int64           `db:"device_id" json:"device_id"`
	Timestamp time.Time       `db:"timestamp" json:"timestamp"`
	Vol       sql.NullFloat64 `db:"vol" json:"vol"`
	Flow      sql.NullFloat64 `db:"flow" json:"flow"`
	Temp      sql.NullFloat64 `db:"temp" json:"temp"`
	Press     sql.NullFloat64 `db:"press" json:"press"`
}

// Static accessor tables. Identity, timestamp and relation columns are
// deliberately absent; the table order is the fallback projection order.
var electricalFields = []struct {
	code string
	get  func(*ElectricalReading) sql.NullFloat64
}{
	{"U1", func(r *ElectricalReading) sql.NullFloat64 { return r.U1 }},
	{"U2", func(r *ElectricalReading) sql.NullFloat64 { return r.U2 }},
	{"U3", func(r *ElectricalReading) sql.NullFloat64 { return r.U3 }},
	{"I1", func(r *ElectricalReading) sql.NullFloat64 { return r.I1 }},
	{"I2", func(r *ElectricalReading) sql.NullFloat64 { return r.I2 }},
	{"I3", func(r *ElectricalReading) sql.NullFloat64 { return r.I3 }},
	{"P1", func(r *ElectricalReading) sql.NullFloat64 { return r.P1 }},
	{"P2", func(r *ElectricalReading) sql.NullFloat64 { return r.P2 }},
	{"P3", func(r *ElectricalReading) sql.NullFloat64 { return r.P3 }},
	{"PSum", func(r *ElectricalReading) sql.NullFloat64 { return r.PSum }},
	{"Aq1", func(r *ElectricalReading) sql.NullFloat64 { return r.Aq1 }},
	{"Aq2", func(r *ElectricalReading) sql.NullFloat64 { return r.Aq2 }},
	{"Aq3", func(r *ElectricalReading) sql.NullFloat64 { return r.Aq3 }},
	{"Ea", func(r *ElectricalReading) sql.NullFloat64 { return r.Ea }},
	{"Freq", func(r *ElectricalReading) sql.NullFloat64 { return r.Freq }},
	{"Cos", func(r *ElectricalReading) sql.NullFloat64 { return r.Cos }},
}

var gasFields = []struct {
	code string
	get  func(*GasReading) sql.NullFloat64
}{
	{"Vol", func(r *GasReading) sql.NullFloat64 { return r.Vol }},
	{"Flow", func(r *GasReading) sql.NullFloat64 { return r.Flow }},
	{"Temp", func(r *GasReading) sql.NullFloat64 { return r.Temp }},
	{"Press", func(r *GasReading) sql.NullFloat64 { return r.Press }},
}

func (r *ElectricalReading) Taken() time.Time { return r.Timestamp }

func (r *ElectricalReading) Field(code string) (float64, bool) {
	for _, f := range electricalFields {
		if strings.EqualFold(f.code, code) {
			v := f.get(r)
			return v.Float64, v.Valid
		}
	}
	return 0, false
}

func (r *ElectricalReading) FallbackCodes() []string {
	codes := make([]string, len(electricalFields))
	for i, f := range electricalFields {
		codes[i] = f.code
	}
	return codes
}

func (r *GasReading) Taken() time.Time { return r.Timestamp }

func (r *GasReading) Field(code string) (float64, bool) {
	for _, f := range gasFields {
		if strings.EqualFold(f.code, code) {
			v := f.get(r)
			return v.Float64, v.Valid
		}
	}
	return 0, false
}

func (r *GasReading) FallbackCodes() []string {
	codes := make([]string, len(gasFields))
	for i, f := range gasFields {
		codes[i] = f.code
	}
	return codes
}
