package domain

import (
	"database/sql"
	"time"
)

// Device kinds. Devices with an unknown kind are skipped by the snapshot builder.
const (
	KindElectrical = "electrical"
	KindGas        = "gas"
)

// Two-valued status indicator derived from the active flag.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Site struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Device struct {
	ID         int64          `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	Kind       string         `db:"kind" json:"kind"`
	VendorID   sql.NullInt64  `db:"vendor_id" json:"vendor_id"`
	VendorName sql.NullString `db:"vendor_name" json:"vendor_name"`
	SiteID     sql.NullInt64  `db:"site_id" json:"site_id"`
	SiteName   sql.NullString `db:"site_name" json:"site_name"`
	Active     bool           `db:"active" json:"active"`
	SortKey    int            `db:"sort_key" json:"sort_key"`
}

func (d Device) Status() string {
	if d.Active {
		return StatusActive
	}
	return StatusInactive
}

type Vendor struct {
	ID          int64          `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	ParamSchema sql.NullString `db:"param_schema" json:"param_schema"`
}

type DailyConsumption struct {
	ID       int64     `db:"id" json:"id"`
	DeviceID int64     `db:"device_id" json:"device_id"`
	Day      time.Time `db:"day" json:"day"`
	Value    float64   `db:"value" json:"value"`
}

type MonthlyConsumption struct {
	DeviceID   int64     `db:"device_id" json:"device_id"`
	Year       int       `db:"year" json:"year"`
	Month      int       `db:"month" json:"month"`
	Value      float64   `db:"value" json:"value"`
	AnchoredAt time.Time `db:"anchored_at" json:"anchored_at"`
}

// DeviceEnvelope is one device's entry in a broadcast batch. Values is the
// flattened code->value view for simple consumers; Params keeps order and
// display metadata for rich ones.
type DeviceEnvelope struct {
	DeviceID   int64              `json:"device_id"`
	Name       string             `json:"name"`
	SiteName   *string            `json:"site_name"`
	Status     string             `json:"status"`
	SortKey    int                `json:"sort_key"`
	Values     map[string]float64 `json:"values"`
	Params     []ParamValue       `json:"params"`
	CapturedAt time.Time          `json:"captured_at"`
}

type SiteTotal struct {
	Site  string  `json:"site"`
	Total float64 `json:"total"`
}
