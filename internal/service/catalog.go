package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gridsight/meterhub/internal/domain"
	"github.com/rs/zerolog"
)

// VendorCatalog is the read-only vendor schema lookup.
type VendorCatalog interface {
	SchemaFor(ctx context.Context, vendorID int64) (string, error)
}

// Catalog resolves a device's vendor schema into the ordered parameter
// allow-list and per-code display metadata.
type Catalog struct {
	vendors VendorCatalog
	log     zerolog.Logger
}

func NewCatalog(vendors VendorCatalog, log zerolog.Logger) *Catalog {
	return &Catalog{vendors: vendors, log: log}
}

// schemaEntry matches one element of a vendor's declared params array. All
// fields except code are optional; the builtin table fills the gaps.
type schemaEntry struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Short    string  `json:"short"`
	Unit     string  `json:"unit"`
	Decimals *int    `json:"decimals"`
	Scale    float64 `json:"scale"`
}

// Resolve returns the allow-list and metadata for a device. An absent vendor,
// missing schema or unparseable blob all yield an empty allow-list, which is
// the fallback-projection signal. A malformed individual entry is skipped so
// one bad declaration never hides the rest of the schema.
func (c *Catalog) Resolve(ctx context.Context, device domain.Device) ([]string, map[string]domain.ParamMeta, error) {
	if !device.VendorID.Valid {
		return nil, nil, nil
	}
	blob, err := c.vendors.SchemaFor(ctx, device.VendorID.Int64)
	if err != nil {
		return nil, nil, err
	}
	if blob == "" {
		return nil, nil, nil
	}

	var doc struct {
		Params []json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal([]byte(blob), &doc); err != nil {
		c.log.Warn().Int64("vendor_id", device.VendorID.Int64).Err(err).
			Msg("vendor schema unparseable, falling back to unfiltered projection")
		return nil, nil, nil
	}

	var allow []string
	meta := make(map[string]domain.ParamMeta, len(doc.Params))
	for _, raw := range doc.Params {
		var entry schemaEntry
		if err := json.Unmarshal(raw, &entry); err != nil || entry.Code == "" {
			c.log.Warn().Int64("vendor_id", device.VendorID.Int64).
				Msg("skipping malformed schema entry")
			continue
		}
		key := strings.ToLower(entry.Code)
		if _, dup := meta[key]; dup {
			continue
		}
		allow = append(allow, entry.Code)
		meta[key] = mergeMeta(entry)
	}
	return allow, meta, nil
}

// mergeMeta layers a declared entry over the builtin defaults for its code.
func mergeMeta(entry schemaEntry) domain.ParamMeta {
	m, ok := domain.BuiltinParam(entry.Code)
	if !ok {
		m = domain.ParamMeta{Code: entry.Code, DisplayName: entry.Code, ShortName: entry.Code, Decimals: 2, Scale: 1}
	}
	m.Code = entry.Code
	if entry.Name != "" {
		m.DisplayName = entry.Name
	}
	if entry.Short != "" {
		m.ShortName = entry.Short
	}
	if entry.Unit != "" {
		m.Unit = entry.Unit
	}
	if entry.Decimals != nil {
		m.Decimals = *entry.Decimals
	}
	if entry.Scale > 0 {
		m.Scale = entry.Scale
	} else {
		m.Scale = domain.BuiltinScale(entry.Code)
	}
	return m
}
