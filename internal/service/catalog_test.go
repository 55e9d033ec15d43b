package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/gridsight/meterhub/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVendors struct {
	schemas map[int64]string
	err     error
}

func (v *fakeVendors) SchemaFor(ctx context.Context, vendorID int64) (string, error) {
	if v.err != nil {
		return "", v.err
	}
	return v.schemas[vendorID], nil
}

func vendorDevice(vendorID int64) domain.Device {
	return domain.Device{
		ID:       1,
		Name:     "meter-1",
		Kind:     domain.KindElectrical,
		VendorID: sql.NullInt64{Int64: vendorID, Valid: true},
	}
}

func TestResolveSchema(t *testing.T) {
	vendors := &fakeVendors{schemas: map[int64]string{7: `{
		"params": [
			{"code": "PSum", "name": "Total Power", "unit": "kW", "decimals": 3, "scale": 1000},
			{"code": "U1"}
		]
	}`}}
	catalog := NewCatalog(vendors, zerolog.Nop())

	allow, meta, err := catalog.Resolve(context.Background(), vendorDevice(7))
	require.NoError(t, err)
	assert.Equal(t, []string{"PSum", "U1"}, allow)

	psum := meta["psum"]
	assert.Equal(t, "Total Power", psum.DisplayName)
	assert.Equal(t, 1000.0, psum.Scale)
	assert.Equal(t, 3, psum.Decimals)

	// Undeclared fields fall back to the builtin table.
	u1 := meta["u1"]
	assert.Equal(t, "Voltage L1", u1.DisplayName)
	assert.Equal(t, "V", u1.Unit)
	assert.Equal(t, 1.0, u1.Scale)
}

func TestResolveSkipsMalformedEntry(t *testing.T) {
	vendors := &fakeVendors{schemas: map[int64]string{7: `{
		"params": [
			{"code": "U1"},
			{"decimals": "not a number"},
			"just a string",
			{"code": "U2"}
		]
	}`}}
	catalog := NewCatalog(vendors, zerolog.Nop())

	allow, _, err := catalog.Resolve(context.Background(), vendorDevice(7))
	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2"}, allow)
}

func TestResolveUnparseableBlobFallsBack(t *testing.T) {
	vendors := &fakeVendors{schemas: map[int64]string{7: `{{{`}}
	catalog := NewCatalog(vendors, zerolog.Nop())

	allow, meta, err := catalog.Resolve(context.Background(), vendorDevice(7))
	require.NoError(t, err)
	assert.Empty(t, allow)
	assert.Empty(t, meta)
}

func TestResolveNoVendor(t *testing.T) {
	catalog := NewCatalog(&fakeVendors{}, zerolog.Nop())

	allow, meta, err := catalog.Resolve(context.Background(), domain.Device{ID: 1})
	require.NoError(t, err)
	assert.Empty(t, allow)
	assert.Empty(t, meta)
}

func TestResolveDropsDuplicateCodes(t *testing.T) {
	vendors := &fakeVendors{schemas: map[int64]string{7: `{
		"params": [{"code": "U1"}, {"code": "u1"}]
	}`}}
	catalog := NewCatalog(vendors, zerolog.Nop())

	allow, _, err := catalog.Resolve(context.Background(), vendorDevice(7))
	require.NoError(t, err)
	assert.Equal(t, []string{"U1"}, allow)
}

func TestResolveStorageErrorPropagates(t *testing.T) {
	vendors := &fakeVendors{err: errors.New("connection refused")}
	catalog := NewCatalog(vendors, zerolog.Nop())

	_, _, err := catalog.Resolve(context.Background(), vendorDevice(7))
	assert.Error(t, err)
}
