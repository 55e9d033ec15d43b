package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gridsight/meterhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deviceColumns() []string {
	return []string{"id", "name", "kind", "vendor_id", "vendor_name", "site_id", "site_name", "active", "sort_key"}
}

func TestListDevices(t *testing.T) {
	mock, repo := setupMockDB(t)

	rows := sqlmock.NewRows(deviceColumns()).
		AddRow(101, "Main feed", "electrical", 7, "Iskraemeco", 1, "SiteA", true, 10).
		AddRow(202, "Boiler gas", "gas", nil, nil, 1, "SiteA", false, 20)

	mock.ExpectQuery(`SELECT d\.id, d\.name`).WillReturnRows(rows)

	devices, err := repo.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, int64(101), devices[0].ID)
	assert.Equal(t, domain.KindElectrical, devices[0].Kind)
	assert.True(t, devices[0].VendorID.Valid)
	assert.Equal(t, "Iskraemeco", devices[0].VendorName.String)
	assert.Equal(t, domain.StatusActive, devices[0].Status())

	assert.False(t, devices[1].VendorID.Valid)
	assert.Equal(t, domain.StatusInactive, devices[1].Status())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaForUnknownVendor(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT param_schema FROM vendors`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"param_schema"}))

	blob, err := repo.SchemaFor(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, blob)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaForNullBlob(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT param_schema FROM vendors`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"param_schema"}).AddRow(nil))

	blob, err := repo.SchemaFor(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, blob)
	assert.NoError(t, mock.ExpectationsWereMet())
}
