package ingest_test

import (
	"testing"

	"github.com/bings/visallo/internal/ingest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyMapping_DecodeValue_String(t *testing.T) {
	m := ingest.PropertyMapping{Column: 0, Name: "fullName", Type: ingest.PropertyTypeString}

	value, err := m.DecodeValue([]string{"  Ada Lovelace  "})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", value)
}

func TestPropertyMapping_DecodeValue_Number(t *testing.T) {
	m := ingest.PropertyMapping{Column: 0, Name: "netWorth", Type: ingest.PropertyTypeNumber}

	t.Run("plain number", func(t *testing.T) {
		value, err := m.DecodeValue([]string{"1234.56"})
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1234.56").Equal(value.(decimal.Decimal)))
	})

	t.Run("strips currency cruft", func(t *testing.T) {
		value, err := m.DecodeValue([]string{"$1,234,567.89"})
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1234567.89").Equal(value.(decimal.Decimal)))
	})

	t.Run("non-numeric value skips the row", func(t *testing.T) {
		_, err := m.DecodeValue([]string{"lots"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ingest.ErrSkipRow)
	})
}

func TestPropertyMapping_DecodeValue_Date(t *testing.T) {
	t.Run("default layout", func(t *testing.T) {
		m := ingest.PropertyMapping{Column: 0, Name: "birthDate", Type: ingest.PropertyTypeDate}
		value, err := m.DecodeValue([]string{"1815-12-10"})
		require.NoError(t, err)
		assert.NotNil(t, value)
	})

	t.Run("custom layout", func(t *testing.T) {
		m := ingest.PropertyMapping{Column: 0, Name: "birthDate", Type: ingest.PropertyTypeDate, DateFormat: "02/01/2006"}
		_, err := m.DecodeValue([]string{"10/12/1815"})
		require.NoError(t, err)
	})

	t.Run("mismatched layout skips the row", func(t *testing.T) {
		m := ingest.PropertyMapping{Column: 0, Name: "birthDate", Type: ingest.PropertyTypeDate}
		_, err := m.DecodeValue([]string{"December 10th"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ingest.ErrSkipRow)
	})
}

func TestPropertyMapping_DecodeValue_BlankCells(t *testing.T) {
	t.Run("blank optional cell yields nil", func(t *testing.T) {
		m := ingest.PropertyMapping{Column: 0, Name: "nickname"}
		value, err := m.DecodeValue([]string{"   "})
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("blank required cell skips the row", func(t *testing.T) {
		m := ingest.PropertyMapping{Column: 0, Name: "fullName", Required: true}
		_, err := m.DecodeValue([]string{""})
		require.Error(t, err)
		assert.ErrorIs(t, err, ingest.ErrSkipRow)
	})

	t.Run("column beyond the row is treated as blank", func(t *testing.T) {
		m := ingest.PropertyMapping{Column: 5, Name: "nickname"}
		value, err := m.DecodeValue([]string{"only one cell"})
		require.NoError(t, err)
		assert.Nil(t, value)
	})
}
