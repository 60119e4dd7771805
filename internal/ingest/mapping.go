// Package ingest maps raw tabular rows onto sandboxed graph writes. Every value
// produced here carries a workspace-scoped visibility label; nothing an import
// creates is readable outside the importing workspace until published.
package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrSkipRow signals that the current row cannot be imported and should be
// skipped without aborting the rest of the batch.
var ErrSkipRow = errors.New("skip row")

// PropertyType selects how a raw column value is coerced before it is stored.
type PropertyType string

const (
	PropertyTypeString PropertyType = "string"
	PropertyTypeNumber PropertyType = "number"
	PropertyTypeDate   PropertyType = "date"
)

// PropertyMapping maps one column of a row onto a property coordinate.
type PropertyMapping struct {
	Column   int          `json:"column" binding:"gte=0"`
	Name     string       `json:"name" binding:"required"`
	Key      string       `json:"key"`
	Type     PropertyType `json:"type"`
	Required bool         `json:"required"`

	// DateFormat is the Go reference layout used for PropertyTypeDate.
	DateFormat string `json:"dateFormat,omitempty"`
}

// VertexMapping describes how one row becomes one vertex.
type VertexMapping struct {
	// IDColumn, when non-negative, supplies the vertex id; otherwise ids are
	// generated per row.
	IDColumn   int               `json:"idColumn"`
	Properties []PropertyMapping `json:"properties" binding:"required,dive"`
}

// numberCruft strips grouping separators and currency annotations commonly
// found in exported spreadsheets before decimal parsing.
var numberCruft = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", " ", "")

// DecodeValue coerces the raw cell according to the mapping. A missing or blank
// cell returns (nil, nil) for optional mappings and ErrSkipRow for required
// ones. Unparseable values always skip the row: a half-imported row is worse
// than an absent one.
func (m PropertyMapping) DecodeValue(row []string) (any, error) {
	var raw string
	if m.Column >= 0 && m.Column < len(row) {
		raw = strings.TrimSpace(row[m.Column])
	}
	if raw == "" {
		if m.Required {
			return nil, fmt.Errorf("column %d (%s) is empty: %w", m.Column, m.Name, ErrSkipRow)
		}
		return nil, nil
	}

	switch m.Type {
	case PropertyTypeNumber:
		value, err := decimal.NewFromString(numberCruft.Replace(raw))
		if err != nil {
			return nil, fmt.Errorf("column %d (%s): %q is not a number: %w", m.Column, m.Name, raw, ErrSkipRow)
		}
		return value, nil

	case PropertyTypeDate:
		layout := m.DateFormat
		if layout == "" {
			layout = "2006-01-02"
		}
		value, err := time.Parse(layout, raw)
		if err != nil {
			return nil, fmt.Errorf("column %d (%s): %q does not match layout %q: %w", m.Column, m.Name, raw, layout, ErrSkipRow)
		}
		return value, nil

	default:
		return raw, nil
	}
}
