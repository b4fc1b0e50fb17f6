// Package domain defines the report query, rows and the reporter contract
package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// Output formats
const (
	FormatJSON = "json"
	FormatTSV  = "tsv"
	FormatHTML = "html"
)

// Query is the report request as bound from the url
type Query struct {
	UUID   string `query:"uuid" example:"5f0c..."`
	Format string `query:"format" validate:"omitempty,oneof=json tsv html" example:"tsv"`
	AsFile bool   `query:"asFile"`
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02" example:"2024-03-01"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02" example:"2024-03-08"`
}

// Window is a resolved inclusive day range
type Window struct {
	From time.Time
	To   time.Time
}

// Field is one flattened column
type Field struct {
	Key   string
	Value any
}

// Row is an ordered set of flattened columns
type Row []Field

// Get returns the value under key
func (r Row) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes the row as an object keeping column order
func (r Row) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Reporter builds report rows
type Reporter interface {
	// Authorize checks the caller uuid; missing is a validation error, wrong is forbidden
	Authorize(uuid string) error
	// Resolve applies defaults and bounds to the requested days
	Resolve(q Query) (Window, error)
	Rows(ctx context.Context, w Window) ([]Row, error)
	// Day formats a window bound for file names
	Day(t time.Time) string
}
