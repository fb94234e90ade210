package table_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tdiff/tdiff/pkg/table"
)

func TestNormalize(t *testing.T) {
	day := time.Date(2023, 5, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want table.Value
	}{
		{"nil", nil, nil},
		{"int", 42, int64(42)},
		{"int32", int32(7), int64(7)},
		{"uint64", uint64(9), int64(9)},
		{"float32", float32(1.5), float64(1.5)},
		{"bytes", []byte("acct"), "acct"},
		{"string", "acct", "acct"},
		{"time", day, day},
		{"bool", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Normalize(tt.in))
		})
	}
}

func TestEqual(t *testing.T) {
	utc := time.Date(2023, 5, 8, 12, 0, 0, 0, time.UTC)
	berlin := utc.In(time.FixedZone("CEST", 2*3600))

	tests := []struct {
		name string
		a, b table.Value
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs value", nil, int64(1), false},
		{"int vs float same magnitude", int64(100), float64(100), true},
		{"int vs float different", int64(100), float64(100.5), false},
		{"numeric vs string form", int64(100), "100", false},
		{"same instant different zone", utc, berlin, true},
		{"strings", "OK", "OK", true},
		{"time vs string", utc, "2023-05-08", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Equal(tt.a, tt.b))
		})
	}
}

func TestNumeric(t *testing.T) {
	n, ok := table.Numeric(int64(5))
	assert.True(t, ok)
	assert.Equal(t, 5.0, n)

	n, ok = table.Numeric(" 12.5 ")
	assert.True(t, ok)
	assert.Equal(t, 12.5, n)

	n, ok = table.Numeric("A-1")
	assert.False(t, ok)
	assert.True(t, math.IsInf(n, 1), "non-numeric values project to +Inf")

	day := time.Date(2023, 5, 8, 0, 0, 0, 0, time.UTC)
	n, ok = table.Numeric(day)
	assert.True(t, ok)
	assert.Equal(t, float64(day.UnixMicro()), n)
}

func TestFormat(t *testing.T) {
	midnight := time.Date(2023, 5, 8, 0, 0, 0, 0, time.UTC)
	noon := time.Date(2023, 5, 8, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, "", table.Format(nil))
	assert.Equal(t, "42", table.Format(int64(42)))
	assert.Equal(t, "1.5", table.Format(float64(1.5)))
	assert.Equal(t, "2023-05-08", table.Format(midnight))
	assert.Equal(t, "2023-05-08T12:30:00Z", table.Format(noon))
}

func TestKeyCollapsesNumericRepresentations(t *testing.T) {
	// int64 and integral float64 must key identically or the merge-key
	// join would miss correspondences across differently-typed fetches.
	assert.Equal(t, table.Key(int64(100)), table.Key(float64(100)))
	assert.NotEqual(t, table.Key(int64(100)), table.Key("100"))
	assert.NotEqual(t, table.Key(nil), table.Key(""))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, table.Compare(nil, nil))
	assert.Equal(t, -1, table.Compare(nil, int64(1)))
	assert.Equal(t, 1, table.Compare(int64(1), nil))
	assert.Equal(t, -1, table.Compare(int64(1), float64(2)))
	assert.Equal(t, 0, table.Compare(int64(2), float64(2)))
	// numerics sort before strings
	assert.Equal(t, -1, table.Compare(int64(999), "A-1"))
	assert.Equal(t, -1, table.Compare("A-1", "A-2"))
}
