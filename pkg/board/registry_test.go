package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Run("finds registered types", func(t *testing.T) {
		def, ok := Lookup(ColumnTypeStatus)
		require.True(t, ok)
		assert.Equal(t, "Status", def.Label)
		assert.Equal(t, KindStatus, def.ValueKind)
		assert.True(t, def.RequiresSettings)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, ok := Lookup("rating")
		assert.False(t, ok)
	})
}

func TestMustLookup(t *testing.T) {
	assert.NotPanics(t, func() { MustLookup(ColumnTypeText) })
	assert.Panics(t, func() { MustLookup("rating") })
}

func TestAllColumnTypes(t *testing.T) {
	all := AllColumnTypes()
	assert.Len(t, all, 15)
	assert.Equal(t, ColumnTypeText, all[0].Type, "palette order starts with text")

	// Returned slice is a copy; mutating it must not touch the registry.
	all[0].Label = "mutated"
	fresh := AllColumnTypes()
	assert.Equal(t, "Text", fresh[0].Label)
}

func TestColumnTypeValidate(t *testing.T) {
	for _, def := range AllColumnTypes() {
		assert.NoError(t, def.Type.Validate())
	}
	assert.Error(t, ColumnType("rating").Validate())
	assert.Error(t, ColumnType("").Validate())
}

func TestFormat(t *testing.T) {
	mar1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mar15 := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ct   ColumnType
		v    Value
		want string
	}{
		{"unset renders empty", ColumnTypeText, Unset(), ""},
		{"text", ColumnTypeText, TextValue("hello"), "hello"},
		{"whole number without decimals", ColumnTypeNumber, NumberValue(42), "42"},
		{"fractional number trimmed", ColumnTypeNumber, NumberValue(3.5), "3.5"},
		{"status", ColumnTypeStatus, StatusValue("done"), "done"},
		{"dropdown", ColumnTypeDropdown, OptionValue("bug"), "bug"},
		{"date as calendar day", ColumnTypeDate, DateValue(mar1), "2026-03-01"},
		{"timeline as range", ColumnTypeTimeline, TimelineValue(mar1, mar15), "2026-03-01 → 2026-03-15"},
		{"people joined", ColumnTypePeople, PeopleValue("ana", "ben"), "ana, ben"},
		{"labels joined", ColumnTypeLabels, LabelsValue("urgent", "backend"), "urgent, backend"},
		{"progress with percent", ColumnTypeProgress, ProgressValue(60), "60%"},
		{"checked checkbox", ColumnTypeCheckbox, CheckboxValue(true), "✓"},
		{"unchecked checkbox", ColumnTypeCheckbox, CheckboxValue(false), ""},
		{"link prefers text", ColumnTypeLink, LinkValue("https://example.com", "docs"), "docs"},
		{"link falls back to URL", ColumnTypeLink, LinkValue("https://example.com", ""), "https://example.com"},
		{"file name", ColumnTypeFile, FileValue("f-1", "spec.pdf"), "spec.pdf"},
		{"dependency joined", ColumnTypeDependency, DependencyValue("item-1", "item-2"), "item-1, item-2"},
		{"mismatched kind renders empty", ColumnTypeNumber, TextValue("nope"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.ct, tt.v))
		})
	}
}
