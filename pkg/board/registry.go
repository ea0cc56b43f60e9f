package board

import (
	"fmt"
	"strings"
	"time"
)

// ColumnType is the closed set of supported column types.
type ColumnType string

const (
	ColumnTypeText       ColumnType = "text"
	ColumnTypeLongText   ColumnType = "long_text"
	ColumnTypeNumber     ColumnType = "number"
	ColumnTypeStatus     ColumnType = "status"
	ColumnTypeDropdown   ColumnType = "dropdown"
	ColumnTypeDate       ColumnType = "date"
	ColumnTypeTimeline   ColumnType = "timeline"
	ColumnTypePeople     ColumnType = "people"
	ColumnTypeLabels     ColumnType = "labels"
	ColumnTypeProgress   ColumnType = "progress"
	ColumnTypeCheckbox   ColumnType = "checkbox"
	ColumnTypeLink       ColumnType = "link"
	ColumnTypeFile       ColumnType = "file"
	ColumnTypeFormula    ColumnType = "formula"
	ColumnTypeDependency ColumnType = "dependency"
)

// Validate checks if the ColumnType is a known type.
func (ct ColumnType) Validate() error {
	if _, ok := Lookup(ct); !ok {
		return fmt.Errorf("unknown column type: %q", ct)
	}
	return nil
}

// ColumnTypeDefinition describes one supported column type. Definitions are
// immutable and loaded once; they are never mutated at runtime.
type ColumnTypeDefinition struct {
	Type             ColumnType
	Label            string
	DefaultWidth     int
	ValueKind        ValueKind // the single value kind this type accepts
	SupportsMultiple bool      // value is a set, not a scalar
	RequiresSettings bool      // type needs type-specific configuration
}

// columnTypes is the static catalog. Order here is the default palette order
// shown to board collaborators.
var columnTypes = []ColumnTypeDefinition{
	{Type: ColumnTypeText, Label: "Text", DefaultWidth: 140, ValueKind: KindText},
	{Type: ColumnTypeLongText, Label: "Long Text", DefaultWidth: 240, ValueKind: KindText},
	{Type: ColumnTypeNumber, Label: "Number", DefaultWidth: 100, ValueKind: KindNumber},
	{Type: ColumnTypeStatus, Label: "Status", DefaultWidth: 140, ValueKind: KindStatus, RequiresSettings: true},
	{Type: ColumnTypeDropdown, Label: "Dropdown", DefaultWidth: 140, ValueKind: KindOption, RequiresSettings: true},
	{Type: ColumnTypeDate, Label: "Date", DefaultWidth: 120, ValueKind: KindDate},
	{Type: ColumnTypeTimeline, Label: "Timeline", DefaultWidth: 180, ValueKind: KindTimeline},
	{Type: ColumnTypePeople, Label: "People", DefaultWidth: 120, ValueKind: KindPeople, SupportsMultiple: true},
	{Type: ColumnTypeLabels, Label: "Labels", DefaultWidth: 140, ValueKind: KindLabels, SupportsMultiple: true},
	{Type: ColumnTypeProgress, Label: "Progress", DefaultWidth: 120, ValueKind: KindProgress},
	{Type: ColumnTypeCheckbox, Label: "Checkbox", DefaultWidth: 80, ValueKind: KindCheckbox},
	{Type: ColumnTypeLink, Label: "Link", DefaultWidth: 160, ValueKind: KindLink},
	{Type: ColumnTypeFile, Label: "File", DefaultWidth: 120, ValueKind: KindFile},
	{Type: ColumnTypeFormula, Label: "Formula", DefaultWidth: 140, ValueKind: KindNumber, RequiresSettings: true},
	{Type: ColumnTypeDependency, Label: "Dependency", DefaultWidth: 160, ValueKind: KindDependency, SupportsMultiple: true},
}

var columnTypeIndex = func() map[ColumnType]ColumnTypeDefinition {
	idx := make(map[ColumnType]ColumnTypeDefinition, len(columnTypes))
	for _, def := range columnTypes {
		idx[def.Type] = def
	}
	return idx
}()

// Lookup returns the definition for a column type.
func Lookup(ct ColumnType) (ColumnTypeDefinition, bool) {
	def, ok := columnTypeIndex[ct]
	return def, ok
}

// MustLookup returns the definition for a column type, panicking if the type
// is not registered. An unregistered type is a programmer error, not a
// recoverable condition.
func MustLookup(ct ColumnType) ColumnTypeDefinition {
	def, ok := columnTypeIndex[ct]
	if !ok {
		panic(fmt.Sprintf("board: column type %q is not registered", ct))
	}
	return def
}

// AllColumnTypes returns the catalog in palette order. The returned slice is
// a copy; callers may not mutate the registry.
func AllColumnTypes() []ColumnTypeDefinition {
	out := make([]ColumnTypeDefinition, len(columnTypes))
	copy(out, columnTypes)
	return out
}

// Format renders a value of the given column type as a display string.
// Pure and total: unset values (and values of an unexpected kind) render as
// the empty string rather than failing.
func Format(ct ColumnType, v Value) string {
	if v.IsUnset() {
		return ""
	}
	if def, ok := Lookup(ct); !ok || v.Kind != def.ValueKind {
		return ""
	}

	switch ct {
	case ColumnTypeText, ColumnTypeLongText:
		return v.Text
	case ColumnTypeNumber, ColumnTypeFormula:
		return formatNumber(v.Number)
	case ColumnTypeStatus:
		return v.StatusID
	case ColumnTypeDropdown:
		return v.OptionID
	case ColumnTypeDate:
		if v.DateMs == 0 {
			return ""
		}
		return time.UnixMilli(v.DateMs).UTC().Format("2006-01-02")
	case ColumnTypeTimeline:
		if v.StartMs == 0 && v.EndMs == 0 {
			return ""
		}
		start := time.UnixMilli(v.StartMs).UTC().Format("2006-01-02")
		end := time.UnixMilli(v.EndMs).UTC().Format("2006-01-02")
		return start + " → " + end
	case ColumnTypePeople:
		return strings.Join(v.People, ", ")
	case ColumnTypeLabels:
		return strings.Join(v.Labels, ", ")
	case ColumnTypeProgress:
		return fmt.Sprintf("%d%%", v.Progress)
	case ColumnTypeCheckbox:
		if v.Checked {
			return "✓"
		}
		return ""
	case ColumnTypeLink:
		if v.LinkText != "" {
			return v.LinkText
		}
		return v.URL
	case ColumnTypeFile:
		return v.FileName
	case ColumnTypeDependency:
		return strings.Join(v.DependsOn, ", ")
	default:
		return ""
	}
}

// formatNumber trims trailing zeros so whole numbers render without a
// decimal point.
func formatNumber(n float64) string {
	s := fmt.Sprintf("%.4f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
