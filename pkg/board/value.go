package board

import (
	"fmt"
	"sort"
	"time"
)

// ValueKind identifies the shape a Value holds. Each ColumnType accepts
// exactly one kind (plus KindUnset, which every column accepts).
type ValueKind string

const (
	KindUnset      ValueKind = "unset"
	KindText       ValueKind = "text"
	KindNumber     ValueKind = "number"
	KindStatus     ValueKind = "status"
	KindOption     ValueKind = "option"
	KindDate       ValueKind = "date"
	KindTimeline   ValueKind = "timeline"
	KindPeople     ValueKind = "people"
	KindLabels     ValueKind = "labels"
	KindProgress   ValueKind = "progress"
	KindCheckbox   ValueKind = "checkbox"
	KindLink       ValueKind = "link"
	KindFile       ValueKind = "file"
	KindDependency ValueKind = "dependency"
)

// Value is the polymorphic cell value stored per (item, column) pair.
// It is a closed tagged union: Kind selects which fields are meaningful,
// all other fields are zero. Absence is first-class - an unset Value is a
// normal value, not an error.
type Value struct {
	Kind ValueKind `json:"kind"`

	Text     string   `json:"text,omitempty"`      // KindText
	Number   float64  `json:"number,omitempty"`    // KindNumber
	StatusID string   `json:"status_id,omitempty"` // KindStatus - references a configured StatusLabel
	OptionID string   `json:"option_id,omitempty"` // KindOption - references a configured SelectOption
	DateMs   int64    `json:"date_ms,omitempty"`   // KindDate - Unix timestamp in milliseconds
	StartMs  int64    `json:"start_ms,omitempty"`  // KindTimeline
	EndMs    int64    `json:"end_ms,omitempty"`    // KindTimeline - must be >= StartMs
	People   []string `json:"people,omitempty"`    // KindPeople - set of user IDs
	Labels   []string `json:"labels,omitempty"`    // KindLabels - set of label IDs
	Progress int      `json:"progress,omitempty"`  // KindProgress - 0..100
	Checked  bool     `json:"checked,omitempty"`   // KindCheckbox
	URL      string   `json:"url,omitempty"`       // KindLink
	LinkText string   `json:"link_text,omitempty"` // KindLink
	FileID   string   `json:"file_id,omitempty"`   // KindFile
	FileName string   `json:"file_name,omitempty"` // KindFile
	// KindDependency - set of item IDs this item depends on. Weak references:
	// no acyclicity is enforced, and a referenced item may be deleted later.
	DependsOn []string `json:"depends_on,omitempty"`
}

// Unset returns the canonical unset value.
func Unset() Value {
	return Value{Kind: KindUnset}
}

// IsUnset reports whether the value is absent. A zero Value is also unset.
func (v Value) IsUnset() bool {
	return v.Kind == KindUnset || v.Kind == ""
}

// Constructors for each value kind. Set-valued constructors deduplicate.

func TextValue(s string) Value       { return Value{Kind: KindText, Text: s} }
func NumberValue(n float64) Value    { return Value{Kind: KindNumber, Number: n} }
func StatusValue(id string) Value    { return Value{Kind: KindStatus, StatusID: id} }
func OptionValue(id string) Value    { return Value{Kind: KindOption, OptionID: id} }
func ProgressValue(p int) Value      { return Value{Kind: KindProgress, Progress: p} }
func CheckboxValue(b bool) Value     { return Value{Kind: KindCheckbox, Checked: b} }
func FileValue(id, name string) Value {
	return Value{Kind: KindFile, FileID: id, FileName: name}
}

func DateValue(t time.Time) Value {
	return Value{Kind: KindDate, DateMs: t.UnixMilli()}
}

func TimelineValue(start, end time.Time) Value {
	return Value{Kind: KindTimeline, StartMs: start.UnixMilli(), EndMs: end.UnixMilli()}
}

func LinkValue(url, text string) Value {
	return Value{Kind: KindLink, URL: url, LinkText: text}
}

func PeopleValue(userIDs ...string) Value {
	return Value{Kind: KindPeople, People: dedupe(userIDs)}
}

func LabelsValue(labelIDs ...string) Value {
	return Value{Kind: KindLabels, Labels: dedupe(labelIDs)}
}

func DependencyValue(itemIDs ...string) Value {
	return Value{Kind: KindDependency, DependsOn: dedupe(itemIDs)}
}

// Equal reports whether two values are semantically equal. Set-valued kinds
// compare as sets, ignoring order.
func (v Value) Equal(o Value) bool {
	if v.IsUnset() && o.IsUnset() {
		return true
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindPeople:
		return sameSet(v.People, o.People)
	case KindLabels:
		return sameSet(v.Labels, o.Labels)
	case KindDependency:
		return sameSet(v.DependsOn, o.DependsOn)
	default:
		return v.Text == o.Text &&
			v.Number == o.Number &&
			v.StatusID == o.StatusID &&
			v.OptionID == o.OptionID &&
			v.DateMs == o.DateMs &&
			v.StartMs == o.StartMs &&
			v.EndMs == o.EndMs &&
			v.Progress == o.Progress &&
			v.Checked == o.Checked &&
			v.URL == o.URL &&
			v.LinkText == o.LinkText &&
			v.FileID == o.FileID &&
			v.FileName == o.FileName
	}
}

// ValidateValue checks a value against this column's type contract.
// Returns ErrValueTypeMismatch when the kind does not match the column type,
// ErrValueOutOfRange when the kind matches but the value violates the
// column's constraints. Unset is accepted by every column.
func (c *Column) ValidateValue(v Value) error {
	if v.IsUnset() {
		return nil
	}

	def, ok := Lookup(c.Type)
	if !ok {
		return fmt.Errorf("column %s: unknown column type %q: %w", c.ID, c.Type, ErrNotFound)
	}

	if v.Kind != def.ValueKind {
		return fmt.Errorf("column %q (%s) requires %s value, got %s: %w",
			c.Title, c.Type, def.ValueKind, v.Kind, ErrValueTypeMismatch)
	}

	switch c.Type {
	case ColumnTypeTimeline:
		if v.StartMs > v.EndMs {
			return fmt.Errorf("timeline start %d after end %d: %w", v.StartMs, v.EndMs, ErrValueOutOfRange)
		}
	case ColumnTypeProgress:
		if v.Progress < 0 || v.Progress > 100 {
			return fmt.Errorf("progress %d outside 0-100: %w", v.Progress, ErrValueOutOfRange)
		}
	case ColumnTypeStatus:
		if c.Settings == nil || !c.Settings.hasStatusLabel(v.StatusID) {
			return fmt.Errorf("status %q is not a configured label of column %q: %w",
				v.StatusID, c.Title, ErrValueOutOfRange)
		}
	case ColumnTypeDropdown:
		if c.Settings == nil || !c.Settings.hasOption(v.OptionID) {
			return fmt.Errorf("option %q is not configured on column %q: %w",
				v.OptionID, c.Title, ErrValueOutOfRange)
		}
	}

	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
