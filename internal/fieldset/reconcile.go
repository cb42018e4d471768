// Package fieldset computes and applies edit scripts that bring a note
// type's field list in line with a desired list of field names.
package fieldset

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyName reported when a desired field name is empty or blank
	ErrEmptyName = errors.New("field name must not be empty")
	// ErrDuplicateName reported when the desired list repeats a name
	ErrDuplicateName = errors.New("duplicate field name")
	// ErrNoFields reported when the desired list is empty
	ErrNoFields = errors.New("note type must keep at least one field")
)

// Field is one field definition of a note type. Config carried by a
// retained field survives reconciliation untouched.
type Field struct {
	Name        string `json:"name"`
	Ord         int    `json:"ord"`
	Sticky      bool   `json:"sticky"`
	RTL         bool   `json:"rtl"`
	Font        string `json:"font"`
	Size        int    `json:"size"`
	Description string `json:"description"`
}

// DefaultFont and DefaultSize are applied to newly added fields.
const (
	DefaultFont = "Arial"
	DefaultSize = 20
)

// NewField returns a field with default display config.
func NewField(name string, ord int) Field {
	return Field{
		Name: name,
		Ord:  ord,
		Font: DefaultFont,
		Size: DefaultSize,
	}
}

// Removal is one delete step of an edit script. Index is the position
// of the field in the pre-edit field list.
type Removal struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// EditScript describes how an existing field list is transformed into
// the desired one: removals first (applied in reverse index order),
// then additions appended, then a final reorder.
type EditScript struct {
	// Removals lists dropped fields in existing-list order. Apply
	// processes them back to front so earlier indexes stay valid.
	Removals []Removal `json:"removals"`
	// Additions lists new field names in desired-list order.
	Additions []string `json:"additions"`
	// Order is the final field name order, identical to the desired list.
	Order []string `json:"order"`
}

// IsNoop reports whether the script changes nothing, including order.
func (s EditScript) IsNoop(existing []string) bool {
	if len(s.Removals) != 0 || len(s.Additions) != 0 {
		return false
	}
	if len(existing) != len(s.Order) {
		return false
	}
	for i, name := range existing {
		if s.Order[i] != name {
			return false
		}
	}
	return true
}

// validateDesired checks the desired name list: non-empty, no blank
// names, no duplicates.
func validateDesired(desired []string) error {
	if len(desired) == 0 {
		return ErrNoFields
	}
	seen := make(map[string]struct{}, len(desired))
	for _, name := range desired {
		if strings.TrimSpace(name) == "" {
			return ErrEmptyName
		}
		if _, ok := seen[name]; ok {
			return errors.Wrap(ErrDuplicateName, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Reconcile diffs the existing field names against the desired ones and
// returns the edit script. The desired list is validated up front; on
// validation failure no script is produced.
func Reconcile(existing []string, desired []string) (EditScript, error) {
	if err := validateDesired(desired); err != nil {
		return EditScript{}, err
	}

	want := make(map[string]struct{}, len(desired))
	for _, name := range desired {
		want[name] = struct{}{}
	}
	have := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		have[name] = struct{}{}
	}

	script := EditScript{
		Order: append([]string(nil), desired...),
	}

	for i, name := range existing {
		if _, ok := want[name]; !ok {
			script.Removals = append(script.Removals, Removal{Name: name, Index: i})
		}
	}

	for _, name := range desired {
		if _, ok := have[name]; !ok {
			script.Additions = append(script.Additions, name)
		}
	}

	return script, nil
}

// Apply reconciles fields against the desired name list and returns the
// resulting field list along with the edit script that produced it.
// Retained fields keep their config; added fields get defaults. Ords
// are reset to the index of each field in the desired list. The input
// slice is never modified, also not on error.
func Apply(fields []Field, desired []string) ([]Field, EditScript, error) {
	existing := Names(fields)

	script, err := Reconcile(existing, desired)
	if err != nil {
		return nil, EditScript{}, err
	}

	work := append([]Field(nil), fields...)

	// Removals run back to front so the recorded indexes stay valid.
	for i := len(script.Removals) - 1; i >= 0; i-- {
		idx := script.Removals[i].Index
		work = append(work[:idx], work[idx+1:]...)
	}

	for _, name := range script.Additions {
		work = append(work, NewField(name, 0))
	}

	byName := make(map[string]Field, len(work))
	for _, f := range work {
		byName[f.Name] = f
	}

	result := make([]Field, 0, len(desired))
	for ord, name := range desired {
		f := byName[name]
		f.Ord = ord
		result = append(result, f)
	}

	return result, script, nil
}

// Names extracts the name list of a field slice in order.
func Names(fields []Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}
