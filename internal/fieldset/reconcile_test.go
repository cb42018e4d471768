package fieldset

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsFromNames(names ...string) []Field {
	fields := make([]Field, 0, len(names))
	for i, name := range names {
		f := NewField(name, i)
		fields = append(fields, f)
	}
	return fields
}

func TestReconcile_EditScript(t *testing.T) {
	tests := []struct {
		name      string
		existing  []string
		desired   []string
		removals  []Removal
		additions []string
	}{
		{
			name:      "no change",
			existing:  []string{"Front", "Back"},
			desired:   []string{"Front", "Back"},
			removals:  nil,
			additions: nil,
		},
		{
			name:      "pure addition",
			existing:  []string{"Front", "Back"},
			desired:   []string{"Front", "Back", "Extra", "Source"},
			removals:  nil,
			additions: []string{"Extra", "Source"},
		},
		{
			name:      "pure removal keeps existing order",
			existing:  []string{"A", "B", "C", "D"},
			desired:   []string{"B", "D"},
			removals:  []Removal{{Name: "A", Index: 0}, {Name: "C", Index: 2}},
			additions: nil,
		},
		{
			name:      "mixed removal and addition",
			existing:  []string{"Front", "Back", "Hint"},
			desired:   []string{"Front", "Example", "Back"},
			removals:  []Removal{{Name: "Hint", Index: 2}},
			additions: []string{"Example"},
		},
		{
			name:      "reorder only",
			existing:  []string{"Front", "Back"},
			desired:   []string{"Back", "Front"},
			removals:  nil,
			additions: nil,
		},
		{
			name:      "full replacement",
			existing:  []string{"Front", "Back"},
			desired:   []string{"Question", "Answer"},
			removals:  []Removal{{Name: "Front", Index: 0}, {Name: "Back", Index: 1}},
			additions: []string{"Question", "Answer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := Reconcile(tt.existing, tt.desired)
			require.NoError(t, err)
			assert.Equal(t, tt.removals, script.Removals)
			assert.Equal(t, tt.additions, script.Additions)
			assert.Equal(t, tt.desired, script.Order)
		})
	}
}

func TestReconcile_Validation(t *testing.T) {
	existing := []string{"Front", "Back"}

	_, err := Reconcile(existing, nil)
	assert.ErrorIs(t, err, ErrNoFields)

	_, err = Reconcile(existing, []string{"Front", ""})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = Reconcile(existing, []string{"Front", "   "})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = Reconcile(existing, []string{"Front", "Back", "Front"})
	assert.True(t, errors.Is(err, ErrDuplicateName))
}

func TestApply_RetainedFieldKeepsConfig(t *testing.T) {
	fields := fieldsFromNames("Front", "Back", "Hint")
	fields[1].Sticky = true
	fields[1].Font = "Courier"
	fields[1].Size = 14
	fields[1].Description = "the answer"

	result, script, err := Apply(fields, []string{"Back", "Example"})
	require.NoError(t, err)

	require.Len(t, result, 2)
	assert.Equal(t, "Back", result[0].Name)
	assert.Equal(t, 0, result[0].Ord)
	assert.True(t, result[0].Sticky)
	assert.Equal(t, "Courier", result[0].Font)
	assert.Equal(t, 14, result[0].Size)
	assert.Equal(t, "the answer", result[0].Description)

	assert.Equal(t, "Example", result[1].Name)
	assert.Equal(t, 1, result[1].Ord)
	assert.Equal(t, DefaultFont, result[1].Font)
	assert.Equal(t, DefaultSize, result[1].Size)

	assert.Equal(t, []Removal{{Name: "Front", Index: 0}, {Name: "Hint", Index: 2}}, script.Removals)
	assert.Equal(t, []string{"Example"}, script.Additions)
}

func TestApply_InputNeverMutated(t *testing.T) {
	fields := fieldsFromNames("Front", "Back")
	snapshot := append([]Field(nil), fields...)

	_, _, err := Apply(fields, []string{"Back"})
	require.NoError(t, err)
	assert.Equal(t, snapshot, fields)

	_, _, err = Apply(fields, []string{"Back", "Back"})
	require.Error(t, err)
	assert.Equal(t, snapshot, fields)
}

func TestEditScript_IsNoop(t *testing.T) {
	script, err := Reconcile([]string{"Front", "Back"}, []string{"Front", "Back"})
	require.NoError(t, err)
	assert.True(t, script.IsNoop([]string{"Front", "Back"}))

	script, err = Reconcile([]string{"Front", "Back"}, []string{"Back", "Front"})
	require.NoError(t, err)
	assert.False(t, script.IsNoop([]string{"Front", "Back"}))
}

// genNameLists generates pairs of existing/desired field name lists with
// overlap, drawn from a small alphabet so both directions get exercised.
func genNameLists() gopter.Gen {
	alphabet := []string{"Front", "Back", "Extra", "Source", "Hint", "Audio", "Image", "Notes"}
	pick := func(mask int) []string {
		var names []string
		for i, name := range alphabet {
			if mask&(1<<i) != 0 {
				names = append(names, name)
			}
		}
		return names
	}
	return gen.IntRange(0, 65535).Map(func(v int) [2][]string {
		// low byte selects existing names, high byte the desired ones;
		// OR 1 keeps the desired list non-empty
		return [2][]string{pick(v & 255), pick((v >> 8) | 1)}
	})
}

func TestApply_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("result names equal desired with sequential ords", prop.ForAll(
		func(lists [2][]string) bool {
			existing, desired := lists[0], lists[1]
			if len(desired) == 0 {
				return true
			}
			result, _, err := Apply(fieldsFromNames(existing...), desired)
			if err != nil {
				return false
			}
			if len(result) != len(desired) {
				return false
			}
			for i, f := range result {
				if f.Name != desired[i] || f.Ord != i {
					return false
				}
			}
			return true
		},
		genNameLists(),
	))

	properties.Property("removal indexes are strictly increasing", prop.ForAll(
		func(lists [2][]string) bool {
			existing, desired := lists[0], lists[1]
			if len(desired) == 0 {
				return true
			}
			script, err := Reconcile(existing, desired)
			if err != nil {
				return false
			}
			last := -1
			for _, r := range script.Removals {
				if r.Index <= last {
					return false
				}
				if r.Index >= len(existing) || existing[r.Index] != r.Name {
					return false
				}
				last = r.Index
			}
			return true
		},
		genNameLists(),
	))

	properties.Property("applying twice is idempotent", prop.ForAll(
		func(lists [2][]string) bool {
			existing, desired := lists[0], lists[1]
			if len(desired) == 0 {
				return true
			}
			once, _, err := Apply(fieldsFromNames(existing...), desired)
			if err != nil {
				return false
			}
			twice, script, err := Apply(once, desired)
			if err != nil {
				return false
			}
			if !script.IsNoop(Names(once)) {
				return false
			}
			if len(once) != len(twice) {
				return false
			}
			for i := range once {
				if once[i] != twice[i] {
					return false
				}
			}
			return true
		},
		genNameLists(),
	))

	properties.TestingRun(t)
}
