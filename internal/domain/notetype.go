package domain

import (
	"regexp"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/fieldset"
)

// Template is one card template of a note type. QFmt and AFmt hold the
// mustache-style question and answer formats.
type Template struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
	QFmt string `json:"qfmt"`
	AFmt string `json:"afmt"`
}

// NoteType (model) 笔记类型领域模型
// 字段列表只通过 fieldset 协调器变更
type NoteType struct {
	ID        int64
	Name      string
	CSS       string
	Fields    []fieldset.Field
	Templates []Template
	// SortFieldOrd is the ordinal of the field notes are sorted by.
	SortFieldOrd int
	IsCloze      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FieldNames returns the ordered field name list.
func (nt *NoteType) FieldNames() []string {
	return fieldset.Names(nt.Fields)
}

// FieldIndex returns the ordinal of a field name, or -1.
func (nt *NoteType) FieldIndex(name string) int {
	for i, f := range nt.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

var mustacheFieldRe = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// TemplateFieldNames extracts referenced field names from a template
// format string, stripping filter prefixes like {{cloze:Text}}.
// Special references (FrontSide, tags...) are skipped.
func TemplateFieldNames(format string) []string {
	var names []string
	seen := map[string]struct{}{}
	for _, m := range mustacheFieldRe.FindAllStringSubmatch(format, -1) {
		name := m[1]
		// drop filter chain prefixes
		if idx := lastColon(name); idx >= 0 {
			name = name[idx+1:]
		}
		switch name {
		case "FrontSide", "Tags", "Type", "Deck", "Subdeck", "Card":
			continue
		}
		if name == "" || name[0] == '#' || name[0] == '/' || name[0] == '^' {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func lastColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}
