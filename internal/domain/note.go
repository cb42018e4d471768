package domain

import (
	"sort"
	"strings"
	"time"
)

// Note 笔记领域模型
// FieldValues 与所属 NoteType 的字段顺序一一对应
type Note struct {
	ID          int64
	ModelID     int64
	FieldValues []string
	Tags        []string
	// Checksum is the duplicate-detection checksum of the first field's
	// stripped text.
	Checksum  int64
	Mod       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SortField returns the value of the first field, which drives
// duplicate detection.
func (n *Note) SortField() string {
	if len(n.FieldValues) == 0 {
		return ""
	}
	return n.FieldValues[0]
}

// HasTag reports whether the note carries the tag, case-insensitively.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// AddTags merges tags into the note, deduplicating case-insensitively
// and keeping the list sorted.
func (n *Note) AddTags(tags ...string) {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || n.HasTag(tag) {
			continue
		}
		n.Tags = append(n.Tags, tag)
	}
	sort.Strings(n.Tags)
}

// RemoveTags drops tags from the note, case-insensitively.
func (n *Note) RemoveTags(tags ...string) {
	for _, tag := range tags {
		for i, t := range n.Tags {
			if strings.EqualFold(t, tag) {
				n.Tags = append(n.Tags[:i], n.Tags[i+1:]...)
				break
			}
		}
	}
}

// JoinTags renders the tag list in collection storage form, a single
// space-separated string padded with spaces.
func JoinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " " + strings.Join(tags, " ") + " "
}

// SplitTags parses the collection storage form back to a list.
func SplitTags(s string) []string {
	return strings.Fields(s)
}
