package domain

import (
	"regexp"
	"strings"
	"time"
)

// DefaultProfileName is the profile created on first start. It can be
// renamed but never deleted.
const DefaultProfileName = "User 1"

// Profile 用户档案领域模型
// 每个档案拥有独立的收藏数据库
type Profile struct {
	ID   int64
	Name string
	// Slug is the filesystem and database safe identifier derived from
	// the name. It is fixed at creation and survives renames.
	Slug      string
	IsDefault bool
	// IsActive marks the profile the gateway is currently serving.
	// Exactly one profile carries it, and it survives restarts.
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

var profileSlugRe = regexp.MustCompile(`[^a-z0-9_-]+`)

// ProfileSlug derives a storage-safe slug from a profile name.
func ProfileSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = profileSlugRe.ReplaceAllString(slug, "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "profile"
	}
	return slug
}

// ValidProfileName reports whether a profile name is acceptable: not
// blank and free of path separators.
func ValidProfileName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, `/\`+"\x00")
}
