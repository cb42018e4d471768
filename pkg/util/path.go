// Package util 提供通用工具函数
package util

import "strings"

// SanitizeFileName strips characters that are unsafe in media file
// names across platforms.
// SanitizeFileName 去除跨平台文件名中的非法字符
func SanitizeFileName(name string) string {
	replacer := strings.NewReplacer(
		"/", "", "\\", "", ":", "", "*", "",
		"?", "", "\"", "", "<", "", ">", "", "|", "", "\x00", "",
	)
	return strings.TrimSpace(replacer.Replace(name))
}
