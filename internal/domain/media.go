package domain

import "time"

// MediaFile 媒体文件领域模型
type MediaFile struct {
	Name  string    `json:"name"`
	Size  int64     `json:"size"`
	Mtime time.Time `json:"mtime"`
}
