package global

import (
	"github.com/Global-Edge-English/anki-connect/pkg/fileurl"
)

var (
	// 程序执行目录
	ROOT string
	Name string = "Anki Connect Gateway"
)

func init() {
	filename := fileurl.GetExePath()
	ROOT = filename + "/"
}
