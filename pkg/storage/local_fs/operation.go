package local_fs

import (
	"io"
	"os"
	"time"

	"github.com/Global-Edge-English/anki-connect/pkg/fileurl"

	"github.com/pkg/errors"
)

// SendFile writes the reader content under the save path, preserving
// the given modification time.
// SendFile 将文件内容写入保存路径，并保留修改时间
func (p *LocalFS) SendFile(fileKey string, file io.Reader, cType string, modTime time.Time) (string, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	return p.SendContent(fileKey, content, modTime)
}

func (p *LocalFS) SendContent(fileKey string, content []byte, modTime time.Time) (string, error) {
	dstFileKey := p.getSavePath() + fileKey

	if err := fileurl.CreatePath(dstFileKey, 0754); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}

	if err := os.WriteFile(dstFileKey, content, 0644); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}

	if !modTime.IsZero() {
		if err := os.Chtimes(dstFileKey, modTime, modTime); err != nil {
			return "", errors.Wrap(err, "local_fs")
		}
	}

	return dstFileKey, nil
}
