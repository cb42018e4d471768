package webdav

import (
	"io"
	"os"
	"time"

	"github.com/Global-Edge-English/anki-connect/pkg/fileurl"

	"github.com/pkg/errors"
)

// SendFile 将文件上传到 WebDAV 服务器
func (w *WebDAV) SendFile(fileKey string, file io.Reader, cType string, modTime time.Time) (string, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	return w.SendContent(fileKey, content, modTime)
}

// SendContent 将二进制内容上传到 WebDAV 服务器
func (w *WebDAV) SendContent(fileKey string, content []byte, modTime time.Time) (string, error) {
	fileKey = fileurl.PathSuffixCheckAdd(w.Config.CustomPath, "/") + fileKey

	if w.Config.CustomPath != "" {
		if err := w.Client.MkdirAll(w.Config.CustomPath, 0644); err != nil {
			return "", errors.Wrap(err, "webdav")
		}
	}

	if err := w.Client.Write(fileKey, content, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "webdav")
	}

	return fileKey, nil
}
