package webdav

import (
	"github.com/Global-Edge-English/anki-connect/pkg/fileurl"

	"github.com/pkg/errors"
)

func (w *WebDAV) Delete(fileKey string) error {
	fileKey = fileurl.PathSuffixCheckAdd(w.Config.CustomPath, "/") + fileKey
	return errors.Wrap(w.Client.Remove(fileKey), "webdav")
}
