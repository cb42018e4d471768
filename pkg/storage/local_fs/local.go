package local_fs

import (
	"github.com/Global-Edge-English/anki-connect/pkg/fileurl"
)

type Config struct {
	IsEnabled  bool   `yaml:"is-enable" default:"true"`
	SavePath   string `yaml:"save-path" default:"storage/media"`
	CustomPath string `yaml:"custom-path"`
}

type LocalFS struct {
	Config *Config
}

func NewClient(conf *Config) (*LocalFS, error) {
	return &LocalFS{
		Config: conf,
	}, nil
}

func (p *LocalFS) getSavePath() string {
	if p.Config.SavePath == "" {
		return "storage/media/"
	}
	return fileurl.PathSuffixCheckAdd(p.Config.SavePath, "/")
}
