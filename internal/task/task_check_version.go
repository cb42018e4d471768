package task

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Global-Edge-English/anki-connect/global"
	"github.com/Global-Edge-English/anki-connect/internal/app"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
)

const ServiceVersionURL = "https://img.shields.io/github/v/release/Global-Edge-English/anki-connect.json"

type ShieldsJSON struct {
	Message string `json:"message"`
}

// CheckVersionTask 定期检查服务端是否有新版本
type CheckVersionTask struct {
	app *app.App
}

// NewCheckVersionTask 创建版本检查任务
func NewCheckVersionTask(appContainer *app.App) Task {
	return &CheckVersionTask{app: appContainer}
}

func (t *CheckVersionTask) Name() string {
	return "check_version"
}

func (t *CheckVersionTask) Run(ctx context.Context) error {
	latest, err := t.fetchVersion(ServiceVersionURL)
	if err != nil {
		return err
	}

	current := global.Version
	if !strings.HasPrefix(current, "v") {
		current = "v" + current
	}
	if !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}

	if semver.Compare(latest, current) > 0 {
		t.app.Logger().Warn("a newer release is available",
			zap.String("current", current),
			zap.String("latest", latest))
	}
	return nil
}

func (t *CheckVersionTask) fetchVersion(url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var sj ShieldsJSON
	if err := json.Unmarshal(body, &sj); err != nil {
		return "", err
	}

	return sj.Message, nil
}

func (t *CheckVersionTask) LoopInterval() time.Duration {
	return 30 * time.Minute
}

func (t *CheckVersionTask) IsStartupRun() bool {
	return true
}
