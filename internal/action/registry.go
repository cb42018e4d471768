// Package action 实现 JSON-RPC 动作注册与分发
package action

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/middleware"
	"github.com/Global-Edge-English/anki-connect/internal/service"
	"github.com/Global-Edge-English/anki-connect/pkg/code"
	"github.com/Global-Edge-English/anki-connect/pkg/errors"
	"github.com/Global-Edge-English/anki-connect/pkg/logger"
	"github.com/Global-Edge-English/anki-connect/pkg/validator"
	"github.com/Global-Edge-English/anki-connect/pkg/writequeue"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// DefaultVersion 请求未携带 version 时的默认协议版本
const DefaultVersion = 4

// Request 单个 RPC 请求
type Request struct {
	Action  string          `json:"action"`
	Version int             `json:"version"`
	Params  json.RawMessage `json:"params"`
}

// Envelope version 大于 4 时的响应外壳
type Envelope struct {
	Result interface{} `json:"result"`
	Error  *string     `json:"error"`
}

// Handler 单个动作的处理函数
type Handler func(ctx context.Context, req *Request) (interface{}, error)

// actionEntry 注册表条目
type actionEntry struct {
	handler Handler
	// mutating 为真时经写队列按档案串行执行
	mutating bool
	// minVersion 动作可用的最低协议版本, 0 表示不限
	minVersion int
}

// Registry 动作注册表
type Registry struct {
	services   *Services
	actions    map[string]actionEntry
	writeQueue *writequeue.Manager
	validator  *validator.CustomValidator
	logger     *zap.Logger
}

// Services 动作层依赖的全部业务服务
type Services struct {
	Profile    service.ProfileService
	Deck       service.DeckService
	DeckConfig service.DeckConfigService
	Model      service.ModelService
	Note       service.NoteService
	Card       service.CardService
	Study      service.StudyService
	Media      service.MediaService
}

// NewRegistry 创建注册表并挂载全部动作
func NewRegistry(services *Services, wq *writequeue.Manager, logger *zap.Logger) *Registry {
	r := &Registry{
		services:   services,
		actions:    make(map[string]actionEntry),
		writeQueue: wq,
		validator:  validator.NewCustomValidator(),
		logger:     logger,
	}
	r.registerDeckActions()
	r.registerDeckConfigActions()
	r.registerModelActions()
	r.registerNoteActions()
	r.registerCardActions()
	r.registerStudyActions()
	r.registerMediaActions()
	r.registerProfileActions()
	r.registerMiscActions()
	return r
}

// register 注册只读动作
func (r *Registry) register(name string, h Handler) {
	r.actions[name] = actionEntry{handler: h}
}

// registerWrite 注册变更动作, 经写队列串行
func (r *Registry) registerWrite(name string, h Handler) {
	r.actions[name] = actionEntry{handler: h, mutating: true}
}

// alias 以别名再次挂载已注册动作, 旧版协议的动作名沿用同一实现
func (r *Registry) alias(name, target string) {
	if entry, ok := r.actions[target]; ok {
		r.actions[name] = entry
	}
}

// Dispatch 分发单个请求, 返回动作结果
func (r *Registry) Dispatch(ctx context.Context, req *Request) (interface{}, error) {
	if req.Version == 0 {
		req.Version = DefaultVersion
	}

	entry, ok := r.actions[req.Action]
	if !ok {
		observeAction(req.Action, "unsupported", 0)
		return nil, code.ErrorUnsupportedAction
	}
	if entry.minVersion > 0 && req.Version < entry.minVersion {
		observeAction(req.Action, "unsupported", 0)
		return nil, code.ErrorUnsupportedAction
	}

	start := time.Now()
	var result interface{}
	var err error

	if entry.mutating {
		profile, perr := r.services.Profile.CurrentSlug(ctx)
		if perr != nil {
			return nil, perr
		}
		qerr := r.writeQueue.Execute(ctx, profile, func() error {
			result, err = entry.handler(ctx, req)
			return nil
		})
		if qerr != nil {
			err = qerr
		}
	} else {
		result, err = entry.handler(ctx, req)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	observeAction(req.Action, status, time.Since(start))

	if err != nil {
		r.logger.Warn("action failed",
			zap.String(logger.FieldAction, req.Action),
			zap.Int("version", req.Version),
			zap.String(logger.FieldTraceID, middleware.GetTraceID(ctx)),
			zap.Error(err))
	}
	return result, err
}

// decodeParams 解析并校验动作参数
func (r *Registry) decodeParams(req *Request, v interface{}) error {
	if len(req.Params) > 0 {
		if err := sonic.Unmarshal(req.Params, v); err != nil {
			return code.ErrorInvalidParams.WithDetails(err.Error())
		}
	}
	if err := r.validator.ValidateStruct(v); err != nil {
		return code.ErrorValidation.WithDetails(err.Error())
	}
	return nil
}

// currentProfile 返回当前档案的收藏库标识
func (r *Registry) currentProfile(ctx context.Context) (string, error) {
	return r.services.Profile.CurrentSlug(ctx)
}

// ErrorString 将任意错误展平为协议错误串
func ErrorString(err error) string {
	if err == nil {
		return ""
	}
	if c, ok := err.(*code.Code); ok {
		if c.HaveDetails() {
			return c.Msg() + ": " + joinDetails(c.Details())
		}
		return c.Msg()
	}
	if appErr := errors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}

func joinDetails(details []string) string {
	out := ""
	for i, d := range details {
		if i > 0 {
			out += "; "
		}
		out += d
	}
	return out
}
