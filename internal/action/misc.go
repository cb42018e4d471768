package action

import (
	"context"
	"runtime"
	"time"

	"github.com/Global-Edge-English/anki-connect/global"
	"github.com/Global-Edge-English/anki-connect/pkg/code"
	"github.com/Global-Edge-English/anki-connect/pkg/util"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// APIVersion 服务端支持的最高协议版本
const APIVersion = 6

type multiParams struct {
	Actions []*Request `json:"actions" binding:"required"`
}

func (r *Registry) registerMiscActions() {
	r.register("version", r.version)
	r.register("addonVersion", r.addonVersion)
	r.register("debugInfo", r.debugInfo)
	r.register("multi", r.multi)
}

func (r *Registry) version(ctx context.Context, req *Request) (interface{}, error) {
	return APIVersion, nil
}

func (r *Registry) addonVersion(ctx context.Context, req *Request) (interface{}, error) {
	return global.Version, nil
}

// debugInfo 汇总主机与运行时信息, 便于排查客户端兼容问题
func (r *Registry) debugInfo(ctx context.Context, req *Request) (interface{}, error) {
	info := map[string]interface{}{
		"version":      global.Version,
		"gitTag":       global.GitTag,
		"buildTime":    global.BuildTime,
		"apiVersion":   APIVersion,
		"goVersion":    runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"numCPU":       runtime.NumCPU(),
		"numGoroutine": runtime.NumGoroutine(),
		"osName":       util.GetOSPrettyName(),
		"machineId":    util.GetMachineID(),
		"localTime":    time.Now().Format(time.RFC3339),
	}
	if h, err := host.Info(); err == nil {
		info["hostname"] = h.Hostname
		info["platform"] = h.Platform
		info["platformVersion"] = h.PlatformVersion
		info["uptime"] = h.Uptime
	}
	if m, err := mem.VirtualMemory(); err == nil {
		info["memTotal"] = m.Total
		info["memAvailable"] = m.Available
	}
	return info, nil
}

// multi 按序分发内嵌请求, 单个失败不中断其余请求
func (r *Registry) multi(ctx context.Context, req *Request) (interface{}, error) {
	var params multiParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}

	results := make([]interface{}, 0, len(params.Actions))
	for _, sub := range params.Actions {
		if sub == nil {
			results = append(results, errorItem(req.Version, code.ErrorInvalidParams))
			continue
		}
		if sub.Action == "multi" {
			// 禁止嵌套, 防止写队列内重入
			results = append(results, errorItem(req.Version, code.ErrorUnsupportedAction))
			continue
		}
		if sub.Version == 0 {
			sub.Version = req.Version
		}
		result, err := r.Dispatch(ctx, sub)
		if err != nil {
			results = append(results, errorItem(sub.Version, err))
			continue
		}
		if sub.Version > DefaultVersion {
			results = append(results, Envelope{Result: result})
		} else {
			results = append(results, result)
		}
	}
	return results, nil
}

// errorItem 按子请求协议版本包装错误项
func errorItem(version int, err error) interface{} {
	if version > DefaultVersion {
		msg := ErrorString(err)
		return Envelope{Error: &msg}
	}
	return nil
}
