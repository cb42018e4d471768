package code

import "net/http"

// Success codes // 成功码
var (
	Success = NewSuss(200, lang{en: "Success", zh_cn: "成功"})
)

// Generic request errors // 通用请求错误
var (
	ErrorInvalidParams = NewError(400001, lang{en: "Invalid request parameters", zh_cn: "请求参数错误"})
	ErrorInvalidAPIKey = NewError(401001, lang{en: "Invalid API key", zh_cn: "API 密钥无效"}).withStatusCode(http.StatusUnauthorized)
	ErrorNotFoundAPI   = NewError(404001, lang{en: "API not found", zh_cn: "接口不存在"}).withStatusCode(http.StatusNotFound)
	ErrorTooManyRequests = NewError(429001, lang{en: "Too many requests", zh_cn: "请求过多"}).withStatusCode(http.StatusTooManyRequests)
	ErrorServerInternal  = NewError(500001, lang{en: "Internal server error", zh_cn: "服务内部错误"}).withStatusCode(http.StatusInternalServerError)
)

// RPC protocol errors // RPC 协议错误
var (
	ErrorUnsupportedAction = NewError(600001, lang{en: "unsupported action", zh_cn: "不支持的操作"})
	ErrorInvalidRPCBody    = NewError(600002, lang{en: "invalid request body", zh_cn: "请求体无效"})
)

// Collection errors // 集合数据错误
var (
	ErrorValidation         = NewError(610001, lang{en: "validation failed", zh_cn: "校验失败"})
	ErrorDeckNotFound       = NewError(610101, lang{en: "deck does not exist", zh_cn: "牌组不存在"})
	ErrorDeckAlreadyExists  = NewError(610102, lang{en: "deck already exists", zh_cn: "牌组已存在"})
	ErrorDeckConfigNotFound = NewError(610103, lang{en: "deck config does not exist", zh_cn: "牌组配置不存在"})
	ErrorDeckConfigDefault  = NewError(610104, lang{en: "the default deck config cannot be removed", zh_cn: "默认牌组配置不可删除"})
	ErrorDeckFiltered       = NewError(610105, lang{en: "operation not supported for filtered decks", zh_cn: "筛选牌组不支持该操作"})
	ErrorDeckDefault        = NewError(610106, lang{en: "the default deck can not be deleted", zh_cn: "默认牌组不可删除"})
	ErrorModelNotFound      = NewError(610201, lang{en: "note type does not exist", zh_cn: "笔记类型不存在"})
	ErrorModelAlreadyExists = NewError(610202, lang{en: "note type already exists", zh_cn: "笔记类型已存在"})
	ErrorModelInUse         = NewError(610203, lang{en: "note type is in use", zh_cn: "笔记类型正在使用中"})
	ErrorNoteNotFound       = NewError(610301, lang{en: "note does not exist", zh_cn: "笔记不存在"})
	ErrorNoteDuplicate      = NewError(610302, lang{en: "note is a duplicate", zh_cn: "笔记重复"})
	ErrorCardNotFound       = NewError(610401, lang{en: "card does not exist", zh_cn: "卡片不存在"})
	ErrorInvalidEase        = NewError(610402, lang{en: "invalid ease value, must be between 1-4", zh_cn: "评分无效，必须在 1-4 之间"})
)

// Profile errors // 配置档案错误
var (
	ErrorProfileNotFound  = NewError(620001, lang{en: "profile does not exist", zh_cn: "配置档案不存在"})
	ErrorProfileExists    = NewError(620002, lang{en: "profile already exists", zh_cn: "配置档案已存在"})
	ErrorProfileProtected = NewError(620003, lang{en: "the default profile cannot be deleted", zh_cn: "默认配置档案不可删除"})
	ErrorProfileName      = NewError(620004, lang{en: "profile name contains invalid characters", zh_cn: "配置档案名称包含非法字符"})
)

// Media and storage errors // 媒体与存储错误
var (
	ErrorMediaNotFound      = NewError(630001, lang{en: "media file does not exist", zh_cn: "媒体文件不存在"})
	ErrorInvalidStorageType = NewError(630002, lang{en: "invalid storage type", zh_cn: "存储类型无效"})
	ErrorMediaEncoding      = NewError(630003, lang{en: "media data is not valid base64", zh_cn: "媒体数据不是有效的 base64"})
)
