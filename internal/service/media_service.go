package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/pkg/code"
	"github.com/Global-Edge-English/anki-connect/pkg/fileurl"
	"github.com/Global-Edge-English/anki-connect/pkg/storage"
	"github.com/Global-Edge-English/anki-connect/pkg/util"
	"github.com/Global-Edge-English/anki-connect/pkg/workerpool"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaService 媒体文件业务服务接口
// 文件存放在按档案划分的本地目录, 可选异步镜像到云存储
type MediaService interface {
	// Store 以 base64 内容保存媒体文件, 返回实际文件名
	Store(ctx context.Context, profile string, filename string, dataB64 string) (string, error)

	// StoreFromURL 下载远端文件并保存
	StoreFromURL(ctx context.Context, profile string, filename string, url string) error

	// StoreFromPath 复制本地文件到媒体目录
	StoreFromPath(ctx context.Context, profile string, filename string, srcPath string) error

	// Retrieve 以 base64 返回媒体文件内容
	Retrieve(ctx context.Context, profile string, filename string) (string, error)

	// Delete 删除媒体文件
	Delete(ctx context.Context, profile string, filename string) error

	// List 返回档案媒体目录的全部文件
	List(ctx context.Context, profile string) ([]*domain.MediaFile, error)
}

// mediaService 实现 MediaService 接口
type mediaService struct {
	baseDir string
	mirror  storage.Storager
	pool    *workerpool.Pool
	client  *http.Client
	logger  *zap.Logger
}

// NewMediaService 创建 MediaService 实例
// mirror 为 nil 时不做云端镜像
func NewMediaService(baseDir string, mirror storage.Storager, pool *workerpool.Pool, logger *zap.Logger) MediaService {
	return &mediaService{
		baseDir: baseDir,
		mirror:  mirror,
		pool:    pool,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// dir 返回档案的媒体目录, 不存在时创建
func (s *mediaService) dir(profile string) (string, error) {
	dir := filepath.Join(s.baseDir, profile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", code.ErrorServerInternal.WithDetails(err.Error())
	}
	return dir, nil
}

// resolve 拼出媒体文件路径并拦截目录穿越
func (s *mediaService) resolve(profile string, filename string) (string, error) {
	clean := util.SanitizeFileName(filename)
	if clean == "" || clean != filename {
		return "", code.ErrorInvalidParams.WithDetails("invalid media file name")
	}
	dir, err := s.dir(profile)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, clean), nil
}

// Store 保存 base64 内容
func (s *mediaService) Store(ctx context.Context, profile string, filename string, dataB64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(dataB64)
	if err != nil {
		return "", code.ErrorMediaEncoding.WithDetails(err.Error())
	}
	path, err := s.resolve(profile, filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", code.ErrorServerInternal.WithDetails(err.Error())
	}
	s.mirrorAsync(profile, filename, data)
	return filename, nil
}

// StoreFromURL 下载远端文件并保存
func (s *mediaService) StoreFromURL(ctx context.Context, profile string, filename string, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return code.ErrorInvalidParams.WithDetails(err.Error())
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return code.ErrorServerInternal.WithDetails("unexpected status: " + resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	path, err := s.resolve(profile, filename)
	if err != nil {
		return err
	}
	// 先落临时文件再改名, 避免半成品文件
	tmp := path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	s.mirrorAsync(profile, filename, data)
	return nil
}

// StoreFromPath 复制本地文件到媒体目录
func (s *mediaService) StoreFromPath(ctx context.Context, profile string, filename string, srcPath string) error {
	if !fileurl.IsExist(srcPath) {
		return code.ErrorMediaNotFound.WithDetails("source file not found: " + srcPath)
	}
	if fileurl.IsDir(srcPath) {
		return code.ErrorInvalidParams.WithDetails("source path is a directory")
	}
	path, err := s.resolve(profile, filename)
	if err != nil {
		return err
	}
	if err := fileurl.CopyFile(srcPath, path); err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if s.mirror != nil && s.pool != nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
		s.mirrorAsync(profile, filename, data)
	}
	return nil
}

// Retrieve 以 base64 返回媒体文件内容
func (s *mediaService) Retrieve(ctx context.Context, profile string, filename string) (string, error) {
	path, err := s.resolve(profile, filename)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", code.ErrorMediaNotFound
		}
		return "", code.ErrorServerInternal.WithDetails(err.Error())
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Delete 删除媒体文件, 本地与镜像一并删除
func (s *mediaService) Delete(ctx context.Context, profile string, filename string) error {
	path, err := s.resolve(profile, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return code.ErrorMediaNotFound
		}
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if s.mirror != nil && s.pool != nil {
		key := profile + "/" + filename
		_ = s.pool.SubmitAsync(context.Background(), func(context.Context) error {
			if err := s.mirror.Delete(key); err != nil {
				s.logger.Warn("media mirror delete failed",
					zap.String("key", key), zap.Error(err))
			}
			return nil
		})
	}
	return nil
}

// List 返回档案媒体目录的全部文件
func (s *mediaService) List(ctx context.Context, profile string) ([]*domain.MediaFile, error) {
	dir, err := s.dir(profile)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	out := make([]*domain.MediaFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, &domain.MediaFile{
			Name:  e.Name(),
			Size:  info.Size(),
			Mtime: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// mirrorAsync 将文件异步镜像到云存储
func (s *mediaService) mirrorAsync(profile string, filename string, data []byte) {
	if s.mirror == nil || s.pool == nil {
		return
	}
	key := profile + "/" + filename
	now := time.Now()
	cType := mime.TypeByExtension(fileurl.GetFileExt(filename))
	if cType == "" {
		cType = "application/octet-stream"
	}
	if err := s.pool.SubmitAsync(context.Background(), func(context.Context) error {
		if _, err := s.mirror.SendFile(key, bytes.NewReader(data), cType, now); err != nil {
			s.logger.Warn("media mirror upload failed",
				zap.String("key", key), zap.Error(err))
		}
		return nil
	}); err != nil {
		s.logger.Warn("media mirror enqueue failed", zap.String("key", key), zap.Error(err))
	}
}

var _ MediaService = (*mediaService)(nil)
