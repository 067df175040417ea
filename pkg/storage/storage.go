package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound 归档中不存在该文件
var ErrNotFound = errors.New("file not found")

// archivePrefix 上传文件在存储中的根前缀
const archivePrefix = "reports"

// FileInfo 归档文件元数据
type FileInfo struct {
	ID        string    // 文件唯一标识符
	Name      string    // 原始文件名
	Size      int64     // 文件大小(字节)
	MimeType  string    // 文件MIME类型
	Path      string    // 存储中的对象键，形如 reports/<id>/<name>
	CreatedAt time.Time // 归档时间
}

// Storage 上传文档归档接口
// 每个文件以 reports/<id>/<原始文件名> 保存，id在归档时生成
type Storage interface {
	// Save 归档文件并返回文件信息
	Save(ctx context.Context, reader io.Reader, filename string) (FileInfo, error)

	// Get 获取文件内容
	Get(ctx context.Context, id string) (io.ReadCloser, error)

	// Stat 获取文件信息
	Stat(ctx context.Context, id string) (FileInfo, error)

	// Delete 删除文件
	Delete(ctx context.Context, id string) error

	// List 列出所有归档文件
	List(ctx context.Context) ([]FileInfo, error)
}

// Config 存储配置
type Config struct {
	Type  string // local 或 minio
	Local LocalConfig
	Minio MinioConfig
}

// New 根据配置创建存储实现
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.Local)
	case "minio":
		return NewMinioStorage(cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// ReadAll 读取归档文件的全部内容
func ReadAll(ctx context.Context, s Storage, id string) ([]byte, error) {
	rc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// newID 生成文件ID
func newID() string {
	return uuid.New().String()
}

// validID 只接受UUID形式的ID，防止路径穿越
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// objectKey 生成对象键
func objectKey(id, filename string) string {
	return path.Join(archivePrefix, id, sanitizeName(filename))
}

// parseKey 从对象键解析ID和文件名
func parseKey(key string) (id, name string, ok bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != archivePrefix || !validID(parts[1]) {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// sanitizeName 只保留文件名部分
func sanitizeName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

// getMimeType 根据文件扩展名判断MIME类型
func getMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
