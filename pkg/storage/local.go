package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage 本地文件存储实现
type LocalStorage struct {
	basePath string // 基础存储路径
}

// LocalConfig 本地存储配置
type LocalConfig struct {
	Path string // 本地存储路径
}

// NewLocalStorage 创建本地存储实例
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(absPath, archivePrefix), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %v", err)
	}

	return &LocalStorage{basePath: absPath}, nil
}

// Save 保存文件到本地存储
func (s *LocalStorage) Save(ctx context.Context, reader io.Reader, filename string) (FileInfo, error) {
	id := newID()
	key := objectKey(id, filename)
	filePath := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return FileInfo{}, fmt.Errorf("failed to create directory: %v", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create file: %v", err)
	}

	_, err = io.Copy(file, reader)
	file.Close()
	if err != nil {
		os.RemoveAll(filepath.Dir(filePath))
		return FileInfo{}, fmt.Errorf("failed to write file: %v", err)
	}

	return s.Stat(ctx, id)
}

// Get 获取文件内容
func (s *LocalStorage) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	filePath, err := s.findFile(id)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	return file, nil
}

// Stat 获取文件信息
func (s *LocalStorage) Stat(ctx context.Context, id string) (FileInfo, error) {
	filePath, err := s.findFile(id)
	if err != nil {
		return FileInfo{}, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to stat file: %v", err)
	}

	name := filepath.Base(filePath)
	return FileInfo{
		ID:        id,
		Name:      name,
		Size:      info.Size(),
		MimeType:  getMimeType(name),
		Path:      objectKey(id, name),
		CreatedAt: info.ModTime(),
	}, nil
}

// Delete 删除文件及其目录
func (s *LocalStorage) Delete(ctx context.Context, id string) error {
	filePath, err := s.findFile(id)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(filepath.Dir(filePath)); err != nil {
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

// List 列出所有文件
func (s *LocalStorage) List(ctx context.Context) ([]FileInfo, error) {
	root := filepath.Join(s.basePath, archivePrefix)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %v", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if !e.IsDir() || !validID(e.Name()) {
			continue
		}
		info, err := s.Stat(ctx, e.Name())
		if err != nil {
			continue
		}
		files = append(files, info)
	}
	return files, nil
}

// findFile 根据ID查找文件路径
func (s *LocalStorage) findFile(id string) (string, error) {
	if !validID(id) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	dir := filepath.Join(s.basePath, archivePrefix, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", fmt.Errorf("error searching for file: %v", err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, id)
}
