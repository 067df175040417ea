package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage MinIO存储实现
type MinioStorage struct {
	client     *minio.Client // MinIO客户端
	bucketName string        // 存储桶名称
}

// MinioConfig MinIO存储配置
type MinioConfig struct {
	Endpoint  string // MinIO服务端点
	AccessKey string // 访问密钥ID
	SecretKey string // 秘密访问密钥
	UseSSL    bool   // 是否使用SSL
	Bucket    string // 存储桶名称
}

// NewMinioStorage 创建MinIO存储实例，存储桶不存在时创建
func NewMinioStorage(cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %v", err)
		}
	}

	return &MinioStorage{
		client:     client,
		bucketName: cfg.Bucket,
	}, nil
}

// Save 上传文件到MinIO
// 上传文件需要已知大小，先读入内存；单个CERSAI报告通常只有几百KB
func (s *MinioStorage) Save(ctx context.Context, reader io.Reader, filename string) (FileInfo, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to read file content: %v", err)
	}

	id := newID()
	key := objectKey(id, filename)
	contentType := getMimeType(filename)

	info, err := s.client.PutObject(ctx, s.bucketName, key,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to upload file: %v", err)
	}

	_, name, _ := parseKey(key)
	return FileInfo{
		ID:        id,
		Name:      name,
		Size:      info.Size,
		MimeType:  contentType,
		Path:      key,
		CreatedAt: info.LastModified,
	}, nil
}

// Get 获取MinIO中的文件
func (s *MinioStorage) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	info, err := s.Stat(ctx, id)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, info.Path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %v", err)
	}
	return obj, nil
}

// Stat 根据ID前缀查找对象
func (s *MinioStorage) Stat(ctx context.Context, id string) (FileInfo, error) {
	if !validID(id) {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	files, err := s.list(ctx, archivePrefix+"/"+id+"/")
	if err != nil {
		return FileInfo{}, err
	}
	if len(files) == 0 {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return files[0], nil
}

// Delete 从MinIO中删除文件
func (s *MinioStorage) Delete(ctx context.Context, id string) error {
	info, err := s.Stat(ctx, id)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucketName, info.Path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %v", err)
	}
	return nil
}

// List 列出所有归档文件
func (s *MinioStorage) List(ctx context.Context) ([]FileInfo, error) {
	return s.list(ctx, archivePrefix+"/")
}

func (s *MinioStorage) list(ctx context.Context, prefix string) ([]FileInfo, error) {
	var files []FileInfo

	objectCh := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %v", object.Err)
		}

		id, name, ok := parseKey(object.Key)
		if !ok {
			continue
		}
		files = append(files, FileInfo{
			ID:        id,
			Name:      name,
			Size:      object.Size,
			MimeType:  getMimeType(name),
			Path:      object.Key,
			CreatedAt: object.LastModified,
		})
	}
	return files, nil
}
