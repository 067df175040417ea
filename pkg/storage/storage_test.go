package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLocalStorage 测试本地存储实现
func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()

	s, err := NewLocalStorage(LocalConfig{Path: tempDir})
	require.NoError(t, err)

	content := "%PDF-1.4 sample report"
	info, err := s.Save(ctx, bytes.NewBufferString(content), "/tmp/uploads/report 1.pdf")
	require.NoError(t, err)

	t.Run("Save", func(t *testing.T) {
		assert.True(t, validID(info.ID))
		assert.Equal(t, "report 1.pdf", info.Name)
		assert.Equal(t, int64(len(content)), info.Size)
		assert.Equal(t, "application/pdf", info.MimeType)
		assert.Equal(t, "reports/"+info.ID+"/report 1.pdf", info.Path)

		_, err := os.Stat(filepath.Join(tempDir, filepath.FromSlash(info.Path)))
		assert.NoError(t, err, "file should be saved to disk")
	})

	t.Run("Get", func(t *testing.T) {
		data, err := ReadAll(ctx, s, info.ID)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	})

	t.Run("List", func(t *testing.T) {
		other, err := s.Save(ctx, bytes.NewBufferString("flat text"), "flat.txt")
		require.NoError(t, err)

		files, err := s.List(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(files))
		for _, f := range files {
			ids = append(ids, f.ID)
		}
		assert.ElementsMatch(t, []string{info.ID, other.ID}, ids)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := s.Get(ctx, uuid.New().String())
		assert.ErrorIs(t, err, ErrNotFound)

		// 非UUID的ID不会被解析为路径
		_, err = s.Stat(ctx, "../../etc/passwd")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, info.ID))
		_, err := s.Stat(ctx, info.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, info.ID), ErrNotFound)
	})
}

func TestObjectKey(t *testing.T) {
	id := uuid.New().String()

	assert.Equal(t, "reports/"+id+"/a.pdf", objectKey(id, "a.pdf"))
	assert.Equal(t, "reports/"+id+"/b.pdf", objectKey(id, `C:\scans\b.pdf`))
	assert.Equal(t, "reports/"+id+"/upload", objectKey(id, ""))

	gotID, name, ok := parseKey(objectKey(id, "a.pdf"))
	assert.True(t, ok)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "a.pdf", name)

	_, _, ok = parseKey("reports/not-a-uuid/a.pdf")
	assert.False(t, ok)
	_, _, ok = parseKey("other/" + id + "/a.pdf")
	assert.False(t, ok)
}

// TestMinioStorage 测试MinIO存储实现
// 需要设置MINIO_ENDPOINT指向可用的MinIO服务
func TestMinioStorage(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set, skipping MinIO tests")
	}

	ctx := context.Background()
	s, err := NewMinioStorage(MinioConfig{
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "cersai-test",
	})
	require.NoError(t, err)

	info, err := s.Save(ctx, bytes.NewBufferString("minio content"), "minio.txt")
	require.NoError(t, err)
	defer s.Delete(ctx, info.ID)

	rc, err := s.Get(ctx, info.ID)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "minio content", string(data))

	stat, err := s.Stat(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "minio.txt", stat.Name)
}

// TestStorageFactory 测试存储工厂函数
func TestStorageFactory(t *testing.T) {
	s, err := New(Config{Type: "local", Local: LocalConfig{Path: t.TempDir()}})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(Config{Type: "s3"})
	assert.Error(t, err)
}
