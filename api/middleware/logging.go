package middleware

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	if os.Getenv("DEBUG") == "true" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// 常用日志字段
const (
	FieldTraceID  = "trace_id"
	FieldPath     = "path"
	FieldMethod   = "method"
	FieldStatus   = "status_code"
	FieldLatency  = "latency"
	FieldClientIP = "client_ip"
	FieldUploads  = "uploads" // 本次请求上传的报告数
	FieldBytes    = "bytes"
)

// 调试日志中请求体和响应体的最大记录长度
const maxLoggedBody = 4 << 10

// Logger 请求日志中间件，按状态码选择日志级别
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			FieldStatus:   status,
			FieldLatency:  time.Since(start).String(),
			FieldClientIP: c.ClientIP(),
			FieldMethod:   c.Request.Method,
			FieldPath:     path,
			FieldTraceID:  traceIDOf(c),
			FieldBytes:    c.Writer.Size(),
		}
		if form := c.Request.MultipartForm; form != nil {
			n := 0
			for _, files := range form.File {
				n += len(files)
			}
			fields[FieldUploads] = n
		}

		entry := log.WithFields(fields)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("HTTP request")
		case status >= http.StatusBadRequest:
			entry.Warn("HTTP request")
		default:
			entry.Info("HTTP request")
		}
	}
}

// RequestBodyLog 调试级别下记录请求体
// multipart上传的是报告原件，只记录长度
func RequestBodyLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		if log.Level < logrus.DebugLevel || c.Request.Body == nil {
			c.Next()
			return
		}

		entry := log.WithFields(logrus.Fields{
			FieldMethod:  c.Request.Method,
			FieldPath:    c.Request.URL.Path,
			FieldTraceID: traceIDOf(c),
		})

		if strings.HasPrefix(c.ContentType(), "multipart/") {
			entry.WithField(FieldBytes, c.Request.ContentLength).Debug("Multipart request")
			c.Next()
			return
		}

		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		if len(body) > 0 {
			entry.WithField("body", truncate(body)).Debug("Request body")
		}

		c.Next()
	}
}

// ResponseLogger 调试级别下记录JSON响应体，导出的文件只记录长度
func ResponseLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if log.Level < logrus.DebugLevel {
			c.Next()
			return
		}

		writer := &responseBodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		entry := log.WithFields(logrus.Fields{
			FieldMethod:  c.Request.Method,
			FieldPath:    c.Request.URL.Path,
			FieldStatus:  c.Writer.Status(),
			FieldTraceID: traceIDOf(c),
		})
		if strings.Contains(writer.Header().Get("Content-Type"), "json") {
			entry.WithField("response", truncate(writer.body.Bytes())).Debug("Response body")
		} else {
			entry.WithField(FieldBytes, writer.body.Len()).Debug("Response body omitted")
		}
	}
}

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseBodyWriter) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...(truncated)"
	}
	return string(b)
}

// SetTraceID 将追踪ID设置到上下文和响应头中
func SetTraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = generateTraceID()
		}

		c.Set("TraceID", traceID)
		c.Header("X-Trace-ID", traceID)
		c.Next()
	}
}

func generateTraceID() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()[:8]
}

// GetLogger 返回进程共享的日志记录器
func GetLogger() *logrus.Logger {
	return log
}

// LogOptions 日志输出配置
type LogOptions struct {
	Level      string
	File       string // 为空时只输出到标准输出
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ConfigureLogger 按配置设置日志级别和输出
// 指定日志文件时同时写入标准输出和按大小轮转的文件
func ConfigureLogger(opts LogOptions) (io.Closer, error) {
	if opts.Level != "" {
		level, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			level = logrus.InfoLevel
		}
		log.SetLevel(level)
	}

	if opts.File == "" {
		log.SetOutput(os.Stdout)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return rotator, nil
}
