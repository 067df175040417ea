package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/cersai-digest/api/middleware"
	"github.com/fyerfyer/cersai-digest/api/model"
	"github.com/fyerfyer/cersai-digest/internal/export"
	"github.com/fyerfyer/cersai-digest/internal/extract"
	"github.com/fyerfyer/cersai-digest/internal/models"
	"github.com/fyerfyer/cersai-digest/internal/services"
	"github.com/fyerfyer/cersai-digest/pkg/taskqueue"
)

// 兼容接口的固定错误信息
const (
	msgNoFilePart     = "No file part in the request. Please upload files with the key 'files[]'."
	msgNoFiles        = "No files were selected for upload."
	msgNoValidFiles   = "No valid files to process."
	msgInvalidFormat  = "Invalid format"
	msgSaveFailed     = "Failed to save summary"
	msgExportFailed   = "Export failed: %s"
	msgSummaryMissing = "Summary not found"
)

// SummaryHandler 处理CERSAI报告批处理、摘要和导出请求
type SummaryHandler struct {
	service *services.SummaryService
	logger  *logrus.Logger
}

// NewSummaryHandler 创建摘要处理器
func NewSummaryHandler(service *services.SummaryService) *SummaryHandler {
	return &SummaryHandler{
		service: service,
		logger:  middleware.GetLogger(),
	}
}

// ProcessInfo 返回批处理接口说明
// GET /api/process
func (h *SummaryHandler) ProcessInfo(c *gin.Context) {
	c.JSON(http.StatusOK, model.ProcessInfoResponse{
		Message:     "PDF Processing API is running",
		Endpoint:    "/api/process",
		Method:      "POST",
		Description: "Upload PDF files for processing",
	})
}

// Process 同步处理上传的报告，返回批处理结果
// POST /api/process
func (h *SummaryHandler) Process(c *gin.Context) {
	uploads, ok := h.readUploads(c)
	if !ok {
		return
	}

	override := services.ParseOverride(json.RawMessage(c.PostForm(model.FormCompanyDetails)), h.logger)

	result, err := h.service.Process(c.Request.Context(), uploads, override)
	if err != nil {
		if errors.Is(err, extract.ErrNoSources) {
			c.JSON(http.StatusBadRequest, model.NewErrorBody(err.Error()))
			return
		}
		h.logger.WithError(err).Error("Failed to process batch")
		c.JSON(http.StatusInternalServerError, model.NewErrorBody(err.Error()))
		return
	}

	c.JSON(http.StatusOK, result)
}

// ProcessAsync 提交异步批处理任务
// POST /api/process/async
func (h *SummaryHandler) ProcessAsync(c *gin.Context) {
	if !h.service.AsyncEnabled() {
		middleware.HandleError(c, middleware.NewBusinessError("Async processing is not enabled"))
		return
	}

	uploads, ok := h.readUploads(c)
	if !ok {
		return
	}

	taskID, err := h.service.SubmitAsync(c.Request.Context(), uploads, json.RawMessage(c.PostForm(model.FormCompanyDetails)))
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError("Failed to submit batch", err.Error()))
		return
	}

	c.JSON(http.StatusAccepted, model.NewSuccessResponse(model.AsyncSubmitResponse{
		TaskID: taskID,
		Status: string(taskqueue.StatusPending),
	}))
}

// SaveSummary 保存批处理结果
// POST /api/save_summary
func (h *SummaryHandler) SaveSummary(c *gin.Context) {
	var req model.SaveSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid save summary request")
		c.JSON(http.StatusBadRequest, model.NewErrorBody(services.ErrMissingSummary.Error()))
		return
	}

	reportID, summaryID, err := h.service.SaveSummary(c.Request.Context(), req.FileName, req.Summary, req.CompanyDetails)
	if err != nil {
		if errors.Is(err, services.ErrMissingSummary) {
			c.JSON(http.StatusBadRequest, model.NewErrorBody(err.Error()))
			return
		}
		if errors.Is(err, services.ErrInvalidSummary) {
			h.logger.WithError(err).WithField("file_name", req.FileName).Warn("Rejected summary")
			c.JSON(http.StatusBadRequest, model.NewErrorBody(services.ErrInvalidSummary.Error()))
			return
		}
		h.logger.WithError(err).WithField("file_name", req.FileName).Error("Failed to save summary")
		c.JSON(http.StatusInternalServerError, model.NewErrorBody(msgSaveFailed))
		return
	}

	c.JSON(http.StatusOK, model.SaveSummaryResponse{
		ReportID:  reportID,
		SummaryID: summaryID,
	})
}

// GetSummary 获取保存的批处理结果
// GET /api/get_summary/:id
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	var req model.SummaryRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusNotFound, model.NewErrorBody(msgSummaryMissing))
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), req.ID)
	if err != nil {
		h.writeLookupError(c, req.ID, err)
		return
	}

	c.JSON(http.StatusOK, model.SummaryResponse{Summary: summary})
}

// Export 以指定格式导出摘要
// GET /api/export/:id/:format
func (h *SummaryHandler) Export(c *gin.Context) {
	id := c.Param("id")

	// 先确认摘要存在，再校验格式
	if _, err := h.service.GetSummary(c.Request.Context(), id); err != nil {
		h.writeLookupError(c, id, err)
		return
	}

	var req model.ExportRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorBody(msgInvalidFormat))
		return
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorBody(msgInvalidFormat))
		return
	}

	doc, err := h.service.Export(c.Request.Context(), req.ID, format)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"report_id": req.ID,
			"format":    format,
			"error":     err.Error(),
		}).Error("Export failed")
		c.JSON(http.StatusInternalServerError, model.NewErrorBody(fmt.Sprintf(msgExportFailed, err.Error())))
		return
	}

	if doc.FileName != "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.FileName))
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// readUploads 读取上传的文件，失败时已写入响应
func (h *SummaryHandler) readUploads(c *gin.Context) ([]services.Upload, bool) {
	form, err := c.MultipartForm()
	if err != nil || form == nil || len(form.File[model.FormFiles]) == 0 {
		c.JSON(http.StatusBadRequest, model.NewErrorBody(msgNoFilePart))
		return nil, false
	}

	headers := form.File[model.FormFiles]
	if headers[0].Filename == "" {
		c.JSON(http.StatusBadRequest, model.NewErrorBody(msgNoFiles))
		return nil, false
	}

	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		if strings.TrimSpace(fh.Filename) == "" {
			continue
		}
		content, err := readFile(fh)
		if err != nil {
			h.logger.WithFields(logrus.Fields{
				"filename": fh.Filename,
				"error":    err.Error(),
			}).Error("Failed to read uploaded file")
			c.JSON(http.StatusBadRequest, model.NewErrorBody(fmt.Sprintf("Failed to read file: %s", fh.Filename)))
			return nil, false
		}
		uploads = append(uploads, services.Upload{
			Name:    filepath.Base(fh.Filename),
			Content: content,
		})
	}

	if len(uploads) == 0 {
		c.JSON(http.StatusBadRequest, model.NewErrorBody(msgNoValidFiles))
		return nil, false
	}

	h.logger.WithField("files", len(uploads)).Info("Received files for processing")
	return uploads, true
}

// writeLookupError 写入摘要查询错误
func (h *SummaryHandler) writeLookupError(c *gin.Context, id string, err error) {
	if errors.Is(err, models.ErrSummaryNotFound) {
		c.JSON(http.StatusNotFound, model.NewErrorBody(msgSummaryMissing))
		return
	}
	h.logger.WithError(err).WithField("report_id", id).Error("Failed to get summary")
	c.JSON(http.StatusInternalServerError, model.NewErrorBody(err.Error()))
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}
