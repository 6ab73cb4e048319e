package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"salesanalytics/internal/importer"
)

// Upload 上传工作簿并导入 (SSE 流式响应)
// POST /api/upload
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
			return
		}
		badRequest(c, "Invalid form data")
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		badRequest(c, "No file uploaded")
		return
	}
	uploadedFile := files[0]

	// 保存到临时文件，导入结束后删除
	tmp, err := os.CreateTemp("", "salesanalytics_import_*.xlsx")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	tempFilePath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tempFilePath)

	if err := c.SaveUploadedFile(uploadedFile, tempFilePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	progressChan := h.ctrl.Import(c.Request.Context(), importer.ImportOptions{
		FileName: uploadedFile.Filename,
		FilePath: tempFilePath,
		FileSize: uploadedFile.Size,
		DryRun:   c.PostForm("dryRun") == "true",
	})

	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			log.Printf("[api] marshal progress event: %v", err)
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// ClearDataset 清空当前数据集
// DELETE /api/dataset
func (h *Handler) ClearDataset(c *gin.Context) {
	if err := h.ctrl.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
