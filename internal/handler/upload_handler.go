package handler

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageflow/internal/service"
	_ "golang.org/x/image/webp"
)

const maxThumbnailBytes = 5 << 20

var thumbnailExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

// UploadThumbnail 保存页面缩略图并更新页面的 thumbnail 字段
func (a *API) UploadThumbnail(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "image file is required")
		return
	}
	if file.Size > maxThumbnailBytes {
		respondError(c, http.StatusBadRequest, "image is too large")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read image")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxThumbnailBytes+1))
	if err != nil || len(data) > maxThumbnailBytes {
		respondError(c, http.StatusBadRequest, "failed to read image")
		return
	}

	// 通过文件头识别真实格式，而不是信任 Content-Type
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		respondError(c, http.StatusBadRequest, "unsupported image format")
		return
	}
	ext, ok := thumbnailExtensions[format]
	if !ok {
		respondError(c, http.StatusBadRequest, "unsupported image format")
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		a.log.Error().Err(err).Str("dir", a.uploadDir).Msg("failed to create upload dir")
		respondError(c, http.StatusInternalServerError, "failed to store image")
		return
	}

	filename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.NewString(), ext)
	path := filepath.Join(a.uploadDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		a.log.Error().Err(err).Str("path", path).Msg("failed to write thumbnail")
		respondError(c, http.StatusInternalServerError, "failed to store image")
		return
	}

	url := a.uploadURL + "/" + filename
	page, err := a.pages.UpdatePage(c.Request.Context(), c.Param("id"), service.PageUpdate{Thumbnail: &url}, actorFrom(c))
	if err != nil {
		_ = os.Remove(path)
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     url,
		"page":    page,
	})
}
