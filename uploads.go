package main

import (
	"bytes"
	"io"
	"net/http"
	"path"
	"strings"

	"bitbucket.org/andeansoft/carniceria_backend/config"
	"bitbucket.org/andeansoft/carniceria_backend/models"
	"bitbucket.org/andeansoft/carniceria_backend/utils"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// uploadProductImageHandler accepts a multipart product photo, stores the
// original plus a 200px-wide thumbnail in GCS, and saves the image URL on
// the product.
func uploadProductImageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		logger := config.GetLogger()

		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		product, err := models.GetProduct(ctx, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 5MB limit"})
			return
		}
		mimeType := fileHeader.Header.Get("Content-Type")
		if !imageMimeTypes[mimeType] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadSizeBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
			return
		}
		if int64(len(data)) > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 5MB limit"})
			return
		}

		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image"})
			return
		}

		ext := strings.ToLower(path.Ext(fileHeader.Filename))
		if ext == "" {
			ext = ".jpg"
		}
		objectKey := path.Join("products", utils.GenerateUniqueFilename()+ext)
		if err := utils.UploadFileToGCS(ctx, objectKey, bytes.NewReader(data)); err != nil {
			config.LogError(logger, "uploads.go", "uploadProductImageHandler", "UploadFileToGCS", objectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
			return
		}

		thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate thumbnail"})
			return
		}
		thumbnailKey := thumbnailObjectKey(objectKey)
		if err := utils.UploadFileToGCS(ctx, thumbnailKey, &buf); err != nil {
			config.LogError(logger, "uploads.go", "uploadProductImageHandler", "UploadFileToGCS thumbnail", thumbnailKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store thumbnail"})
			return
		}

		imageURL := utils.PublicObjectURL(objectKey)
		db := config.GetDB()
		if err := db.WithContext(ctx).Model(product).Update("image_url", imageURL).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		logger.WithFields(logrus.Fields{
			"product_id": product.ID,
			"object_key": objectKey,
		}).Info("[upload.product-image]")

		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"image_url":     imageURL,
			"thumbnail_url": utils.PublicObjectURL(thumbnailKey),
		}})
	}
}

func thumbnailObjectKey(objectKey string) string {
	dir := path.Dir(objectKey)
	filename := path.Base(objectKey)
	return path.Join(dir, "thumbnails", filename)
}
