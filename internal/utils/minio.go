package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
)

// UploadBytesToMinio stores an in-memory object; content type is
// derived from the object path extension.
func UploadBytesToMinio(ctx context.Context, minioCli *minio.Client, bucket string, data []byte, minioPath string) error {
	contentType := "application/octet-stream"
	if idx := strings.LastIndex(minioPath, "."); idx != -1 {
		switch strings.ToLower(minioPath[idx+1:]) {
		case "jpg", "jpeg":
			contentType = "image/jpeg"
		case "png":
			contentType = "image/png"
		case "json":
			contentType = "application/json"
		case "mp4":
			contentType = "video/mp4"
		}
	}

	_, err := minioCli.PutObject(
		ctx,
		bucket,
		strings.TrimPrefix(minioPath, "/"),
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return fmt.Errorf("put object to minio failed: %w", err)
	}

	return nil
}
