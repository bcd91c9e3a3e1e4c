package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"

	"crowdwatch/internal/utils"
)

// Archiver uploads the final preview frame of a completed session to
// object storage. Failures are logged only; archiving never changes a
// session's outcome.
type Archiver struct {
	minioCli *minio.Client
	bucket   string
	logger   *logrus.Entry
}

func NewArchiver(minioCli *minio.Client, bucket string, logger *logrus.Entry) *Archiver {
	return &Archiver{
		minioCli: minioCli,
		bucket:   bucket,
		logger:   logger,
	}
}

// ArchiveFrame decodes the base64 JPEG frame and stores it under
// sessions/<videoId>/<completedId>.jpg.
func (a *Archiver) ArchiveFrame(videoId int, completedId int64, b64Frame string) {
	data, err := base64.StdEncoding.DecodeString(b64Frame)
	if err != nil {
		a.logger.WithError(err).Errorf("decode final frame for video %d", videoId)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	objectPath := fmt.Sprintf("sessions/%d/%d.jpg", videoId, -completedId)
	if err := utils.UploadBytesToMinio(ctx, a.minioCli, a.bucket, data, objectPath); err != nil {
		a.logger.WithError(err).Errorf("archive final frame for video %d", videoId)
		return
	}
	a.logger.Infof("archived final frame for video %d to %s", videoId, objectPath)
}
