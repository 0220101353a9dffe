package tryon

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/raushankrgupta/virtual-tryon/storage"
	"github.com/raushankrgupta/virtual-tryon/utils"
)

// BlobPhotoUploader downsizes user photos and stores them in blob storage
// under <owner>_<unix-ms>.<ext>.
type BlobPhotoUploader struct {
	Store        storage.BlobStore
	MaxDimension int
	Now          func() time.Time
}

func (u *BlobPhotoUploader) UploadPhoto(ctx context.Context, owner string, photo Photo) (string, error) {
	prepared, err := utils.PreparePhoto(photo.Data, u.MaxDimension)
	if err != nil {
		return "", err
	}

	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	key := fmt.Sprintf("%s_%d.%s", owner, now().UnixMilli(), prepared.Ext)

	return u.Store.Upload(ctx, key, bytes.NewReader(prepared.Data), prepared.ContentType)
}
