package dbmongo

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"uslugo/internal/common"
)

// PhotoStorage stores listing photos in GridFS.
type PhotoStorage struct {
	gridFS *gridfs.Bucket
}

func NewPhotoStorage(mongoClient *MongoClient) *PhotoStorage {
	return &PhotoStorage{gridFS: mongoClient.GridFS}
}

type PhotoFile struct {
	ID          string                  `json:"id"`
	Filename    string                  `json:"filename"`
	Size        int64                   `json:"size"`
	ContentType common.PhotoContentType `json:"content_type"`
	UploadedBy  string                  `json:"uploaded_by"`
	UploadedAt  time.Time               `json:"uploaded_at"`
}

func (ps *PhotoStorage) Upload(ctx context.Context, filename, mimeType, uploaderID string, content io.Reader) (*PhotoFile, error) {
	photoType := common.DetectPhotoType(mimeType)
	if !photoType.IsValid() {
		return nil, fmt.Errorf("unsupported photo type %q", mimeType)
	}

	metadata := bson.M{
		"content_type": photoType.String(),
		"uploaded_by":  uploaderID,
		"uploaded_at":  time.Now(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := ps.gridFS.OpenUploadStream(filename, opts)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer stream.Close()

	size, err := io.Copy(stream, content)
	if err != nil {
		return nil, fmt.Errorf("file copy failed: %w", err)
	}

	return &PhotoFile{
		ID:          stream.FileID.(primitive.ObjectID).Hex(),
		Filename:    filename,
		Size:        size,
		ContentType: photoType,
		UploadedBy:  uploaderID,
		UploadedAt:  time.Now(),
	}, nil
}

func (ps *PhotoStorage) Download(ctx context.Context, fileID string) (io.Reader, *PhotoFile, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid file ID: %w", err)
	}

	stream, err := ps.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	photo := &PhotoFile{
		ID:          fileID,
		Filename:    fileInfo.Name,
		Size:        fileInfo.Length,
		ContentType: common.PhotoContentType(stringFromMeta(metadata, "content_type")),
		UploadedBy:  stringFromMeta(metadata, "uploaded_by"),
		UploadedAt:  fileInfo.UploadDate,
	}
	return stream, photo, nil
}

func (ps *PhotoStorage) Delete(ctx context.Context, fileID string) error {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return fmt.Errorf("invalid file ID: %w", err)
	}
	return ps.gridFS.Delete(objectID)
}

func stringFromMeta(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
