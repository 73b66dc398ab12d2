// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/beatstore/backend/internal/config"
)

// AssetKind selects the subdirectory and filename prefix for an uploaded
// file. Paths are deterministic: <folder>/<prefix>_<beatID>_<filename>.
type AssetKind struct {
	Folder string
	Prefix string
}

var (
	AssetDemo  = AssetKind{Folder: "demos", Prefix: "demo"}
	AssetFull  = AssetKind{Folder: "audio", Prefix: "full"}
	AssetCover = AssetKind{Folder: "covers", Prefix: "cover"}
)

// StorageService persists uploaded assets. Files land on the local static
// tree by default; when AWS credentials are configured the service writes
// to S3 instead (the alternate deployment mode).
type StorageService struct {
	s3Client *s3.S3
	cfg      *config.Config
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// Local filesystem mode
		return &StorageService{cfg: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		cfg:      cfg,
	}, nil
}

// SaveUpload stores one multipart file part and returns the URL to record
// on the beat.
func (s *StorageService) SaveUpload(header *multipart.FileHeader, kind AssetKind, beatID uuid.UUID) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	filename := fmt.Sprintf("%s_%s_%s", kind.Prefix, beatID, sanitizeFilename(header.Filename))
	key := filepath.ToSlash(filepath.Join(kind.Folder, filename))

	if s.s3Client != nil {
		return s.uploadToS3(file, key, header.Header.Get("Content-Type"))
	}

	path := filepath.Join(s.cfg.Storage.Root, kind.Folder, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return "/static/" + key, nil
}

func (s *StorageService) uploadToS3(file multipart.File, key, contentType string) (string, error) {
	body, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	if s.cfg.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.cfg.AWS.CloudFrontURL, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.cfg.AWS.S3Bucket, s.cfg.AWS.Region, key), nil
}

// IsLocal reports whether a stored URL refers to the local static tree.
func (s *StorageService) IsLocal(url string) bool {
	return strings.HasPrefix(url, "/static/")
}

// ResolvePath maps a /static/ URL onto the filesystem. Returns an error
// for external URLs or anything escaping the storage root.
func (s *StorageService) ResolvePath(url string) (string, error) {
	if !s.IsLocal(url) {
		return "", fmt.Errorf("not a local asset URL: %s", url)
	}

	rel := strings.TrimPrefix(url, "/static/")
	rel = filepath.Clean(rel)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("invalid asset path: %s", url)
	}

	return filepath.Join(s.cfg.Storage.Root, rel), nil
}

// FilePath builds the on-disk path for a file inside one of the storage
// folders without consulting the database.
func (s *StorageService) FilePath(folder, filename string) (string, error) {
	clean := filepath.Base(filename)
	if clean != filename || clean == "." || clean == ".." {
		return "", fmt.Errorf("invalid filename: %s", filename)
	}
	return filepath.Join(s.cfg.Storage.Root, folder, clean), nil
}

// ProjectArchivePath is the conventional location of the project archive
// used as the download fallback when a beat has no full audio file.
func (s *StorageService) ProjectArchivePath(beatID uuid.UUID) string {
	return filepath.Join(s.cfg.Storage.Root, "projects", fmt.Sprintf("%s_project.zip", beatID))
}

// DeleteAsset removes the file behind a stored URL. Deletion is
// best-effort at every call site: failures are logged by the caller and
// never block the surrounding operation.
func (s *StorageService) DeleteAsset(url string) error {
	if url == "" {
		return nil
	}

	if s.s3Client != nil && !s.IsLocal(url) {
		key := s.s3KeyFromURL(url)
		_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.AWS.S3Bucket),
			Key:    aws.String(key),
		})
		return err
	}

	path, err := s.ResolvePath(url)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *StorageService) s3KeyFromURL(url string) string {
	if idx := strings.Index(url, ".amazonaws.com/"); idx >= 0 {
		return url[idx+len(".amazonaws.com/"):]
	}
	if s.cfg.AWS.CloudFrontURL != "" {
		return strings.TrimPrefix(strings.TrimPrefix(url, s.cfg.AWS.CloudFrontURL), "/")
	}
	return url
}

// LogDeleteFailure is the shared best-effort deletion wrapper.
func (s *StorageService) LogDeleteFailure(url string, err error) {
	if err != nil {
		logrus.WithError(err).WithField("asset", url).Warn("Failed to delete asset file")
	}
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
