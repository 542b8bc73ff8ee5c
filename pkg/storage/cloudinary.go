package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// FileStorage is the blob boundary: upload, time-limited read URL and delete by path.
type FileStorage interface {
	// UploadImage uploads an avatar-like image and returns its public secure URL.
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// UploadFile stores a private file under the exact path and returns that path.
	UploadFile(ctx context.Context, r io.Reader, path string) (string, error)
	// SignedURL issues a read URL for a private file that stops working after ttl.
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	// DeleteImage deletes an image using its URL.
	DeleteImage(ctx context.Context, fileURL string) error
	// DeleteFile deletes a private file by the path given to UploadFile.
	DeleteFile(ctx context.Context, path string) error
}

var _ FileStorage = (*cloudinaryStorage)(nil)

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage reads CLOUDINARY_URL, or the CLOUDINARY_CLOUD_NAME / CLOUDINARY_API_KEY /
// CLOUDINARY_API_SECRET triple, from the environment.
func NewCloudinaryStorage(folder string) (FileStorage, error) {
	cld, err := cloudinary.New()
	if err != nil {
		cld, err = cloudinary.NewFromParams(
			os.Getenv("CLOUDINARY_CLOUD_NAME"),
			os.Getenv("CLOUDINARY_API_KEY"),
			os.Getenv("CLOUDINARY_API_SECRET"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
		}
	}

	cld.Config.URL.Secure = true

	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	return &cloudinaryStorage{cld: cld, folder: strings.Trim(folder, "/")}, nil
}

func (s *cloudinaryStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	publicID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), strings.TrimSuffix(fileName, filepath.Ext(fileName)))

	params := uploader.UploadParams{
		Folder:         s.join(folder),
		PublicID:       publicID,
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(false),
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".gif", ".webp":
		params.Format = "webp"
		params.Transformation = "q_auto"
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload image to cloudinary: %w", err)
	}

	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

func (s *cloudinaryStorage) UploadFile(ctx context.Context, r io.Reader, path string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	params := uploader.UploadParams{
		PublicID:     s.join(path),
		ResourceType: "raw",
		Type:         api.Authenticated,
		Overwrite:    api.Bool(true),
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload file to cloudinary: %w", err)
	}
	if resp.PublicID == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but public id is empty")
	}

	return path, nil
}

func (s *cloudinaryStorage) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	expiresAt := time.Now().Add(ttl)
	signed, err := s.cld.Upload.PrivateDownloadURL(uploader.PrivateDownloadURLParams{
		PublicID:     s.join(path),
		DeliveryType: api.Authenticated,
		ResourceType: "raw",
		ExpiresAt:    &expiresAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign cloudinary url: %w", err)
	}

	return signed, nil
}

func (s *cloudinaryStorage) DeleteImage(ctx context.Context, fileURL string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	publicID := extractPublicID(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	// Invalidate: true helps to clear CDN cache
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}

	return destroyResult(resp.Result)
}

func (s *cloudinaryStorage) DeleteFile(ctx context.Context, path string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     s.join(path),
		ResourceType: "raw",
		Type:         api.Authenticated,
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}

	return destroyResult(resp.Result)
}

func (s *cloudinaryStorage) join(path string) string {
	path = strings.Trim(path, "/")
	if s.folder == "" {
		return path
	}
	if path == "" {
		return s.folder
	}
	return s.folder + "/" + path
}

func destroyResult(result string) error {
	if result != "ok" && result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", result)
	}
	return nil
}

// extractPublicID attempts to extract the public ID from a Cloudinary URL.
// Example: https://res.cloudinary.com/demo/image/upload/v123456789/folder/sample.jpg -> folder/sample
func extractPublicID(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}

	if uploadIndex == -1 || uploadIndex+1 >= len(parts) {
		return ""
	}

	relevantParts := parts[uploadIndex+1:]

	// Cloudinary versions are 'v' followed by digits.
	if len(relevantParts) > 1 && isVersionSegment(relevantParts[0]) {
		relevantParts = relevantParts[1:]
	}

	if len(relevantParts) == 0 {
		return ""
	}

	publicIDWithExt := strings.Join(relevantParts, "/")
	return strings.TrimSuffix(publicIDWithExt, filepath.Ext(publicIDWithExt))
}

func isVersionSegment(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
