package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/storage"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// UploadKind selects the directory, size limit and naming of an upload.
type UploadKind string

const (
	UploadPostImage  UploadKind = "post"
	UploadProfilePic UploadKind = "profile"
)

const (
	DefaultPostImageMaxBytes  int64 = 5 << 20
	DefaultProfilePicMaxBytes int64 = 2 << 20
)

var errOnlyImages = models.NewValidationError("Only image files are allowed")

// UploadLimits bounds upload sizes per kind.
type UploadLimits struct {
	PostImageMaxBytes  int64
	ProfilePicMaxBytes int64
}

// UploadService validates uploaded images and binds them to a storage path.
type UploadService struct {
	store  storage.Store
	limits UploadLimits
	now    func() time.Time
}

func NewUploadService(store storage.Store, limits UploadLimits) *UploadService {
	if limits.PostImageMaxBytes <= 0 {
		limits.PostImageMaxBytes = DefaultPostImageMaxBytes
	}
	if limits.ProfilePicMaxBytes <= 0 {
		limits.ProfilePicMaxBytes = DefaultProfilePicMaxBytes
	}
	return &UploadService{store: store, limits: limits, now: time.Now}
}

func (s *UploadService) maxBytes(kind UploadKind) int64 {
	if kind == UploadProfilePic {
		return s.limits.ProfilePicMaxBytes
	}
	return s.limits.PostImageMaxBytes
}

// objectKey names a stored file:
// postImages/post-<owner>-<unixms>-<uuid8><ext> or
// profilePics/profile-<owner>-<unixms>-<uuid8><ext>.
// The random suffix keeps two uploads in the same millisecond apart.
func (s *UploadService) objectKey(kind UploadKind, ownerID uint, ext string) string {
	dir, prefix := "postImages", "post"
	if kind == UploadProfilePic {
		dir, prefix = "profilePics", "profile"
	}
	return fmt.Sprintf("%s/%s-%d-%d-%s%s", dir, prefix, ownerID, s.now().UnixMilli(), uuid.NewString()[:8], ext)
}

// Store validates file as an image and writes it to storage, returning its
// public path.
func (s *UploadService) Store(ctx context.Context, kind UploadKind, ownerID uint, file *multipart.FileHeader) (string, error) {
	if file == nil || file.Size == 0 {
		return "", models.NewValidationError("Uploaded file is empty")
	}
	limit := s.maxBytes(kind)
	if file.Size > limit {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %s)", humanBytes(limit)))
	}

	f, err := file.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if len(data) == 0 {
		return "", models.NewValidationError("Uploaded file is empty")
	}
	if int64(len(data)) > limit {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %s)", humanBytes(limit)))
	}

	contentType, format, err := sniffImage(data)
	if err != nil {
		return "", err
	}

	ext := extensionFor(file.Filename, format)
	key := s.objectKey(kind, ownerID, ext)
	publicPath, err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	observability.UploadBytes.WithLabelValues(string(kind)).Observe(float64(len(data)))
	middleware.Logger.InfoContext(ctx, "Stored upload",
		slog.String("kind", string(kind)),
		slog.String("path", publicPath),
		slog.Int("bytes", len(data)),
	)
	return publicPath, nil
}

// Discard removes a previously stored upload. Paths the store does not own
// are ignored; failures are logged and never returned.
func (s *UploadService) Discard(ctx context.Context, publicPath string) {
	if publicPath == "" || !s.store.Owns(publicPath) {
		return
	}
	if err := s.store.Delete(ctx, publicPath); err != nil && !errors.Is(err, storage.ErrForeignPath) {
		middleware.Logger.WarnContext(ctx, "Failed to discard upload",
			slog.String("path", publicPath),
			slog.String("error", err.Error()),
		)
	}
}

// sniffImage checks the magic bytes and that the data decodes as an image
// header.
func sniffImage(data []byte) (contentType, format string, err error) {
	contentType = http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", errOnlyImages
	}
	_, format, err = image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", "", errOnlyImages
	}
	return contentType, format, nil
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func extensionFor(filename, format string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if allowedExtensions[ext] {
		return ext
	}
	switch format {
	case "jpeg":
		return ".jpg"
	case "png", "gif", "webp":
		return "." + format
	default:
		return ""
	}
}

func humanBytes(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
