package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxImageSize is the upload limit for images and GIFs (10MB).
	MaxImageSize = 10 * 1024 * 1024
	// MaxVideoSize is the upload limit for videos (100MB).
	MaxVideoSize = 100 * 1024 * 1024
	// FolderMedia is the S3 prefix for ad media objects.
	FolderMedia = "media"
)

// MediaType describes an accepted upload type.
type MediaType struct {
	Ext  string
	Kind string // image, gif or video
}

// Allowed media MIME types and extensions.
var (
	AllowedMediaTypes = map[string]MediaType{
		"image/jpeg": {Ext: ".jpg", Kind: "image"},
		"image/png":  {Ext: ".png", Kind: "image"},
		"image/webp": {Ext: ".webp", Kind: "image"},
		"image/gif":  {Ext: ".gif", Kind: "gif"},
		"video/mp4":  {Ext: ".mp4", Kind: "video"},
		"video/webm": {Ext: ".webm", Kind: "video"},
		"video/ogg":  {Ext: ".ogv", Kind: "video"},
	}
	AllowedMediaExtensions = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
		".gif":  "image/gif",
		".mp4":  "video/mp4",
		".webm": "video/webm",
		".ogv":  "video/ogg",
		".ogg":  "video/ogg",
	}
)

// S3Config holds S3 client configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	MediaBucket          string
	Endpoint             string // optional, for S3-compatible stores
	PublicBaseURL        string // optional, overrides the virtual-hosted URL
	PresignExpireMinutes int
}

// S3 provides S3 operations for ad media.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or .env (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY).
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
		logger.Info("S3 client using static credentials", zap.String("region", cfg.Region), zap.String("media_bucket", cfg.MediaBucket))
	} else {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024 // 5MB parts for streaming
	})
	return &S3{
		client:   client,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// DetectMediaType resolves the media type from the content type, falling back to the filename extension.
func DetectMediaType(contentType, filename string) (string, MediaType, bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if mt, ok := AllowedMediaTypes[ct]; ok {
		return ct, mt, true
	}
	if ct, ok := AllowedMediaExtensions[strings.ToLower(path.Ext(filename))]; ok {
		return ct, AllowedMediaTypes[ct], true
	}
	return "", MediaType{}, false
}

// MaxSizeFor returns the size limit for a media kind.
func MaxSizeFor(kind string) int64 {
	if kind == "video" {
		return MaxVideoSize
	}
	return MaxImageSize
}

// ValidateMedia checks type and size of an upload and returns its content type and kind.
func ValidateMedia(contentType, filename string, size int64) (string, MediaType, error) {
	ct, mt, ok := DetectMediaType(contentType, filename)
	if !ok {
		return "", MediaType{}, fmt.Errorf("unsupported media type %q", contentType)
	}
	if size <= 0 {
		return "", MediaType{}, fmt.Errorf("empty file")
	}
	if limit := MaxSizeFor(mt.Kind); size > limit {
		return "", MediaType{}, fmt.Errorf("file too large: %d bytes (max %d for %s)", size, limit, mt.Kind)
	}
	return ct, mt, nil
}

// MediaKey returns a unique object key: media/{yyyy}/{mm}/{uuid}{ext}.
func MediaKey(now time.Time, ext string) string {
	return path.Join(FolderMedia, now.UTC().Format("2006"), now.UTC().Format("01"), uuid.NewString()+ext)
}

// MediaBucket returns the media bucket name.
func (s *S3) MediaBucket() string { return s.cfg.MediaBucket }

// PublicObjectURL returns the public URL for an object (no signing; use when bucket is public).
func (s *S3) PublicObjectURL(bucket, key string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.cfg.Region, key)
}

// MediaURL returns the public URL of a key in the media bucket.
func (s *S3) MediaURL(key string) string {
	return s.PublicObjectURL(s.cfg.MediaBucket, key)
}

// PresignExpire returns the configured presign duration.
func (s *S3) PresignExpire() time.Duration {
	if s.cfg.PresignExpireMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
}

// GeneratePresignedUploadURL returns a pre-signed PUT URL for direct upload.
func (s *S3) GeneratePresignedUploadURL(ctx context.Context, key, contentType string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.MediaBucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.PresignExpire()
	})
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	return req.URL, nil
}

// UploadMedia streams body into the media bucket as a public-read object and returns its URL.
func (s *S3) UploadMedia(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) (string, error) {
	var contentLengthPtr *int64
	if contentLength > 0 {
		contentLengthPtr = &contentLength
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.MediaBucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: contentLengthPtr,
		ACL:           types.ObjectCannedACLPublicRead,
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	s.logger.Info("media uploaded", zap.String("key", key), zap.Int64("size", contentLength))
	return s.MediaURL(key), nil
}

// DeleteMedia removes a media object. Deleting a missing key is not an error.
func (s *S3) DeleteMedia(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.MediaBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
