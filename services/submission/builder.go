package submission

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"creatorplane/pkg/config"
	"creatorplane/pkg/errutil"
	"creatorplane/pkg/minio"
	"creatorplane/services/video"
)

// ========================================================
// Submission Builder
// ========================================================

// Payload is what the creator hands over: either an uploaded object key or
// an external video URL, never both.
type Payload struct {
	FileRef  string         `json:"file_ref"`
	VideoURL string         `json:"video_url"`
	Platform video.Platform `json:"platform"`
	Notes    string         `json:"notes"`
}

// Builder materializes payloads into immutable submission rows. File payloads
// are checked against the uploaded object before anything is committed.
type Builder struct {
	cfg     *config.Config
	storage minio.Storage
}

func NewBuilder(cfg *config.Config, storage minio.Storage) *Builder {
	return &Builder{cfg: cfg, storage: storage}
}

// BuildDraft validates a draft payload. The platform is mandatory here; later
// revisions inherit it from the video.
func (b *Builder) BuildDraft(ctx context.Context, p Payload) (*Submission, error) {
	if !p.Platform.Valid() {
		return nil, errutil.ValidationFailed(
			fmt.Sprintf("platform must be one of instagram, tiktok; got %q", p.Platform), nil)
	}

	return b.build(ctx, KindDraft, p)
}

// BuildRevision validates a revision payload against the video it revises.
func (b *Builder) BuildRevision(ctx context.Context, v *video.Video, p Payload) (*Submission, error) {
	p.Platform = v.Platform
	return b.build(ctx, KindRevision, p)
}

func (b *Builder) build(ctx context.Context, kind Kind, p Payload) (*Submission, error) {
	hasFile := p.FileRef != ""
	hasURL := p.VideoURL != ""

	if hasFile == hasURL {
		return nil, errutil.ValidationFailed("exactly one of file_ref or video_url must be set", nil)
	}

	sub := Submission{
		Kind:     kind,
		Platform: p.Platform,
		Notes:    p.Notes,
	}

	if hasURL {
		if err := validateVideoURL(p.VideoURL); err != nil {
			return nil, err
		}
		sub.PayloadType = PayloadURL
		sub.VideoURL = p.VideoURL
		return &sub, nil
	}

	if err := b.validateUploadedObject(ctx, p.FileRef); err != nil {
		return nil, err
	}
	sub.PayloadType = PayloadFile
	sub.FileRef = p.FileRef
	return &sub, nil
}

func validateVideoURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errutil.ValidationFailed(
			fmt.Sprintf("video_url %q is not a valid http(s) URL", raw), nil)
	}
	return nil
}

// validateUploadedObject checks the object the creator claims to have
// uploaded actually exists and is an acceptable video file.
func (b *Builder) validateUploadedObject(ctx context.Context, fileRef string) error {
	info, err := b.storage.Stat(ctx, fileRef)
	if err != nil {
		return errutil.ValidationFailed(
			fmt.Sprintf("uploaded object %q was not found", fileRef), err)
	}

	if max := b.cfg.MaxUploadBytes(); info.Size > max {
		return errutil.ValidationFailed(
			fmt.Sprintf("uploaded object is %d bytes, limit is %d", info.Size, max), nil)
	}

	if !strings.HasPrefix(info.ContentType, "video/") {
		return errutil.UnsupportedMediaType(
			fmt.Sprintf("uploaded object has content type %q, expected video/*", info.ContentType), nil)
	}

	return nil
}
