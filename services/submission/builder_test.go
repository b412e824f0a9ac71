package submission

import (
	"context"
	"testing"
	"time"

	"creatorplane/pkg/config"
	"creatorplane/pkg/errutil"
	"creatorplane/pkg/minio"
	"creatorplane/services/video"

	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	objects map[string]*minio.ObjectInfo
}

func (f *fakeStorage) PresignPut(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	return "https://minio.test/put/" + objectKey, nil
}

func (f *fakeStorage) PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	return "https://minio.test/get/" + objectKey, nil
}

func (f *fakeStorage) Stat(ctx context.Context, objectKey string) (*minio.ObjectInfo, error) {
	info, ok := f.objects[objectKey]
	if !ok {
		return nil, errutil.NotFound("object not found", nil)
	}
	return info, nil
}

func newTestBuilder(objects map[string]*minio.ObjectInfo) *Builder {
	return NewBuilder(&config.Config{}, &fakeStorage{objects: objects})
}

func TestBuildDraftRequiresExactlyOnePayload(t *testing.T) {
	b := newTestBuilder(nil)
	ctx := context.Background()

	_, err := b.BuildDraft(ctx, Payload{Platform: video.PlatformTikTok})
	require.Error(t, err)
	require.Equal(t, errutil.StatusValidationFailed, errutil.StatusOf(err))

	_, err = b.BuildDraft(ctx, Payload{
		Platform: video.PlatformTikTok,
		FileRef:  "uploads/a.mp4",
		VideoURL: "https://example.com/v.mp4",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusValidationFailed, errutil.StatusOf(err))
}

func TestBuildDraftRequiresPlatform(t *testing.T) {
	b := newTestBuilder(nil)

	_, err := b.BuildDraft(context.Background(), Payload{VideoURL: "https://example.com/v.mp4"})
	require.Error(t, err)
	require.Equal(t, errutil.StatusValidationFailed, errutil.StatusOf(err))
}

func TestBuildDraftRejectsBadURL(t *testing.T) {
	b := newTestBuilder(nil)
	ctx := context.Background()

	for _, raw := range []string{"ftp://example.com/v.mp4", "not a url", "https://"} {
		_, err := b.BuildDraft(ctx, Payload{Platform: video.PlatformTikTok, VideoURL: raw})
		require.Error(t, err, raw)
		require.Equal(t, errutil.StatusValidationFailed, errutil.StatusOf(err), raw)
	}
}

func TestBuildDraftURLPayload(t *testing.T) {
	b := newTestBuilder(nil)

	sub, err := b.BuildDraft(context.Background(), Payload{
		Platform: video.PlatformInstagram,
		VideoURL: "https://cdn.example.com/v.mp4",
		Notes:    "first cut",
	})
	require.NoError(t, err)
	require.Equal(t, KindDraft, sub.Kind)
	require.Equal(t, PayloadURL, sub.PayloadType)
	require.Equal(t, "https://cdn.example.com/v.mp4", sub.VideoURL)
	require.Equal(t, "first cut", sub.Notes)
}

func TestBuildDraftFilePayload(t *testing.T) {
	b := newTestBuilder(map[string]*minio.ObjectInfo{
		"uploads/a.mp4": {Key: "uploads/a.mp4", Size: 1 << 20, ContentType: "video/mp4"},
	})

	sub, err := b.BuildDraft(context.Background(), Payload{
		Platform: video.PlatformTikTok,
		FileRef:  "uploads/a.mp4",
	})
	require.NoError(t, err)
	require.Equal(t, PayloadFile, sub.PayloadType)
	require.Equal(t, "uploads/a.mp4", sub.FileRef)
}

func TestBuildDraftMissingObject(t *testing.T) {
	b := newTestBuilder(nil)

	_, err := b.BuildDraft(context.Background(), Payload{
		Platform: video.PlatformTikTok,
		FileRef:  "uploads/gone.mp4",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusValidationFailed, errutil.StatusOf(err))
}

func TestBuildDraftObjectTooLarge(t *testing.T) {
	b := newTestBuilder(map[string]*minio.ObjectInfo{
		"uploads/huge.mp4": {Key: "uploads/huge.mp4", Size: 500 << 20, ContentType: "video/mp4"},
	})

	_, err := b.BuildDraft(context.Background(), Payload{
		Platform: video.PlatformTikTok,
		FileRef:  "uploads/huge.mp4",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusValidationFailed, errutil.StatusOf(err))
}

func TestBuildDraftWrongContentType(t *testing.T) {
	b := newTestBuilder(map[string]*minio.ObjectInfo{
		"uploads/doc.pdf": {Key: "uploads/doc.pdf", Size: 1 << 20, ContentType: "application/pdf"},
	})

	_, err := b.BuildDraft(context.Background(), Payload{
		Platform: video.PlatformTikTok,
		FileRef:  "uploads/doc.pdf",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusUnsupportedMediaType, errutil.StatusOf(err))
}

func TestBuildRevisionInheritsPlatform(t *testing.T) {
	b := newTestBuilder(nil)

	sub, err := b.BuildRevision(context.Background(), &video.Video{Platform: video.PlatformInstagram}, Payload{
		VideoURL: "https://cdn.example.com/v2.mp4",
	})
	require.NoError(t, err)
	require.Equal(t, KindRevision, sub.Kind)
	require.Equal(t, video.PlatformInstagram, sub.Platform)
}
