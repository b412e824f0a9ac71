package video

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidLiveURLTikTok(t *testing.T) {
	valid := []string{
		"https://www.tiktok.com/@creator/video/7301234567890123456",
		"https://tiktok.com/@creator.name/video/123",
		"https://m.tiktok.com/@under_score/video/456",
		"http://www.tiktok.com/@creator/video/789",
	}
	for _, u := range valid {
		require.True(t, ValidLiveURL(PlatformTikTok, u), u)
	}

	invalid := []string{
		"https://www.tiktok.com/@creator",
		"https://www.tiktok.com/video/123",
		"https://vm.tiktok.com/ZMabcdef/",
		"https://example.com/@creator/video/123",
		"",
	}
	for _, u := range invalid {
		require.False(t, ValidLiveURL(PlatformTikTok, u), u)
	}
}

func TestValidLiveURLInstagram(t *testing.T) {
	valid := []string{
		"https://www.instagram.com/p/Cxyz123-_/",
		"https://instagram.com/reel/Cabc456",
		"https://www.instagram.com/tv/Cdef789/",
	}
	for _, u := range valid {
		require.True(t, ValidLiveURL(PlatformInstagram, u), u)
	}

	invalid := []string{
		"https://www.instagram.com/creator/",
		"https://www.instagram.com/stories/creator/123/",
		"https://example.com/p/Cxyz123/",
		"",
	}
	for _, u := range invalid {
		require.False(t, ValidLiveURL(PlatformInstagram, u), u)
	}
}

// the same URL is only valid for its own platform
func TestValidLiveURLCrossPlatform(t *testing.T) {
	tiktok := "https://www.tiktok.com/@creator/video/7301234567890123456"
	instagram := "https://www.instagram.com/reel/Cabc456/"

	require.True(t, ValidLiveURL(PlatformTikTok, tiktok))
	require.False(t, ValidLiveURL(PlatformInstagram, tiktok))

	require.True(t, ValidLiveURL(PlatformInstagram, instagram))
	require.False(t, ValidLiveURL(PlatformTikTok, instagram))
}

func TestValidLiveURLUnknownPlatform(t *testing.T) {
	require.False(t, ValidLiveURL(Platform("youtube"), "https://youtube.com/watch?v=abc"))
}
