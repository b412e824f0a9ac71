package video

import "regexp"

// Platform is where the creator publishes the final content.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

func (p Platform) Valid() bool {
	return p == PlatformInstagram || p == PlatformTikTok
}

// Published-link shapes per platform. TikTok links carry the author handle
// and numeric video id, Instagram links use the /p/, /reel/ or /tv/ paths.
var (
	tiktokLivePattern    = regexp.MustCompile(`^https?://(www\.|m\.)?tiktok\.com/@[\w.\-]+/video/\d+`)
	instagramLivePattern = regexp.MustCompile(`^https?://(www\.)?instagram\.com/(p|reel|tv)/[\w\-]+`)
)

// ValidLiveURL reports whether url looks like a published post on the
// video's platform.
func ValidLiveURL(platform Platform, url string) bool {
	switch platform {
	case PlatformTikTok:
		return tiktokLivePattern.MatchString(url)
	case PlatformInstagram:
		return instagramLivePattern.MatchString(url)
	default:
		return false
	}
}
