package featureflags

import (
	"context"

	"creatorplane/pkg/config"

	"github.com/Flagsmith/flagsmith-go-client/v2"
	"go.uber.org/fx"
)

var Module = fx.Module("featureflags", fx.Provide(ProvideFeatureFlag))

type FeatureFlag interface {
	IsEnabled(ctx context.Context, identifier, feature string) bool
}

type featureflag struct {
	client *flagsmith.Client
}

type FeatureParams struct {
	fx.In
	Config *config.Config
}

func ProvideFeatureFlag(p FeatureParams) FeatureFlag {
	if p.Config.Flagsmith.ApiKey == "" {
		return &featureflag{}
	}

	opts := []flagsmith.Option{
		flagsmith.WithBaseURL(p.Config.Flagsmith.Addr),
		flagsmith.WithAnalytics(),
	}

	return &featureflag{
		client: flagsmith.NewClient(p.Config.Flagsmith.ApiKey, opts...),
	}
}

// IsEnabled reports whether a feature is on for the identifier. Without a
// configured client it always returns false so callers fall back to config.
func (s *featureflag) IsEnabled(ctx context.Context, identifier, feature string) bool {
	if s.client == nil {
		return false
	}

	flags, err := s.client.GetIdentityFlags(identifier, nil)
	if err != nil {
		return false
	}

	enabled, err := flags.IsFeatureEnabled(feature)
	if err != nil {
		return false
	}

	return enabled
}
