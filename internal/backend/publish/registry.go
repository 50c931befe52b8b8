package publish

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"adflow/internal/domain"
)

var (
	ErrEmptyAd        = errors.New("nothing to publish: neither text nor image selected")
	ErrMissingContent = errors.New("selected content has not been generated")
)

const tweetLimit = 280

// PlatformHandler is the blueprint for submitting one ad to one platform
type PlatformHandler func(ctx context.Context, req domain.PublishRequest) (map[string]any, error)

// PlatformRegistry holds a handler per supported platform
type PlatformRegistry map[domain.Platform]PlatformHandler

// InitRegistry wires up the per-platform rules
func InitRegistry() PlatformRegistry {
	registry := make(PlatformRegistry)

	registry[domain.PlatformFacebook] = func(ctx context.Context, req domain.PublishRequest) (map[string]any, error) {
		if err := checkSelection(req); err != nil {
			return nil, err
		}
		return accepted(req, "Ad submitted to the Facebook ad account"), nil
	}

	registry[domain.PlatformTwitter] = func(ctx context.Context, req domain.PublishRequest) (map[string]any, error) {
		if err := checkSelection(req); err != nil {
			return nil, err
		}
		if req.IncludeText {
			if n := utf8.RuneCountInString(*req.AdText); n > tweetLimit {
				return nil, fmt.Errorf("ad text is %d characters, twitter allows %d", n, tweetLimit)
			}
		}
		return accepted(req, "Promoted post submitted to Twitter"), nil
	}

	registry[domain.PlatformGoogleAds] = func(ctx context.Context, req domain.PublishRequest) (map[string]any, error) {
		if err := checkSelection(req); err != nil {
			return nil, err
		}
		if !req.IncludeText {
			return nil, errors.New("google ads requires ad text")
		}
		return accepted(req, "Responsive ad submitted to Google Ads"), nil
	}

	return registry
}

// checkSelection rejects empty ads and selections pointing at missing artifacts.
func checkSelection(req domain.PublishRequest) error {
	if !req.IncludeText && !req.IncludeImage {
		return ErrEmptyAd
	}
	if req.IncludeText && (req.AdText == nil || *req.AdText == "") {
		return fmt.Errorf("%w: ad text", ErrMissingContent)
	}
	if req.IncludeImage && (req.AdImage == nil || *req.AdImage == "") {
		return fmt.Errorf("%w: ad image", ErrMissingContent)
	}
	return nil
}

func accepted(req domain.PublishRequest, message string) map[string]any {
	return map[string]any{
		"platform": string(req.Platform),
		"status":   "accepted",
		"message":  message,
	}
}
