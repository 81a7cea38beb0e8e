package banner

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNotFound      = errors.New("banner not found")
	ErrInvalidBanner = errors.New("invalid banner")
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Normalize fills defaults for the optional presentation fields.
func Normalize(b *Banner) {
	b.Title = strings.TrimSpace(b.Title)
	if b.BgColor == "" {
		b.BgColor = DefaultBgColor
	}
	if b.TextColor == "" {
		b.TextColor = DefaultTextColor
	}
	if b.Position == "" {
		b.Position = PositionMain
	}
}

func Validate(b *Banner) error {
	switch {
	case b.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidBanner)
	case len(b.Title) > 200:
		return fmt.Errorf("%w: title must be at most 200 characters", ErrInvalidBanner)
	case b.ImageURL == "":
		return fmt.Errorf("%w: image_url is required", ErrInvalidBanner)
	case len(b.ImageURL) > 500, len(b.Link) > 500:
		return fmt.Errorf("%w: urls must be at most 500 characters", ErrInvalidBanner)
	case !colorPattern.MatchString(b.BgColor):
		return fmt.Errorf("%w: bg_color must look like #rrggbb, got %q", ErrInvalidBanner, b.BgColor)
	case !colorPattern.MatchString(b.TextColor):
		return fmt.Errorf("%w: text_color must look like #rrggbb, got %q", ErrInvalidBanner, b.TextColor)
	case !b.Position.Valid():
		return fmt.Errorf("%w: unknown position %q", ErrInvalidBanner, b.Position)
	case b.DisplayOrder < 0:
		return fmt.Errorf("%w: display_order must be non-negative", ErrInvalidBanner)
	}
	return nil
}
