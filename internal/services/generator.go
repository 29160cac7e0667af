package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"panveliq/internal/models"
)

// PlatformLimit carries the per-platform constraints the generator and the
// progress bars work against. Presentation data, not computed.
type PlatformLimit struct {
	Text     int      `json:"text"`
	Hashtags int      `json:"hashtags"`
	Tips     []string `json:"tips"`
}

var platformLimits = map[string]PlatformLimit{
	"instagram": {
		Text:     2200,
		Hashtags: 30,
		Tips: []string{
			"Lead with a hook in the first 125 characters",
			"Mix niche and broad hashtags",
			"End with a question to drive comments",
		},
	},
	"facebook": {
		Text:     63206,
		Hashtags: 5,
		Tips: []string{
			"Short posts outperform long ones",
			"Native video gets priority reach",
		},
	},
	"linkedin": {
		Text:     3000,
		Hashtags: 5,
		Tips: []string{
			"Open with an insight, not a pitch",
			"Use 3-5 professional hashtags",
		},
	},
	"twitter": {
		Text:     280,
		Hashtags: 2,
		Tips: []string{
			"One idea per post",
			"1-2 hashtags maximum",
		},
	},
	"pinterest": {
		Text:     500,
		Hashtags: 8,
		Tips: []string{
			"Keyword-rich descriptions improve search reach",
		},
	},
}

// PlatformLimits exposes the full lookup table.
func PlatformLimits() map[string]PlatformLimit {
	return platformLimits
}

// IsSupportedPlatform reports whether the generator knows the platform.
func IsSupportedPlatform(name string) bool {
	_, ok := platformLimits[strings.ToLower(name)]
	return ok
}

// TogglePlatform flips membership of a platform in a selection, preserving
// set semantics: toggling twice returns the original set.
func TogglePlatform(selected []string, platform string) []string {
	out := make([]string, 0, len(selected)+1)
	found := false
	for _, p := range selected {
		if p == platform {
			found = true
			continue
		}
		out = append(out, p)
	}
	if !found {
		out = append(out, platform)
	}
	return out
}

// GenerationRequest is the content-generation intake.
type GenerationRequest struct {
	ClientID  string             `json:"clientId" validate:"required,uuid"`
	Platforms []string           `json:"platforms" validate:"required,min=1"`
	Type      models.ContentType `json:"type" validate:"required,oneof=text image video carousel"`
	Topic     string             `json:"topic" validate:"required"`
	Tone      string             `json:"tone"`
	Audience  string             `json:"audience"`
	Keywords  string             `json:"keywords"` // comma-separated
}

// Variant is one generated per-platform result.
type Variant struct {
	Content           string   `json:"content"`
	Hashtags          []string `json:"hashtags"`
	OptimizationScore int      `json:"optimization_score"`
}

var (
	ErrNoPlatforms     = errors.New("at least one platform must be selected")
	ErrEmptyTopic      = errors.New("topic is required")
	ErrMissingClient   = errors.New("client is required")
	ErrUnknownPlatform = errors.New("unsupported platform")
)

// ValidateGenerationRequest applies the submission gate: at least one known
// platform, a content type, a client and a non-empty topic.
func ValidateGenerationRequest(req *GenerationRequest) error {
	if strings.TrimSpace(req.ClientID) == "" {
		return ErrMissingClient
	}
	if len(req.Platforms) == 0 {
		return ErrNoPlatforms
	}
	for _, p := range req.Platforms {
		if !IsSupportedPlatform(p) {
			return fmt.Errorf("%w: %s", ErrUnknownPlatform, p)
		}
	}
	if strings.TrimSpace(req.Topic) == "" {
		return ErrEmptyTopic
	}
	switch req.Type {
	case models.ContentTypeText, models.ContentTypeImage, models.ContentTypeVideo, models.ContentTypeCarousel:
	default:
		return fmt.Errorf("invalid content type %q", req.Type)
	}
	return nil
}

// Generate produces one variant per requested platform, tailored to the
// platform's limits.
func Generate(req *GenerationRequest) (map[string]Variant, error) {
	if err := ValidateGenerationRequest(req); err != nil {
		return nil, err
	}

	keywords := splitKeywords(req.Keywords)
	out := make(map[string]Variant, len(req.Platforms))
	for _, platform := range req.Platforms {
		name := strings.ToLower(platform)
		limit := platformLimits[name]

		content := composeContent(req, name, limit)
		hashtags := composeHashtags(req.Topic, keywords, limit.Hashtags)

		out[name] = Variant{
			Content:           content,
			Hashtags:          hashtags,
			OptimizationScore: scoreVariant(content, hashtags, limit),
		}
	}
	return out, nil
}

func composeContent(req *GenerationRequest, platform string, limit PlatformLimit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", strings.TrimSpace(req.Topic))
	if req.Audience != "" {
		fmt.Fprintf(&b, ", made for %s", req.Audience)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, ". Keeping it %s", strings.ToLower(req.Tone))
	}
	fmt.Fprintf(&b, ". Crafted for %s.", platform)

	content := b.String()
	// Platform limits count characters; truncate on rune boundaries so a
	// multibyte topic never yields invalid UTF-8.
	if limit.Text > 0 && utf8.RuneCountInString(content) > limit.Text {
		content = string([]rune(content)[:limit.Text])
	}
	return content
}

func composeHashtags(topic string, keywords []string, max int) []string {
	var tags []string
	seen := make(map[string]bool)

	add := func(raw string) {
		tag := hashtagify(raw)
		if tag == "" || seen[tag] || len(tags) >= max {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, kw := range keywords {
		add(kw)
	}
	for _, word := range strings.Fields(topic) {
		add(word)
	}
	return tags
}

func hashtagify(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "#" + b.String()
}

// scoreVariant grades a variant 0-100 from character-limit and hashtag
// utilization.
func scoreVariant(content string, hashtags []string, limit PlatformLimit) int {
	score := 50

	if limit.Text > 0 {
		ratio := float64(utf8.RuneCountInString(content)) / float64(limit.Text)
		switch {
		case ratio > 1:
			score -= 30
		case ratio >= 0.1 && ratio <= 0.9:
			score += 30
		default:
			score += 10
		}
	}

	if limit.Hashtags > 0 {
		switch {
		case len(hashtags) == 0:
			// no bonus
		case len(hashtags) <= limit.Hashtags:
			score += 20
		default:
			score -= 20
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func splitKeywords(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
