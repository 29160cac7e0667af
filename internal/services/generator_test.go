package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"panveliq/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGenerationRequest() *GenerationRequest {
	return &GenerationRequest{
		ClientID:  "6b4cfa40-0000-0000-0000-000000000001",
		Platforms: []string{"instagram", "twitter"},
		Type:      models.ContentTypeText,
		Topic:     "Spring launch announcement",
		Tone:      "Playful",
		Keywords:  "launch, spring sale",
	}
}

func TestValidateGenerationRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GenerationRequest)
		wantErr error
	}{
		{"valid", func(r *GenerationRequest) {}, nil},
		{"no client", func(r *GenerationRequest) { r.ClientID = " " }, ErrMissingClient},
		{"no platforms", func(r *GenerationRequest) { r.Platforms = nil }, ErrNoPlatforms},
		{"unknown platform", func(r *GenerationRequest) { r.Platforms = []string{"myspace"} }, ErrUnknownPlatform},
		{"empty topic", func(r *GenerationRequest) { r.Topic = "  " }, ErrEmptyTopic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validGenerationRequest()
			tt.mutate(req)
			err := ValidateGenerationRequest(req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGenerationRequestBadType(t *testing.T) {
	req := validGenerationRequest()
	req.Type = "podcast"
	assert.Error(t, ValidateGenerationRequest(req))
}

func TestGenerateProducesVariantPerPlatform(t *testing.T) {
	req := validGenerationRequest()
	variants, err := Generate(req)
	require.NoError(t, err)
	require.Len(t, variants, 2)

	for _, platform := range []string{"instagram", "twitter"} {
		v, ok := variants[platform]
		require.True(t, ok, platform)
		assert.NotEmpty(t, v.Content)
		assert.GreaterOrEqual(t, v.OptimizationScore, 0)
		assert.LessOrEqual(t, v.OptimizationScore, 100)
	}
}

func TestGenerateRespectsPlatformLimits(t *testing.T) {
	req := validGenerationRequest()
	req.Platforms = []string{"twitter"}

	variants, err := Generate(req)
	require.NoError(t, err)

	twitter := variants["twitter"]
	assert.LessOrEqual(t, len(twitter.Content), platformLimits["twitter"].Text)
	assert.LessOrEqual(t, len(twitter.Hashtags), platformLimits["twitter"].Hashtags)
}

func TestGenerateHashtagsFromKeywords(t *testing.T) {
	req := validGenerationRequest()
	req.Platforms = []string{"instagram"}

	variants, err := Generate(req)
	require.NoError(t, err)

	hashtags := variants["instagram"].Hashtags
	assert.Contains(t, hashtags, "#launch")
	assert.Contains(t, hashtags, "#springsale")
	for _, tag := range hashtags {
		assert.Regexp(t, `^#[a-z0-9]+$`, tag)
	}
}

func TestTogglePlatform(t *testing.T) {
	selected := []string{"instagram"}

	selected = TogglePlatform(selected, "twitter")
	assert.ElementsMatch(t, []string{"instagram", "twitter"}, selected)

	selected = TogglePlatform(selected, "instagram")
	assert.Equal(t, []string{"twitter"}, selected)

	// Toggling twice restores the original membership.
	selected = TogglePlatform(selected, "twitter")
	selected = TogglePlatform(selected, "twitter")
	assert.Equal(t, []string{"twitter"}, selected)
}

func TestIsSupportedPlatform(t *testing.T) {
	assert.True(t, IsSupportedPlatform("instagram"))
	assert.True(t, IsSupportedPlatform("LinkedIn"))
	assert.False(t, IsSupportedPlatform("myspace"))
}

func TestGenerateTruncatesOnRuneBoundary(t *testing.T) {
	req := validGenerationRequest()
	req.Platforms = []string{"twitter"}
	req.Topic = strings.Repeat("é", 300)

	variants, err := Generate(req)
	require.NoError(t, err)

	content := variants["twitter"].Content
	assert.True(t, utf8.ValidString(content))
	assert.Equal(t, 280, utf8.RuneCountInString(content))
}

func TestPlatformLimitsTable(t *testing.T) {
	limits := PlatformLimits()
	for _, name := range []string{"instagram", "facebook", "linkedin", "twitter", "pinterest"} {
		limit, ok := limits[name]
		require.True(t, ok, name)
		assert.Positive(t, limit.Text)
		assert.Positive(t, limit.Hashtags)
		assert.NotEmpty(t, limit.Tips)
	}
}
