package locrag

import (
	"context"
	"slices"
	"strings"
)

// Platform is a social network a post is written for.
type Platform string

// Supported platforms.
const (
	PlatformLinkedIn      Platform = "LinkedIn"
	PlatformInstagram     Platform = "Instagram"
	PlatformX             Platform = "X/Twitter"
	PlatformFacebookPage  Platform = "Facebook Page"
	PlatformFacebookGroup Platform = "Facebook Group"
)

// Platforms lists the supported platforms in display order.
var Platforms = []Platform{
	PlatformLinkedIn,
	PlatformInstagram,
	PlatformX,
	PlatformFacebookPage,
	PlatformFacebookGroup,
}

// Supported tones.
const (
	ToneProfessional  = "professional"
	ToneInformal      = "informal"
	ToneInspirational = "inspirational"
	ToneTechnical     = "technical"
)

// Tones lists the supported tones in display order.
var Tones = []string{ToneProfessional, ToneInformal, ToneInspirational, ToneTechnical}

// Post length bounds, in approximate words.
const (
	MinPostWords     = 40
	MaxPostWords     = 200
	DefaultPostWords = 90
)

// DefaultPostVariants is the number of drafts requested per generation.
const DefaultPostVariants = 2

// PostRequest describes social posts to draft from the store's documents.
type PostRequest struct {
	Topic    string   `json:"topic"`
	Platform Platform `json:"platform"`
	Tone     string   `json:"tone"`
	Words    int      `json:"words"`
	Hashtags bool     `json:"hashtags"`
	Variants int      `json:"variants"`
}

// Normalize fills defaults for unset fields.
func (r *PostRequest) Normalize() {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Platform == "" {
		r.Platform = PlatformLinkedIn
	}
	if r.Tone == "" {
		r.Tone = ToneProfessional
	}
	if r.Words == 0 {
		r.Words = DefaultPostWords
	}
	if r.Variants == 0 {
		r.Variants = DefaultPostVariants
	}
}

// Validate returns an error if the request contains invalid fields.
func (r *PostRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return Errorf(EINVALID, "post topic required")
	}
	if !slices.Contains(Platforms, r.Platform) {
		return Errorf(EINVALID, "unsupported platform %q", r.Platform)
	}
	if !slices.Contains(Tones, r.Tone) {
		return Errorf(EINVALID, "unsupported tone %q", r.Tone)
	}
	if r.Words < MinPostWords || r.Words > MaxPostWords {
		return Errorf(EINVALID, "post length must be between %d and %d words", MinPostWords, MaxPostWords)
	}
	if r.Variants < 1 {
		return Errorf(EINVALID, "at least one post variant required")
	}
	return nil
}

// PostWriter drafts social posts grounded on a store's documents.
type PostWriter interface {
	WritePosts(ctx context.Context, storeID string, req *PostRequest) (string, error)
}

// Image is a generated image.
type Image struct {
	MIMEType string
	Data     []byte
}

// ImageGenerator produces illustrations for a post topic.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, topic, tone string, count int) ([]*Image, error)
}

// Posts is the outcome of a post generation.
type Posts struct {
	Text   string
	Images []*Image

	// ImageErr is set when images were requested but could not be generated.
	// The drafts are still usable.
	ImageErr error
}
