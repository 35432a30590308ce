package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/locrag"
	"google.golang.org/genai"
)

// platformGuides describes the expected structure of a post per platform.
var platformGuides = map[locrag.Platform]string{
	locrag.PlatformLinkedIn:      "Structure: a catchy title, 3-5 short bullets and a closing call to action. Professional but human style.",
	locrag.PlatformInstagram:     "Structure: a short opening hook, a body of 3-4 sentences and a closing call to action. Simple language, moderate emoji.",
	locrag.PlatformX:             "Structure: a single concise post of 40-60 words at most, with a hook and a short call to action.",
	locrag.PlatformFacebookPage:  "Structure: an opening hook, a body of 3-5 sentences with clear benefits and a call to action. Accessible language.",
	locrag.PlatformFacebookGroup: "Structure: an opening question or prompt for the community, 2-3 sentences of context and an invitation to discuss. Conversational style.",
}

// Ensure PostWriter implements locrag.PostWriter at compile time.
var _ locrag.PostWriter = (*PostWriter)(nil)

// PostWriter drafts social posts with File Search grounding.
type PostWriter struct {
	client *genai.Client
	model  string
}

// NewPostWriter creates a new PostWriter. An empty model uses DefaultModel.
func NewPostWriter(client *genai.Client, model string) *PostWriter {
	if model == "" {
		model = DefaultModel
	}
	return &PostWriter{client: client, model: model}
}

// WritePosts returns the drafted variants as formatted text.
func (w *PostWriter) WritePosts(ctx context.Context, storeID string, req *locrag.PostRequest) (string, error) {
	if storeID == "" {
		return "", locrag.Errorf(locrag.ENOSTORE, "store ID required")
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	result, err := w.client.Models.GenerateContent(ctx, w.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: BuildPostPrompt(req)}},
		}},
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{{
				FileSearch: &genai.FileSearch{FileSearchStoreNames: []string{storeID}},
			}},
		},
	)
	if err != nil {
		return "", remoteError("write posts", err)
	}
	if result == nil {
		return "", locrag.Errorf(locrag.EINTERNAL, "gemini returned nil result")
	}
	return strings.TrimSpace(result.Text()), nil
}

// BuildPostPrompt builds the prompt for drafting social posts.
func BuildPostPrompt(req *locrag.PostRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a content strategist. Write %d variants of a %s post ", req.Variants, req.Platform)
	fmt.Fprintf(&sb, "of about %d words on the topic: %s. ", req.Words, req.Topic)
	sb.WriteString("Use only information that is accurate according to the documents. ")
	fmt.Fprintf(&sb, "Adopt a %s tone. ", req.Tone)
	if guide := platformGuides[req.Platform]; guide != "" {
		sb.WriteString(guide + " ")
	}
	if req.Hashtags {
		sb.WriteString("Add 3-5 relevant hashtags at the end. ")
	} else {
		sb.WriteString("Do not use hashtags. ")
	}
	sb.WriteString("Highlight relevant quotes or figures when the documents contain them. ")
	sb.WriteString("Format the variants so they are easy to read.")
	return sb.String()
}

// Ensure ImageGenerator implements locrag.ImageGenerator at compile time.
var _ locrag.ImageGenerator = (*ImageGenerator)(nil)

// ImageGenerator creates post illustrations with an Imagen model.
type ImageGenerator struct {
	client *genai.Client
	model  string
}

// NewImageGenerator creates a new ImageGenerator. An empty model uses
// DefaultImageModel.
func NewImageGenerator(client *genai.Client, model string) *ImageGenerator {
	if model == "" {
		model = DefaultImageModel
	}
	return &ImageGenerator{client: client, model: model}
}

// GenerateImages returns up to count PNG illustrations for the topic.
func (g *ImageGenerator) GenerateImages(ctx context.Context, topic, tone string, count int) ([]*locrag.Image, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, locrag.Errorf(locrag.EINVALID, "image topic required")
	}
	if count < 1 {
		count = 1
	}

	resp, err := g.client.Models.GenerateImages(ctx, g.model, BuildImagePrompt(topic, tone), &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, remoteError("generate images", err)
	}
	if resp == nil {
		return nil, locrag.Errorf(locrag.EINTERNAL, "gemini returned nil result")
	}

	var images []*locrag.Image
	for _, gi := range resp.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		mimeType := gi.Image.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		images = append(images, &locrag.Image{MIMEType: mimeType, Data: gi.Image.ImageBytes})
	}
	if len(images) == 0 {
		return nil, &locrag.Error{Code: locrag.EREMOTE, Op: "generate images", Message: "no images returned"}
	}
	return images, nil
}

// BuildImagePrompt builds the illustration prompt for a post topic.
func BuildImagePrompt(topic, tone string) string {
	return fmt.Sprintf("Simple social media illustration for this topic: %s. Tone: %s. Style: clean, readable, minimal text, flat colors.", topic, tone)
}
