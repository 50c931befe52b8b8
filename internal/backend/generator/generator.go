package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"adflow/internal/domain"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const copywriterSystemPrompt = "You are an expert advertising copywriter. Write short, punchy ad copy for e-commerce products. Return only the ad copy, without preambles or quotation marks."

// Settings configure the OpenAI-compatible endpoint.
type Settings struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
}

// Generator writes ad copy and ad images through the openai-go SDK.
type Generator struct {
	client     openai.Client
	textModel  string
	imageModel string
}

func New(cfg Settings, extra ...option.RequestOption) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if cfg.TextModel == "" || cfg.ImageModel == "" {
		return nil, errors.New("text and image models are required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)
	return &Generator{
		client:     openai.NewClient(opts...),
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}, nil
}

// BuildAdPrompt turns the product fields into the copywriting request.
func BuildAdPrompt(req domain.AdTextRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a compelling advertisement for the product %q.\n", req.Title)
	fmt.Fprintf(&sb, "Description: %s\n", req.Description)
	fmt.Fprintf(&sb, "Price: %s\n", req.Price)
	sb.WriteString("Keep it under 60 words and end with a call to action.")
	if req.Refine {
		sb.WriteString("\nThis is a regeneration: take a noticeably different angle from a typical first draft.")
	}
	return sb.String()
}

// BuildImagePrompt wraps the product description for the image model.
func BuildImagePrompt(req domain.AdImageRequest) string {
	prefix := "A polished advertising image for this product: "
	if req.Refine {
		prefix = "A fresh, alternative advertising image for this product: "
	}
	return prefix + req.Prompt
}

// AdText returns "" without error when the model produced nothing usable.
func (g *Generator) AdText(ctx context.Context, req domain.AdTextRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.textModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(copywriterSystemPrompt),
			openai.UserMessage(BuildAdPrompt(req)),
		},
	}
	if req.Refine {
		params.Temperature = openai.Float(1.0)
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"`), nil
}

// AdImage returns the generated image URL, or "" when none came back.
func (g *Generator) AdImage(ctx context.Context, req domain.AdImageRequest) (string, error) {
	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: BuildImagePrompt(req),
		Model:  openai.ImageModel(g.imageModel),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	})
	if err != nil {
		return "", fmt.Errorf("openai image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	return resp.Data[0].URL, nil
}
