package ai

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/config"
	"voice-ai-go/internal/models"
)

// OpenAIClient talks to the completion, transcription and speech endpoints.
// Every failure is reported as an apperr upstream error carrying the
// provider's message; nothing is retried.
type OpenAIClient struct {
	cfg     *config.Config
	api     *openai.Client
	prompts Prompts
}

func NewOpenAIClient(cfg *config.Config) (*OpenAIClient, error) {
	prompts, err := LoadPrompts()
	if err != nil {
		return nil, err
	}

	oc := openai.DefaultConfig(cfg.OpenAIKey)
	oc.BaseURL = cfg.OpenAIBaseURL

	return &OpenAIClient{cfg: cfg, api: openai.NewClientWithConfig(oc), prompts: prompts}, nil
}

// Complete sends the mode's system prompt and the user text and returns the
// first choice.
func (c *OpenAIClient) Complete(ctx context.Context, mode models.ChatMode, text string) (string, error) {
	if c.cfg.OpenAIKey == "" {
		return "", apperr.Upstream("OPENAI_API_KEY missing", nil)
	}

	system, ok := c.prompts.For(mode)
	if !ok {
		return "", apperr.Validation("invalid chat mode")
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.OpenAILlmModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: float32(c.cfg.ChatTemperature),
		MaxTokens:   c.cfg.ChatMaxTokens,
	})
	if err != nil {
		return "", upstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Upstream("no choices returned", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Transcribe uploads audio to the whisper endpoint. filename is only used as
// the multipart file name; the provider infers the format from it.
func (c *OpenAIClient) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if c.cfg.OpenAIKey == "" {
		return "", apperr.Upstream("OPENAI_API_KEY missing", nil)
	}

	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.OpenAIWhisper,
		FilePath: filename,
		Reader:   audio,
		Language: c.cfg.TranscribeLang,
	})
	if err != nil {
		return "", upstreamError(err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Speak synthesises text to mp3 bytes.
func (c *OpenAIClient) Speak(ctx context.Context, text string) ([]byte, error) {
	if c.cfg.OpenAIKey == "" {
		return nil, apperr.Upstream("OPENAI_API_KEY missing", nil)
	}

	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.cfg.OpenAITTSModel),
		Input:          text,
		Voice:          openai.SpeechVoice(c.cfg.OpenAITTSVoice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, upstreamError(err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, apperr.Upstream("failed to read speech response", err)
	}
	return audio, nil
}

func upstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apperr.Upstream(apiErr.Message, err)
	}
	return apperr.Upstream(err.Error(), err)
}
