package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/nutriscan/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genai "google.golang.org/genai"
)

type fakeGenerator struct {
	resp      *genai.GenerateContentResponse
	err       error
	calls     int
	gotModel  string
	gotPrompt string
	gotConfig *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.gotModel = model
	f.gotConfig = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.gotPrompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content}},
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{}, nil)
	assert.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	client := newClient(&fakeGenerator{}, Config{}, nil)

	assert.Equal(t, "gemini-2.5-flash", client.model)
	assert.Equal(t, int32(1024), client.maxOutputTokens)
	assert.Equal(t, "gemini:gemini-2.5-flash", client.Name())
	assert.NotNil(t, client.rateLimiter)
}

func TestComplete_Success(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(`{"warnings": [],`, ` "storage_warnings": []}`)}
	client := newClient(gen, Config{Model: "gemini-test", MaxOutputTokens: 512}, nil)

	text, err := client.Complete(context.Background(), "analyze this")

	require.NoError(t, err)
	assert.Equal(t, `{"warnings": [], "storage_warnings": []}`, text)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "gemini-test", gen.gotModel)
	assert.Equal(t, "analyze this", gen.gotPrompt)
	assert.Equal(t, "application/json", gen.gotConfig.ResponseMIMEType)
	assert.Equal(t, int32(512), gen.gotConfig.MaxOutputTokens)
}

func TestComplete_ErrorIsReasoningUnavailable(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("deadline exceeded")}
	client := newClient(gen, Config{}, nil)

	_, err := client.Complete(context.Background(), "prompt")

	assert.ErrorIs(t, err, domain.ErrReasoningUnavailable)
	assert.Equal(t, 1, gen.calls)
}

func TestComplete_EmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"blank text", textResponse("  ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(&fakeGenerator{resp: tt.resp}, Config{}, nil)

			_, err := client.Complete(context.Background(), "prompt")

			assert.ErrorIs(t, err, domain.ErrReasoningUnavailable)
		})
	}
}
