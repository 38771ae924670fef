package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textRequest(prompt string) GenerateRequest {
	return GenerateRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: prompt}}},
		},
		GenerationConfig: &GenerationConfig{ResponseMIMEType: "application/json"},
	}
}

func TestGenerateContent_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "user", req.Contents[0].Role)
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GenerateResponse{
			Candidates: []Candidate{
				{Content: Content{Role: "model", Parts: []Part{{Text: `[{"word":"cat"}]`}}}},
			},
			UsageMetadata: &UsageMetadata{PromptTokenCount: 12, CandidatesTokenCount: 34},
		})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	resp, err := client.GenerateContent(context.Background(), textRequest("enrich these words"))
	require.NoError(t, err)

	assert.Equal(t, `[{"word":"cat"}]`, resp.Text())
	require.NotNil(t, resp.UsageMetadata)
	assert.Equal(t, 12, resp.UsageMetadata.PromptTokenCount)
}

func TestGenerateContent_ModelOverride(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(GenerateResponse{})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithModel("gemini-2.5-pro"))
	_, err := client.GenerateContent(context.Background(), textRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "/v1beta/models/gemini-2.5-pro:generateContent", gotPath)

	req := textRequest("hi")
	req.Model = "gemini-2.0-flash-lite"
	_, err = client.GenerateContent(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "/v1beta/models/gemini-2.0-flash-lite:generateContent", gotPath)
}

func TestGenerateContent_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.GenerateContent(context.Background(), textRequest("hi"))
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "quota exceeded")
}

func TestGenerateContent_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.GenerateContent(ctx, textRequest("hi"))
	require.Error(t, err)
}

func TestText_Empty(t *testing.T) {
	var resp *GenerateResponse
	assert.Equal(t, "", resp.Text())
	assert.Equal(t, "", (&GenerateResponse{}).Text())
}
