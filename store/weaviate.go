package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	mbtichat "github.com/personaverse/mbtichat-go"
)

// WeaviateStore implements mbtichat.KnowledgeStore using Weaviate's REST
// API. The class schema holds `content`, `type`, and `category` properties;
// search filters on the type code.
type WeaviateStore struct {
	baseURL string
	class   string
	apiKey  string
	client  *http.Client
}

// WeaviateConfig configures the Weaviate store.
type WeaviateConfig struct {
	BaseURL string // e.g. "https://my-cluster.weaviate.network"
	Class   string // class name, default "MBTIPersonality"
	APIKey  string // optional API key
}

// NewWeaviateStore creates a KnowledgeStore backed by Weaviate.
func NewWeaviateStore(config WeaviateConfig) *WeaviateStore {
	if config.Class == "" {
		config.Class = "MBTIPersonality"
	}
	return &WeaviateStore{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		class:   config.Class,
		apiKey:  config.APIKey,
		client:  &http.Client{},
	}
}

func (w *WeaviateStore) doRequest(ctx context.Context, method, url string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("weaviate %s %s: status %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// graphqlQuery is the request envelope for /v1/graphql.
type graphqlQuery struct {
	Query string `json:"query"`
}

// searchResponse mirrors the slice of the GraphQL response we consume.
type searchResponse struct {
	Data map[string]map[string][]struct {
		Content  string `json:"content"`
		Category string `json:"category"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Search returns up to topK passages for the given type.
func (w *WeaviateStore) Search(ctx context.Context, t mbtichat.PersonalityType, topK int) ([]mbtichat.Passage, error) {
	if topK <= 0 {
		topK = 3
	}

	query := fmt.Sprintf(`{
  Get {
    %s(limit: %d, where: {path: ["type"], operator: Equal, valueString: %q}) {
      content
      category
    }
  }
}`, w.class, topK, string(t))

	data, err := w.doRequest(ctx, http.MethodPost, w.baseURL+"/v1/graphql", graphqlQuery{Query: query})
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode weaviate response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("weaviate query error: %s", parsed.Errors[0].Message)
	}

	objects := parsed.Data["Get"][w.class]
	passages := make([]mbtichat.Passage, 0, len(objects))
	for _, obj := range objects {
		passages = append(passages, mbtichat.Passage{
			Content:  obj.Content,
			Type:     t,
			Category: obj.Category,
		})
	}
	return passages, nil
}

// Ready probes the cluster readiness endpoint.
func (w *WeaviateStore) Ready(ctx context.Context) bool {
	if w.baseURL == "" {
		return false
	}
	_, err := w.doRequest(ctx, http.MethodGet, w.baseURL+"/v1/.well-known/ready", nil)
	return err == nil
}
