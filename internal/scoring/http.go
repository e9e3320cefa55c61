package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// HTTPScorer submits feature vectors to an external inference service.
type HTTPScorer struct {
	BaseURL string
	Client  *http.Client
}

type requestBody struct {
	Features []float64 `json:"features"`
}

type responseBody struct {
	Score        float64 `json:"score"`
	ModelVersion string  `json:"model_version"`
}

func NewHTTPScorer(baseURL string) *HTTPScorer {
	return &HTTPScorer{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPScorer) Score(ctx context.Context, features Features) (float64, error) {
	if s.Client == nil {
		s.Client = &http.Client{Timeout: 15 * time.Second}
	}

	payload := requestBody{Features: features[:]}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/score", bytes.NewBuffer(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, errors.New("scoring service error")
	}

	var r responseBody
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return 0, err
	}
	return r.Score, nil
}

func (s *HTTPScorer) Close() error {
	if s.Client != nil {
		s.Client.CloseIdleConnections()
	}
	return nil
}
