// Package opentdb is the Open Trivia Database client. Payloads are requested
// url3986-encoded so special characters survive transport, then decoded
// before normalization.
package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"quizblox-service/internal/app"
	"quizblox-service/internal/domain"
)

const DefaultBaseURL = "https://opentdb.com"

// Client fetches categories and multiple-choice questions. A non-zero API
// response code (no results, bad parameter) yields an empty pool rather than
// an error; the session layer turns an empty pool into NoQuestionsAvailable.
type Client struct {
	baseURL    string
	httpClient *http.Client

	randMu sync.Mutex
	rng    *rand.Rand
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type questionsResponse struct {
	ResponseCode int                     `json:"response_code"`
	Results      []domain.TriviaQuestion `json:"results"`
}

type categoriesResponse struct {
	TriviaCategories []domain.Category `json:"trivia_categories"`
}

// GetQuestions fetches up to count questions, optionally filtered by
// category and difficulty, and returns them normalized.
func (c *Client) GetQuestions(ctx context.Context, count, categoryID int, difficulty string) ([]domain.Question, error) {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(count))
	params.Set("type", "multiple")
	params.Set("encode", "url3986")
	if categoryID > 0 {
		params.Set("category", strconv.Itoa(categoryID))
	}
	if difficulty != "" {
		params.Set("difficulty", difficulty)
	}

	var payload questionsResponse
	if err := c.getJSON(ctx, "/api.php?"+params.Encode(), &payload); err != nil {
		return nil, err
	}
	if payload.ResponseCode != 0 {
		// Codes 1-4 mean the API cannot satisfy the query (commonly: not
		// enough questions for the filters). Treated as an empty pool.
		return nil, nil
	}

	raw := make([]domain.TriviaQuestion, 0, len(payload.Results))
	for _, q := range payload.Results {
		decoded, err := decodeQuestion(q)
		if err != nil {
			return nil, fmt.Errorf("decode question: %w", err)
		}
		raw = append(raw, decoded)
	}

	c.randMu.Lock()
	defer c.randMu.Unlock()
	return app.NormalizeTriviaBatch(raw, c.rng), nil
}

// Categories fetches the category list for the quiz setup screen.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var payload categoriesResponse
	if err := c.getJSON(ctx, "/api_category.php", &payload); err != nil {
		return nil, err
	}
	return payload.TriviaCategories, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trivia api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trivia api: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("trivia api: decode response: %w", err)
	}
	return nil
}

func decodeQuestion(q domain.TriviaQuestion) (domain.TriviaQuestion, error) {
	var err error
	if q.Category, err = url.PathUnescape(q.Category); err != nil {
		return q, err
	}
	if q.Difficulty, err = url.PathUnescape(q.Difficulty); err != nil {
		return q, err
	}
	if q.Question, err = url.PathUnescape(q.Question); err != nil {
		return q, err
	}
	if q.CorrectAnswer, err = url.PathUnescape(q.CorrectAnswer); err != nil {
		return q, err
	}
	for i, incorrect := range q.IncorrectAnswers {
		if q.IncorrectAnswers[i], err = url.PathUnescape(incorrect); err != nil {
			return q, err
		}
	}
	return q, nil
}
