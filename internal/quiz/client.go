package quiz

import (
	"encoding/json"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const defaultAPIURL = "https://opentdb.com/api.php"

// questionsPerQuiz matches the batch size the client plays in one round.
const questionsPerQuiz = 10

// Client fetches multiple-choice question batches from the Open Trivia DB.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithURL points the client at a different endpoint; used by
// tests to target a local stub server.
func NewClientWithURL(apiURL string) *Client {
	c := NewClient()
	c.apiURL = apiURL
	return c
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

type apiQuestion struct {
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// Question is one prompt with its answer options already permuted.
type Question struct {
	Category      string   `json:"category"`
	Difficulty    string   `json:"difficulty"`
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correct_answer"`
	Answers       []string `json:"answers"`
}

// Batch is one fetched quiz round. SessionToken is a fresh idempotency
// key the client submits back with the completed attempt.
type Batch struct {
	SessionToken string     `json:"session_token"`
	Questions    []Question `json:"questions"`
}

// FetchQuestions pulls one batch filtered by the optional category id and
// difficulty name, decodes the HTML entities the upstream API escapes,
// and shuffles each question's options.
func (c *Client) FetchQuestions(category, difficulty string) (*Batch, error) {
	params := url.Values{}
	params.Set("amount", fmt.Sprintf("%d", questionsPerQuiz))
	params.Set("type", "multiple")
	if category != "" {
		params.Set("category", category)
	}
	if difficulty != "" {
		params.Set("difficulty", difficulty)
	}

	resp, err := c.httpClient.Get(c.apiURL + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetching questions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question source returned status %d", resp.StatusCode)
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	if decoded.ResponseCode != 0 {
		return nil, fmt.Errorf("question source returned response code %d", decoded.ResponseCode)
	}

	questions := make([]Question, len(decoded.Results))
	for i, q := range decoded.Results {
		answers := make([]string, 0, len(q.IncorrectAnswers)+1)
		answers = append(answers, html.UnescapeString(q.CorrectAnswer))
		for _, a := range q.IncorrectAnswers {
			answers = append(answers, html.UnescapeString(a))
		}
		shuffleAnswers(answers)

		questions[i] = Question{
			Category:      html.UnescapeString(q.Category),
			Difficulty:    q.Difficulty,
			Question:      html.UnescapeString(q.Question),
			CorrectAnswer: html.UnescapeString(q.CorrectAnswer),
			Answers:       answers,
		}
	}

	return &Batch{
		SessionToken: uuid.NewString(),
		Questions:    questions,
	}, nil
}

// shuffleAnswers permutes the options in place with a Fisher-Yates
// shuffle, so every ordering is equally likely and the correct answer
// holds no privileged slot.
func shuffleAnswers(answers []string) {
	rand.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})
}
