// Package recommend asks a language model for song recommendations and parses its reply.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DefaultGenre is used when the profile lists no genres.
const DefaultGenre = "pop"

const instruction = "이 조건들과 참조하여 관련된 노래 5개 추천해줘 (다른 글씨는 빼고 가수 - 노래명 그리고 선정이유는 다음줄로 요약해서 출력해줘)"

// ErrEmptyResponse is returned when the model reply has no non-blank lines.
var ErrEmptyResponse = errors.New("empty recommendation response")

// Completer sends a prompt to a text completion backend.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Request holds the conditions a recommendation is based on.
type Request struct {
	Location string
	Weather  string
	Mood     string
	Age      int
	Genre    string
}

// BuildPrompt renders the fixed recommendation prompt for req.
func BuildPrompt(req Request) string {
	genre := req.Genre
	if strings.TrimSpace(genre) == "" {
		genre = DefaultGenre
	}
	conditions := fmt.Sprintf("현위치는 %s, %s, 감정 상태: %s, 나이: %d세, 선호 장르: %s",
		req.Location, req.Weather, req.Mood, req.Age, genre)
	return conditions + instruction
}

// Requester turns recommendation requests into model prompts.
type Requester struct {
	completer Completer
	logger    *zap.Logger
}

// NewRequester creates a Requester backed by completer.
func NewRequester(completer Completer, logger *zap.Logger) *Requester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Requester{completer: completer, logger: logger}
}

// GetRecommendations sends one completion request and returns the reply
// split into non-blank lines.
func (r *Requester) GetRecommendations(ctx context.Context, req Request) ([]string, error) {
	prompt := BuildPrompt(req)
	r.logger.Debug("requesting recommendations", zap.String("prompt", prompt))

	text, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("requesting completion: %w", err)
	}

	lines := SplitLines(text)
	if len(lines) == 0 {
		return nil, ErrEmptyResponse
	}
	return lines, nil
}

// SplitLines splits text on newlines and drops blank lines.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
