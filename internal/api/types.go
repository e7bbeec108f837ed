package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/g5becks/ndoc/internal/document"
)

// Timestamp decodes the backend's zone-less LocalDateTime values as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
		lastErr = err
	}

	return lastErr
}

// PostSummary is one entry of a board listing. Activity listings omit Content.
type PostSummary struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Views     int64     `json:"views"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Post is the detail view of a single post.
type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Views     int64     `json:"views"`
	Image     string    `json:"image"`
	CreatedAt Timestamp `json:"createdAt"`

	// Answers are loaded separately for Q&A questions.
	Answers []Answer `json:"-"`
}

// Answer is a reply to a Q&A question.
type Answer struct {
	ID      int64  `json:"commentID"`
	Content string `json:"comment"`
}

// AnswerHeading titles the section answers are appended under.
const AnswerHeading = "답변"

// Document converts a post into its stored form. Answers follow the post
// body as a divider and a level-4 heading, each answer in its own block.
func (p *Post) Document(board Board) *document.Document {
	return &document.Document{
		ID:        p.ID,
		Board:     string(board),
		Title:     p.Title,
		Username:  p.Username,
		Views:     p.Views,
		CreatedAt: p.CreatedAt.Time,
		Image:     p.Image,
		Body:      p.body(),
	}
}

func (p *Post) body() string {
	if len(p.Answers) == 0 {
		return p.Content
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(p.Content, "\n"))
	b.WriteString("\n\n---\n#### " + AnswerHeading + "\n")
	for i, answer := range p.Answers {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(answer.Content)
	}

	return b.String()
}

// Post returns the summary as a post when the listing carried the content.
func (s *PostSummary) Post() *Post {
	return &Post{
		ID:        s.ID,
		Username:  s.Username,
		Title:     s.Title,
		Content:   s.Content,
		Views:     s.Views,
		CreatedAt: s.CreatedAt,
	}
}
