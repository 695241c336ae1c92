package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"capture-recall/pkg/datemath"
	"capture-recall/pkg/llmprovider"
	"capture-recall/pkg/log"
)

const classifyTemperature = 0.1

// IClassifier turns raw user text into a typed Intent.
type IClassifier interface {
	Classify(ctx context.Context, text string) (Intent, error)
}

// Classifier delegates classification to the LLM provider chain and resolves
// classified date phrases through the date parser.
type Classifier struct {
	llm   *llmprovider.Manager
	dates *datemath.Parser
	l     log.Logger
	now   func() time.Time
}

var _ IClassifier = (*Classifier)(nil)

// NewClassifier creates a Classifier.
func NewClassifier(llm *llmprovider.Manager, dates *datemath.Parser, l log.Logger) *Classifier {
	return &Classifier{
		llm:   llm,
		dates: dates,
		l:     l,
		now:   time.Now,
	}
}

// classifiedPayload is the raw JSON shape the LLM returns.
type classifiedPayload struct {
	Intent        string `json:"intent"`
	Query         string `json:"query"`
	Memory        string `json:"memory"`
	Task          string `json:"task"`
	DueDateTime   string `json:"due_datetime"`
	Title         string `json:"title"`
	StartDateTime string `json:"start_datetime"`
	EndDateTime   string `json:"end_datetime"`
	Location      string `json:"location"`
}

// Classify sends the trimmed text to the classification service and decodes
// the result. Ambiguous or undecodable responses yield ErrUnclassifiable;
// a reminder/calendar result with an unresolvable date yields
// ErrUnparseableDate. Original casing is preserved in payloads.
func (c *Classifier) Classify(ctx context.Context, text string) (Intent, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Intent{}, ErrEmptyInput
	}

	resp, err := c.llm.Generate(ctx, &llmprovider.Request{
		System: classifySystemPrompt,
		Messages: []llmprovider.Message{
			{Role: "user", Content: fmt.Sprintf("Current time: %s\n\nMessage: %s",
				c.now().Format(time.RFC3339), trimmed)},
		},
		Temperature: classifyTemperature,
		MaxTokens:   512,
	})
	if err != nil {
		return Intent{}, fmt.Errorf("classification service: %w", err)
	}

	var payload classifiedPayload
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Text)), &payload); err != nil {
		c.l.Warnf(ctx, "intent: undecodable classification response: %v", err)
		return Intent{}, fmt.Errorf("%w: response was not valid JSON", ErrUnclassifiable)
	}

	out, err := c.build(payload)
	if err != nil {
		return Intent{}, err
	}
	c.l.Infof(ctx, "intent: classified as %s", out.Type)
	return out, nil
}

// build maps the raw payload to a validated Intent.
func (c *Classifier) build(p classifiedPayload) (Intent, error) {
	switch Type(p.Intent) {
	case TypeQuestion:
		if p.Query == "" {
			return Intent{}, fmt.Errorf("%w: question without query", ErrUnclassifiable)
		}
		out := Intent{Type: TypeQuestion, Question: &QuestionPayload{Query: p.Query}}
		return out, out.validate()

	case TypeSaveInfo:
		if p.Memory == "" {
			return Intent{}, fmt.Errorf("%w: save_info without memory", ErrUnclassifiable)
		}
		out := Intent{Type: TypeSaveInfo, SaveInfo: &SaveInfoPayload{Memory: p.Memory}}
		return out, out.validate()

	case TypeReminder:
		if p.Task == "" {
			return Intent{}, fmt.Errorf("%w: reminder without task", ErrUnclassifiable)
		}
		due, err := c.dates.Parse(p.DueDateTime, c.now())
		if err != nil {
			return Intent{}, fmt.Errorf("%w: %v", ErrUnparseableDate, err)
		}
		out := Intent{Type: TypeReminder, Reminder: &ReminderPayload{Task: p.Task, DueAt: due}}
		return out, out.validate()

	case TypeCalendar:
		if p.Title == "" {
			return Intent{}, fmt.Errorf("%w: calendar without title", ErrUnclassifiable)
		}
		start, err := c.dates.Parse(p.StartDateTime, c.now())
		if err != nil {
			return Intent{}, fmt.Errorf("%w: %v", ErrUnparseableDate, err)
		}
		end := start.Add(time.Hour)
		if p.EndDateTime != "" {
			end, err = c.dates.Parse(p.EndDateTime, c.now())
			if err != nil {
				return Intent{}, fmt.Errorf("%w: %v", ErrUnparseableDate, err)
			}
		}
		out := Intent{Type: TypeCalendar, Calendar: &CalendarPayload{
			Title:    p.Title,
			StartAt:  start,
			EndAt:    end,
			Location: p.Location,
		}}
		return out, out.validate()

	default:
		return Intent{}, fmt.Errorf("%w: service returned %q", ErrUnclassifiable, p.Intent)
	}
}

// stripCodeFences removes a surrounding markdown code block, if any.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	} else {
		return text
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
