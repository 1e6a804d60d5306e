package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrValidation is the sentinel error for validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound covers malformed ids, missing documents and documents owned by someone else.
	ErrNotFound = errors.New("todo not found")
)

// Todo is a single item owned by the user that created it.
type Todo struct {
	ID          string `json:"_id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt"`
	CreatorID   string `json:"_creator"`
}

// New builds an incomplete todo for creatorID with trimmed text.
func New(text, creatorID string) Todo {
	return Todo{
		Text:      strings.TrimSpace(text),
		CreatorID: creatorID,
	}
}

func (t Todo) Validate() error {
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrValidation)
	}
	if t.CreatorID == "" {
		return fmt.Errorf("%w: creator is required", ErrValidation)
	}
	if t.Completed && t.CompletedAt == nil {
		return fmt.Errorf("%w: completedAt is required for completed todos", ErrValidation)
	}
	if !t.Completed && t.CompletedAt != nil {
		return fmt.Errorf("%w: completedAt must be empty for open todos", ErrValidation)
	}
	return nil
}

// Patch holds the only fields a client may change.
type Patch struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// Apply returns t updated by p. Completing stamps CompletedAt with now in
// epoch millis; anything else reopens the todo and clears the stamp.
func (t Todo) Apply(p Patch, now time.Time) (Todo, error) {
	if p.Text != nil {
		t.Text = strings.TrimSpace(*p.Text)
	}

	if p.Completed != nil && *p.Completed {
		ms := now.UnixMilli()
		t.Completed = true
		t.CompletedAt = &ms
	} else {
		t.Completed = false
		t.CompletedAt = nil
	}

	if err := t.Validate(); err != nil {
		return Todo{}, err
	}
	return t, nil
}
