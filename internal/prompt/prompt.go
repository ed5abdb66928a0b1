// Package prompt holds the fixed prompt templates used by the agents and
// fills their named slots. Rendering goes through Eino's FString chat
// template so slot syntax matches the rest of the Eino pipeline.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// ID names a registered template.
type ID string

const (
	// AQI is the air-quality expert template.
	AQI ID = "aqi"
	// Documents is the grounded document Q&A template.
	Documents ID = "documents"
	// Video is the video strategist template.
	Video ID = "video"
)

var slotPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ErrUnknownTemplate is returned by Compose for an unregistered ID.
var ErrUnknownTemplate = errors.New("prompt: unknown template")

// MissingSlotError reports a declared slot that was not supplied.
type MissingSlotError struct {
	Template ID
	Slot     string
}

func (e *MissingSlotError) Error() string {
	return fmt.Sprintf("prompt: template %q: missing value for slot %q", e.Template, e.Slot)
}

// Template is a prompt body with named {slot} placeholders.
type Template struct {
	id    ID
	text  string
	slots []string
}

// New parses text and records its slots in order of first appearance.
func New(id ID, text string) *Template {
	seen := make(map[string]bool)
	var slots []string
	for _, m := range slotPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			slots = append(slots, m[1])
		}
	}
	return &Template{id: id, text: text, slots: slots}
}

// ID returns the template identifier.
func (t *Template) ID() ID { return t.id }

// Slots returns the declared slot names.
func (t *Template) Slots() []string {
	out := make([]string, len(t.slots))
	copy(out, t.slots)
	return out
}

// Fill substitutes every slot with its value verbatim. Extra values are
// ignored; a missing one yields *MissingSlotError.
func (t *Template) Fill(ctx context.Context, values map[string]string) (string, error) {
	vars := make(map[string]any, len(t.slots))
	for _, s := range t.slots {
		v, ok := values[s]
		if !ok {
			return "", &MissingSlotError{Template: t.id, Slot: s}
		}
		vars[s] = v
	}

	tpl := einoprompt.FromMessages(schema.FString, schema.UserMessage(t.text))
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("prompt: render %q: %w", t.id, err)
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("prompt: render %q: no messages produced", t.id)
	}
	return msgs[0].Content, nil
}

var registry = map[ID]*Template{
	AQI:       New(AQI, aqiTemplate),
	Documents: New(Documents, documentsTemplate),
	Video:     New(Video, videoTemplate),
}

// Lookup returns the registered template for id.
func Lookup(id ID) (*Template, error) {
	t, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return t, nil
}

// Compose fills the registered template id with values.
func Compose(ctx context.Context, id ID, values map[string]string) (string, error) {
	t, err := Lookup(id)
	if err != nil {
		return "", err
	}
	return t.Fill(ctx, values)
}
