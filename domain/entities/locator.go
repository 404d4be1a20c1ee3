package entities

import (
	"fmt"
	"strings"
)

// Locator describes which element to resolve on the live page.
// The zero Refine matches the first raw candidate in document order.
type Locator struct {
	Attribute   string      `json:"attribute"`
	Value       string      `json:"value"`
	MinCount    int         `json:"min_count,omitempty"` // required raw matches before refinement
	Refine      *Refinement `json:"refine,omitempty"`
	Visible     bool        `json:"visible,omitempty"`
	Description string      `json:"description,omitempty"`
}

// ByID - creates a locator matching the id attribute
func ByID(id string) Locator {
	return Locator{Attribute: "id", Value: id}
}

// Selector - renders the raw predicate as a CSS attribute selector
func (l Locator) Selector() string {
	return fmt.Sprintf(`[%s="%s"]`, l.Attribute, escapeCSSString(l.Value))
}

// WithText - narrows the locator to candidates holding a tag with the given text
func (l Locator) WithText(tag, text string) Locator {
	l.Refine = &Refinement{Tag: tag, Text: text}
	return l
}

// WithAttribute - narrows the locator to candidates whose attribute equals value
func (l Locator) WithAttribute(name, value string) Locator {
	l.Refine = &Refinement{Attribute: name, Value: value}
	return l
}

// AtLeast - sets the raw match count precondition
func (l Locator) AtLeast(n int) Locator {
	l.MinCount = n
	return l
}

// Displayed - requires the resolved element to be visible
func (l Locator) Displayed() Locator {
	l.Visible = true
	return l
}

// Named - attaches a human readable description used in logs and errors
func (l Locator) Named(description string) Locator {
	l.Description = description
	return l
}

func (l Locator) String() string {
	if l.Description != "" {
		return l.Description
	}
	s := l.Selector()
	if l.Refine != nil {
		s += " " + l.Refine.String()
	}
	return s
}

// Refinement narrows a raw match set. Tag/Text looks at a descendant,
// Attribute/Value at the candidate itself.
type Refinement struct {
	Tag       string `json:"tag,omitempty"`
	Text      string `json:"text,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Value     string `json:"value,omitempty"`
}

// MatchesText - reports whether raw descendant text matches after trimming
func (r Refinement) MatchesText(text string) MatchResult {
	if strings.TrimSpace(text) == r.Text {
		return Match
	}
	return NoMatch
}

func (r Refinement) String() string {
	if r.Tag != "" {
		return fmt.Sprintf("with <%s> %q", r.Tag, r.Text)
	}
	return fmt.Sprintf("with %s=%q", r.Attribute, r.Value)
}

// MatchResult is the outcome of evaluating a refinement on one candidate.
type MatchResult int

const (
	NoMatch MatchResult = iota
	Match
	// Absent means the descendant the refinement inspects does not exist.
	Absent
)

func (m MatchResult) String() string {
	switch m {
	case Match:
		return "match"
	case Absent:
		return "absent"
	default:
		return "no-match"
	}
}

func escapeCSSString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return r.Replace(s)
}
