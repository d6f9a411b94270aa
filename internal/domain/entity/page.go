package entity

import "fmt"

type SelectorKind string

const (
	SelectorCSS  SelectorKind = "css"
	SelectorText SelectorKind = "text"
)

// Selector is an expression resolved against the live DOM: a CSS selector
// or a text match (case-insensitive substring, whitespace-normalized).
type Selector struct {
	Kind       SelectorKind
	Expression string
}

func CSS(expr string) Selector  { return Selector{Kind: SelectorCSS, Expression: expr} }
func Text(text string) Selector { return Selector{Kind: SelectorText, Expression: text} }

// Target is how the selector is named in human-readable messages.
func (s Selector) Target() string {
	if s.Kind == SelectorText {
		return "element with text " + s.Expression
	}
	return s.Expression
}

func (s Selector) String() string {
	return fmt.Sprintf("%s=%s", s.Kind, s.Expression)
}

type ActionKind string

const (
	ActionClick  ActionKind = "click"
	ActionFill   ActionKind = "fill"
	ActionSelect ActionKind = "select"
	ActionHover  ActionKind = "hover"
)

type Action struct {
	Kind  ActionKind
	Value string
}

type ConsoleEntry struct {
	Level string
	Text  string
}

func (e ConsoleEntry) String() string {
	return fmt.Sprintf("[%s] %s", e.Level, e.Text)
}

// Evaluation is the outcome of a script run in page context. Value is nil
// when the script evaluated to undefined.
type Evaluation struct {
	Value []byte
	Logs  []string
}
