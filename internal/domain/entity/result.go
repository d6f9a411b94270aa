package entity

type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
)

type Content struct {
	Type     ContentType
	Text     string
	Data     []byte
	MIMEType string
}

type CommandResult struct {
	Content []Content
	IsError bool
}

func TextResult(lines ...string) *CommandResult {
	res := &CommandResult{Content: make([]Content, 0, len(lines))}
	for _, line := range lines {
		res.Content = append(res.Content, Content{Type: ContentTypeText, Text: line})
	}
	return res
}

func ErrorResult(msg string) *CommandResult {
	res := TextResult(msg)
	res.IsError = true
	return res
}

func (r *CommandResult) WithImage(data []byte, mimeType string) *CommandResult {
	r.Content = append(r.Content, Content{Type: ContentTypeImage, Data: data, MIMEType: mimeType})
	return r
}

// Text joins all text blocks with newlines.
func (r *CommandResult) Text() string {
	out := ""
	for i, c := range r.Content {
		if c.Type != ContentTypeText {
			continue
		}
		if i > 0 && out != "" {
			out += "\n"
		}
		out += c.Text
	}
	return out
}
