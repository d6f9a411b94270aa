package entity

// Artifact is a stored screenshot. URL is empty for inline artifacts, whose
// bytes travel with the result instead.
type Artifact struct {
	Name     string
	URL      string
	MIMEType string
	Inline   []byte
}

func (a *Artifact) IsInline() bool {
	return a.URL == "" && len(a.Inline) > 0
}
