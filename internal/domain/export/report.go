package export

import (
	"strings"
)

// Report summarises one export batch. Exports never fail part way: every
// per-session or per-row problem is counted here instead.
type Report struct {
	ID        string   `json:"id"`
	Operation string   `json:"operation"`
	Dir       string   `json:"dir"`
	Files     []string `json:"files"`
	Failed    []string `json:"failed,omitempty"`
	Errors    int      `json:"errors"`
}

// OK reports whether the whole batch completed without a single error.
func (r Report) OK() bool {
	return r.Errors == 0
}

// Message renders the end-of-operation summary shown to the user.
func (r Report) Message() string {
	var b strings.Builder
	b.WriteString("Directory:\n")
	b.WriteString(r.Dir)
	b.WriteString("\n")
	if r.Errors > 0 {
		b.WriteString("Error saving ")
		b.WriteString(r.Operation)
		b.WriteString(":\n")
		for _, name := range r.Failed {
			b.WriteString("  ")
			b.WriteString(name)
			b.WriteString("\n")
		}
	}
	b.WriteString("Saved to:\n")
	for _, name := range r.Files {
		b.WriteString("  ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Report) fail(name string, n int) {
	if n <= 0 {
		return
	}
	r.Errors += n
	for _, existing := range r.Failed {
		if existing == name {
			return
		}
	}
	r.Failed = append(r.Failed, name)
}
