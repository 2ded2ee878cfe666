package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var enrollmentTmpl = template.Must(template.New("enrollment").Parse(`<p>Hi {{.Member}},</p>
<p>{{.Lead}} <strong>{{.Class}}</strong> with {{.Trainer}} on {{.When}}.</p>
{{if .Remaining}}<p>{{.Remaining}}</p>{{end}}
<p>See you at the gym.</p>`))

// ClassMessage carries the details shown in enrollment emails.
type ClassMessage struct {
	MemberEmail string
	MemberName  string
	ClassName   string
	TrainerName string
	StartsAt    time.Time
}

// EnrollmentConfirmation builds the email sent after a member enrolls.
// PRE: msg.MemberEmail is non-empty
// POST: returns a request with an escaped HTML body
func EnrollmentConfirmation(msg ClassMessage, availableSpots int) (SendRequest, error) {
	remaining := fmt.Sprintf("%d spots remain.", availableSpots)
	if availableSpots == 0 {
		remaining = "You took the last spot."
	}
	return render(msg, "You're booked into", "Booked: "+msg.ClassName, remaining)
}

// CancellationNotice builds the email sent after a member leaves a class.
// PRE: msg.MemberEmail is non-empty
// POST: returns a request with an escaped HTML body
func CancellationNotice(msg ClassMessage) (SendRequest, error) {
	return render(msg, "You've cancelled your spot in", "Cancelled: "+msg.ClassName, "")
}

func render(msg ClassMessage, lead, subject, remaining string) (SendRequest, error) {
	trainer := msg.TrainerName
	if trainer == "" {
		trainer = "your trainer"
	}
	var buf bytes.Buffer
	err := enrollmentTmpl.Execute(&buf, map[string]string{
		"Member":    msg.MemberName,
		"Lead":      lead,
		"Class":     msg.ClassName,
		"Trainer":   trainer,
		"When":      msg.StartsAt.Format("Mon 2 Jan 15:04"),
		"Remaining": remaining,
	})
	if err != nil {
		return SendRequest{}, fmt.Errorf("render email: %w", err)
	}
	return SendRequest{
		To:      []string{msg.MemberEmail},
		Subject: subject,
		HTML:    buf.String(),
	}, nil
}
