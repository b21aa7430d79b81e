package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

const approvalHTML = `<!DOCTYPE html>
<html>
<body>
  <h1>Congratulations {{.ApplicantName}}!</h1>
  <p>We are pleased to inform you that your application for the <strong>{{.ProjectTitle}}</strong> program has been <strong>approved</strong>.</p>
  <h3>What happens next?</h3>
  <ul>
    <li>Our team will contact you within 2-3 business days</li>
    <li>You will receive detailed information about the program schedule</li>
    <li>Please keep your documents ready for verification</li>
  </ul>
  <p>Thank you for choosing Y4D NGO. Together, we can make a difference!</p>
</body>
</html>`

const rejectionHTML = `<!DOCTYPE html>
<html>
<body>
  <h1>Application Update</h1>
  <p>Dear {{.ApplicantName}},</p>
  <p>Thank you for your interest in the <strong>{{.ProjectTitle}}</strong> program. After careful review of your application, we regret to inform you that we are unable to approve your application at this time.</p>
  <p>You are welcome to apply for other programs or to reapply when the next enrollment period opens.</p>
  <p>Thank you for your interest in Y4D NGO programs.</p>
</body>
</html>`

var (
	approvalTmpl  = template.Must(template.New("approval").Parse(approvalHTML))
	rejectionTmpl = template.Must(template.New("rejection").Parse(rejectionHTML))
)

// Render builds the subject and HTML body for n.
func Render(n Notification) (Message, error) {
	var (
		tmpl    *template.Template
		subject string
	)
	switch n.Kind {
	case KindApproved:
		tmpl = approvalTmpl
		subject = "Your Application has been Approved - " + n.ProjectTitle
	case KindRejected:
		tmpl = rejectionTmpl
		subject = "Application Update - " + n.ProjectTitle
	default:
		return Message{}, fmt.Errorf("unknown notification kind %q", n.Kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, n); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", n.Kind, err)
	}
	return Message{To: n.To, Subject: subject, HTML: buf.String()}, nil
}
