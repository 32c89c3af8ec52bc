package mail

import (
	"bytes"
	"text/template"
)

const (
	verifyEmailSubject   = "Verify Your Email Address"
	resetPasswordSubject = "Password Reset"
)

const verifyEmailTmplRaw = `Welcome to Lostfound!

Please verify your email address by opening the link below:

{{.}}

The link expires in 5 hours. If you did not create an account, you can
ignore this email.
`

const resetPasswordTmplRaw = `You are receiving this because you (or someone else) requested a
password reset for your Lostfound account.

Open the link below to choose a new password:

{{.}}

The link expires in one hour. If you did not request this, ignore this
email and your password will remain unchanged.
`

var (
	verifyEmailTmpl   = template.Must(template.New("verify_email").Parse(verifyEmailTmplRaw))
	resetPasswordTmpl = template.Must(template.New("reset_password").Parse(resetPasswordTmplRaw))
)

func createBody(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
