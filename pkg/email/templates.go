package email

import (
	"bytes"
	"html/template"
	"log"
)

// TemplateManager holds the parsed email templates.
type TemplateManager struct {
	WelcomeTmpl *template.Template
}

// NewTemplateManager parses all email templates at startup.
func NewTemplateManager() (*TemplateManager, error) {
	welcomeTmpl, err := template.New("welcome").Parse(welcomeTemplate)
	if err != nil {
		return nil, err
	}

	log.Println("Email templates parsed successfully.")
	return &TemplateManager{
		WelcomeTmpl: welcomeTmpl,
	}, nil
}

// TemplateData holds the dynamic data for an email template.
type TemplateData struct {
	Name string
	Role string
}

// GenerateWelcomeEmailHTML executes the welcome template with the provided data.
func (tm *TemplateManager) GenerateWelcomeEmailHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.WelcomeTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// --- HTML Template Definitions ---

const welcomeTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Welcome to Fleet Dispatch</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Welcome aboard, {{.Name}}!</h2>
	<p>Your {{.Role}} account is ready.</p>
	{{if eq .Role "driver"}}
	<p>You can now accept delivery orders assigned to you and track your current workload from the app.</p>
	{{else}}
	<p>You can now create delivery orders, assign drivers and vehicles, and keep the fleet moving.</p>
	{{end}}
	<p>If you did not sign up for this account, please ignore this email.</p>
</body>
</html>
`
