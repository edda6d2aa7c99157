package utils

import "html/template"

const (
	TemplateContactInquiry   = "contact_inquiry"
	TemplateForwardedInquiry = "forwarded_inquiry"
	TemplateLeadInquiry      = "lead_inquiry"
	TemplateBlogContact      = "blog_contact"
	TemplateCallbackRequest  = "callback_request"
	TemplateJobApplication   = "job_application"
)

type mailView struct {
	Subject string
	Year    int
	SiteURL string
	Data    interface{}
}

const mailLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .field { margin: 6px 0; }
        .label { font-weight: bold; color: #555; }
        .message { background: #f7f9fa; border-left: 4px solid #3498db; padding: 12px; white-space: pre-wrap; }
        .notes li { margin-bottom: 6px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>{{.Subject}}</h2>
    </div>
    <div class="content">
        {{template "content" .Data}}
    </div>
    <div class="footer">
        {{if .SiteURL}}<p><a href="{{.SiteURL}}/admin">Open the admin panel</a></p>{{end}}
        <p>© {{.Year}} Agency Website. All rights reserved.</p>
    </div>
</body>
</html>`

var mailContents = map[string]string{
	TemplateContactInquiry: `{{define "content"}}
        <p>A new inquiry was submitted through the contact form.</p>
        <div class="field"><span class="label">Name:</span> {{.Name}}</div>
        <div class="field"><span class="label">Email:</span> {{.Email}}</div>
        <div class="field"><span class="label">Received:</span> {{.ReceivedAt.Format "02 Jan 2006 15:04"}}</div>
        <div class="message">{{.Message}}</div>
{{end}}`,

	TemplateForwardedInquiry: `{{define "content"}}
        <p>The following inquiry has been forwarded to you for follow-up.</p>
        <div class="field"><span class="label">Name:</span> {{.Name}}</div>
        {{if .Email}}<div class="field"><span class="label">Email:</span> {{.Email}}</div>{{end}}
        {{if .Phone}}<div class="field"><span class="label">Phone:</span> {{.Phone}}</div>{{end}}
        {{if .Company}}<div class="field"><span class="label">Company:</span> {{.Company}}</div>{{end}}
        <div class="field"><span class="label">Status:</span> {{.Status}}</div>
        <div class="field"><span class="label">Received:</span> {{.ReceivedAt.Format "02 Jan 2006 15:04"}}</div>
        <div class="message">{{.Message}}</div>
        {{if .Notes}}
        <h3>Notes</h3>
        <ul class="notes">
            {{range .Notes}}<li>{{.Content}} <small>({{.CreatedAt.Format "02 Jan 2006 15:04"}})</small></li>{{end}}
        </ul>
        {{end}}
{{end}}`,

	TemplateLeadInquiry: `{{define "content"}}
        <p>A new {{.Channel}} campaign inquiry was submitted.</p>
        <div class="field"><span class="label">First name:</span> {{.FirstName}}</div>
        <div class="field"><span class="label">Last name:</span> {{.LastName}}</div>
        <div class="field"><span class="label">Email:</span> {{.Email}}</div>
        <div class="field"><span class="label">Phone:</span> {{.PhoneNumber}}</div>
{{end}}`,

	TemplateBlogContact: `{{define "content"}}
        <p>A reader got in touch from the blog.</p>
        <div class="field"><span class="label">Name:</span> {{.Name}}</div>
        <div class="field"><span class="label">Email:</span> {{.Email}}</div>
        {{if .Company}}<div class="field"><span class="label">Company:</span> {{.Company}}</div>{{end}}
        {{if .Phone}}<div class="field"><span class="label">Phone:</span> {{.Phone}}</div>{{end}}
        {{if .ServiceOfInterest}}<div class="field"><span class="label">Service of interest:</span> {{.ServiceOfInterest}}</div>{{end}}
        <div class="message">{{.Message}}</div>
{{end}}`,

	TemplateCallbackRequest: `{{define "content"}}
        <p>Someone asked for a call back.</p>
        <div class="field"><span class="label">Name:</span> {{.Name}}</div>
        <div class="field"><span class="label">Phone:</span> {{.Phone}}</div>
        {{if .Company}}<div class="field"><span class="label">Company:</span> {{.Company}}</div>{{end}}
{{end}}`,

	TemplateJobApplication: `{{define "content"}}
        <p>A new application was received for <strong>{{.JobTitle}}</strong>.</p>
        <div class="field"><span class="label">Name:</span> {{.Name}}</div>
        <div class="field"><span class="label">Email:</span> {{.Email}}</div>
        {{if .Phone}}<div class="field"><span class="label">Phone:</span> {{.Phone}}</div>{{end}}
        {{if .ResumeURL}}<div class="field"><span class="label">Resume:</span> <a href="{{.ResumeURL}}">{{.ResumeURL}}</a></div>{{end}}
        {{if .CoverLetter}}<div class="message">{{.CoverLetter}}</div>{{end}}
{{end}}`,
}

func parseMailTemplates() map[string]*template.Template {
	parsed := make(map[string]*template.Template, len(mailContents))
	for name, content := range mailContents {
		tmpl := template.Must(template.New(name).Parse(mailLayout))
		parsed[name] = template.Must(tmpl.Parse(content))
	}
	return parsed
}
