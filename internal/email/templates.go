package email

import (
	"bytes"
	"html/template"
)

var notifyTmpl = template.Must(template.New("notify").Parse(`<html><body>
<h2>{{.Heading}}</h2>
<p>{{.Body}}</p>
{{if .Link}}<p><a href="{{.Link}}">Open KinHub</a></p>{{end}}
</body></html>`))

type notifyData struct {
	Heading string
	Body    string
	Link    string
}

func render(heading, body, link string) string {
	var buf bytes.Buffer
	_ = notifyTmpl.Execute(&buf, notifyData{Heading: heading, Body: body, Link: link})
	return buf.String()
}

func NewMemoryEmail(actorName, title, familyName, link string) (string, string) {
	return "New memory in " + familyName,
		render("New memory: "+title, actorName+" shared a new memory with your family.", link)
}

func NewEventEmail(actorName, title, familyName, link string) (string, string) {
	return "New event in " + familyName,
		render("New event: "+title, actorName+" added an event to the family calendar.", link)
}

func NewMemberEmail(memberName, familyName, link string) (string, string) {
	return "New member in " + familyName,
		render("Welcome "+memberName, memberName+" was added to the family tree.", link)
}

func TestEmail() (string, string) {
	return "KinHub email test",
		render("It works", "This is a test email from your KinHub server.", "")
}

func InvitationEmail(inviterName, familyName, link string) (string, string) {
	return inviterName + " invited you to join " + familyName + " on KinHub",
		render("You're invited", inviterName+" invited you to join the "+familyName+" family.", link)
}
