package utils

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/microcosm-cc/bluemonday"
	"github.com/orangery/ams/shared/domain"
	"github.com/orangery/ams/shared/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var DefaultTemplates = map[domain.EventType]string{
	domain.EventBirthday:    "Happy Birthday, {{.FirstName}}! 🎉",
	domain.EventAnniversary: "Happy Anniversary, {{.FirstName}}! 🎉",
	domain.EventOthers:      "Happy {{.Label}}, {{.FirstName}}! 🎉",
}

// templateData is what message placeholders can reference.
type templateData struct {
	FirstName string
	LastName  string
	Username  string
	Label     string
}

func newTemplateData(c domain.Celebrant) templateData {
	return templateData{FirstName: c.FirstName, LastName: c.LastName, Username: c.Username, Label: c.Label}
}

type Renderer struct {
	templates map[domain.EventType]*template.Template
	md        goldmark.Markdown
	strict    *bluemonday.Policy
	ugc       *bluemonday.Policy
}

// NewRenderer parses the configured templates on top of the defaults. Keys must be event types.
func NewRenderer(overrides map[string]string) (*Renderer, error) {
	sources := make(map[domain.EventType]string, len(DefaultTemplates))
	for k, v := range DefaultTemplates {
		sources[k] = v
	}
	for k, v := range overrides {
		eventType, err := domain.ParseEventType(k)
		if err != nil {
			return nil, fmt.Errorf("message_templates: %w", err)
		}
		if strings.TrimSpace(v) != "" {
			sources[eventType] = v
		}
	}

	r := &Renderer{
		templates: make(map[domain.EventType]*template.Template, len(sources)),
		md:        goldmark.New(goldmark.WithExtensions(extension.Strikethrough)),
		strict:    bluemonday.StrictPolicy(),
		ugc:       bluemonday.UGCPolicy(),
	}
	for eventType, src := range sources {
		tmpl, err := parseTemplate(string(eventType), src)
		if err != nil {
			return nil, fmt.Errorf("message_templates.%s: %w", eventType, err)
		}
		r.templates[eventType] = tmpl
	}
	return r, nil
}

func parseTemplate(name, src string) (*template.Template, error) {
	return template.New(name).Option("missingkey=error").Parse(src)
}

// Render fills the template for eventType with the celebrant's details.
func (r *Renderer) Render(eventType domain.EventType, c domain.Celebrant) (domain.MsgText, error) {
	tmpl, ok := r.templates[eventType]
	if !ok {
		return "", errors.BadRequest("No message template available for this event")
	}
	return execute(tmpl, c)
}

// RenderCustom strips markup from an admin supplied body and then fills its placeholders.
func (r *Renderer) RenderCustom(body string, c domain.Celebrant) (domain.MsgText, error) {
	tmpl, err := parseTemplate("custom", r.PlainText(body))
	if err != nil || !onlyFields(tmpl.Tree.Root) {
		return "", errors.BadRequest("Message has invalid placeholders")
	}
	text, err := execute(tmpl, c)
	if err != nil {
		return "", errors.BadRequest("Message has invalid placeholders")
	}
	return text, nil
}

// onlyFields accepts text and bare {{.Field}} actions. Control structures, functions
// and pipelines are refused so a custom body cannot loop or call anything.
func onlyFields(root *parse.ListNode) bool {
	for _, node := range root.Nodes {
		switch n := node.(type) {
		case *parse.TextNode:
		case *parse.ActionNode:
			if len(n.Pipe.Decl) > 0 || len(n.Pipe.Cmds) != 1 || len(n.Pipe.Cmds[0].Args) != 1 {
				return false
			}
			field, ok := n.Pipe.Cmds[0].Args[0].(*parse.FieldNode)
			if !ok || len(field.Ident) != 1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// PlainText removes every tag and leaves readable text.
func (r *Renderer) PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(r.strict.Sanitize(s)))
}

// HTML renders a message as markdown and sanitises the result for display.
func (r *Renderer) HTML(text domain.MsgText) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return html.EscapeString(text)
	}
	return strings.TrimSpace(r.ugc.Sanitize(buf.String()))
}

func execute(tmpl *template.Template, c domain.Celebrant) (domain.MsgText, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newTemplateData(c)); err != nil {
		return "", fmt.Errorf("failed to render message: %w", err)
	}
	return buf.String(), nil
}
