package notifications

import (
	"embed"
	"fmt"

	"github.com/gobuffalo/plush/v4"
	"jaytaylor.com/html2text"
)

//go:embed templates/*.plush.html
var templateFS embed.FS

// RenderHTML renders the message's template with its Data. A message with a Body is returned as is.
func RenderHTML(msg Message) (string, error) {
	if msg.Body != "" {
		return msg.Body, nil
	}

	tpl, err := templateFS.ReadFile("templates/" + msg.Template + ".plush.html")
	if err != nil {
		return "", fmt.Errorf("unknown message template %q: %w", msg.Template, err)
	}

	data := map[string]any{
		"toName": msg.ToName,
		"reason": "",
	}
	for k, v := range msg.Data {
		data[k] = v
	}

	body, err := plush.Render(string(tpl), plush.NewContextWith(data))
	if err != nil {
		return "", fmt.Errorf("error rendering message template %s: %w", msg.Template, err)
	}
	return body, nil
}

// RenderText renders the message and converts the result to plain text
func RenderText(msg Message) (string, error) {
	body, err := RenderHTML(msg)
	if err != nil {
		return "", err
	}
	return html2text.FromString(body, html2text.Options{OmitLinks: false})
}
