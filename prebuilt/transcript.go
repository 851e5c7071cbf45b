package prebuilt

import (
	"encoding/json"
	"fmt"
	stdhtml "html"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/jiujiechenfeng/langgraph-source/graph"
)

var roleLabels = map[graph.Role]string{
	graph.RoleSystem: "System",
	graph.RoleHuman:  "Human",
	graph.RoleAI:     "AI",
	graph.RoleTool:   "Tool",
}

func roleLabel(m graph.Message) string {
	label, ok := roleLabels[m.Role]
	if !ok {
		label = string(m.Role)
	}
	if m.Role == graph.RoleTool && m.Name != "" {
		label += " (" + m.Name + ")"
	}
	return label
}

func formatCall(call graph.ToolCall) string {
	args, err := json.Marshal(call.Args)
	if err != nil || call.Args == nil {
		args = []byte("{}")
	}
	return fmt.Sprintf("%s(%s)", call.Name, args)
}

// RenderTranscriptHTML renders a conversation as an HTML fragment. Message
// content is treated as Markdown and sanitized, so model output cannot inject
// scripts or event handlers.
func RenderTranscriptHTML(msgs []graph.Message) string {
	policy := bluemonday.UGCPolicy()

	var sb strings.Builder
	sb.WriteString("<div class=\"transcript\">\n")
	for _, m := range msgs {
		fmt.Fprintf(&sb, "<div class=\"message %s\">\n", stdhtml.EscapeString(string(m.Role)))
		fmt.Fprintf(&sb, "<div class=\"role\">%s</div>\n", stdhtml.EscapeString(roleLabel(m)))
		if m.Content != "" {
			sb.Write(policy.SanitizeBytes(markdownToHTML(m.Content)))
		}
		if len(m.ToolCalls) > 0 {
			sb.WriteString("<ul class=\"tool-calls\">\n")
			for _, call := range m.ToolCalls {
				fmt.Fprintf(&sb, "<li><code>%s</code></li>\n", stdhtml.EscapeString(formatCall(call)))
			}
			sb.WriteString("</ul>\n")
		}
		sb.WriteString("</div>\n")
	}
	sb.WriteString("</div>\n")
	return sb.String()
}

func markdownToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(doc, renderer)
}

var (
	terminalRoleStyles = map[graph.Role]lipgloss.Style{
		graph.RoleSystem: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8")),
		graph.RoleHuman:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		graph.RoleAI:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		graph.RoleTool:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	}
	terminalBodyStyle = lipgloss.NewStyle().PaddingLeft(2)
	terminalCallStyle = lipgloss.NewStyle().PaddingLeft(2).Italic(true)
)

// RenderTranscriptTerminal renders a conversation for a terminal, one block
// per message with a colored role label.
func RenderTranscriptTerminal(msgs []graph.Message) string {
	blocks := make([]string, 0, len(msgs))
	for _, m := range msgs {
		style, ok := terminalRoleStyles[m.Role]
		if !ok {
			style = lipgloss.NewStyle().Bold(true)
		}

		lines := []string{style.Render(roleLabel(m) + ":")}
		if m.Content != "" {
			lines = append(lines, terminalBodyStyle.Render(m.Content))
		}
		for _, call := range m.ToolCalls {
			lines = append(lines, terminalCallStyle.Render("-> "+formatCall(call)))
		}
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return strings.Join(blocks, "\n\n") + "\n"
}
