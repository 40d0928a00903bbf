package flow

import (
	"fmt"
	"strings"

	"note-agent-be/pkg/agent/session"
)

var casualGreetings = []string{
	"hi", "hello", "hey", "sup", "yo", "howdy", "hiya", "heya", "greetings",
	"good morning", "good afternoon", "good evening",
}

var casualQuestions = []string{
	"how are you", "what's up", "wassup", "how's it going", "how are things", "what's new",
}

// isCasual detects short conversational queries that should get a brief
// reply instead of the full context-grounded response.
func isCasual(query string) bool {
	q := strings.ToLower(query)
	if len(strings.Fields(q)) > 5 {
		return false
	}
	trimmed := strings.TrimSpace(q)
	for _, g := range casualGreetings {
		if trimmed == g || strings.Contains(q, g) {
			return true
		}
	}
	for _, c := range casualQuestions {
		if strings.Contains(q, c) {
			return true
		}
	}
	return false
}

func finishPrompt(sess *session.Session, forcedMessage string) string {
	if isCasual(sess.Query) {
		return fmt.Sprintf(`You are a conversational assistant. For casual greetings or simple queries, keep your responses extremely brief.
# USER QUERY
%s

# TASK
Respond naturally but extremely briefly to this casual greeting. DO NOT explain what the greeting means. Just respond as a human would in a chat.
`, sess.Query)
	}

	var b strings.Builder

	b.WriteString("You are a general purpose chatbot designed to be helpful, informative, and supportive while assisting users with a wide range of tasks, providing accurate information, and responding to queries in a friendly and conversational manner.\n")
	b.WriteString("# USER QUERY\n")
	b.WriteString(sess.Query)
	b.WriteString("\n\n# AVAILABLE CONTEXT\n")
	if msg := ragMessage(sess); msg != "" {
		b.WriteString(msg)
	} else {
		b.WriteString("No additional context available.")
	}
	b.WriteString("\n\n")

	writeActionContext(&b, sess)
	writeToolContext(&b, sess)

	b.WriteString(`# TASK
Based on the user's query and the context information, provide a comprehensive and accurate response.
Be direct, concise, and helpful. If you cannot provide a complete answer due to missing information,
acknowledge this and provide the best response possible with the available information.
`)
	if forcedMessage != "" {
		b.WriteString("\nIMPORTANT NOTE: ")
		b.WriteString(forcedMessage)
		b.WriteString("\n")
	}
	b.WriteString(`
# INSTRUCTIONS
- If you see that a tool operation was successful, acknowledge it and provide a relevant response.
- If the user requested a file edit that was successful, confirm this in your response.
- If the user's query was something ambiguous and could have used a tool, or if it was a question that could be answered by the context, ask
  them if they would like to use a tool. The current tools available are for file reading, and note editing.
`)

	return b.String()
}

func ragMessage(sess *session.Session) string {
	raw, ok := sess.Context[session.ContextKeyRagResults]
	if !ok {
		return ""
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return ""
	}
	msg, _ := m["message"].(string)
	return msg
}

// writeActionContext renders the last three actions with their outcomes so
// the model knows what already happened and how it went.
func writeActionContext(b *strings.Builder, sess *session.Session) {
	actions := sess.LastActions(3)
	if len(actions) == 0 {
		return
	}
	b.WriteString("## ACTIONS PERFORMED\n")
	for i, action := range actions {
		if action.Kind != "tool" {
			fmt.Fprintf(b, "%d. Decided: %s\n", i+1, action.Message)
			continue
		}
		status := "❌ FAILED"
		if action.Success {
			status = "✅ SUCCESS"
		}
		fmt.Fprintf(b, "%d. Used %s: [%s] - %s\n", i+1, action.ToolName, status, action.Message)

		if action.Success && action.ToolName == "file_interaction" && action.Result != nil {
			if changes, ok := action.Result["changes"].(string); ok && changes != "" {
				fmt.Fprintf(b, "   Changes: %s\n", changes)
			}
		}
	}
	b.WriteString("\n")
}

func writeToolContext(b *strings.Builder, sess *session.Session) {
	raw, ok := sess.Context[session.ContextKeyToolResults]
	if !ok {
		return
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return
	}

	b.WriteString("## TOOL EXECUTION RESULTS\n")
	fmt.Fprintf(b, "Tool: %s\n", stringOr(m["tool_name"], "unknown"))
	fmt.Fprintf(b, "Type: %s\n", stringOr(m["result_type"], "unknown"))
	if fileId, ok := m["file_id"].(string); ok && fileId != "" {
		fmt.Fprintf(b, "File ID: %s\n", fileId)
	}

	if result, ok := m["result"].(map[string]interface{}); ok {
		if success, has := result["success"].(bool); has {
			if success {
				fmt.Fprintf(b, "✅ SUCCESS: %s\n", stringOr(result["message"], "Operation completed successfully"))
				if changes, ok := result["changes"].(string); ok && changes != "" {
					fmt.Fprintf(b, "\nChanges made: %s\n", changes)
				}
			} else {
				fmt.Fprintf(b, "❌ FAILED: %s\n", stringOr(result["error"], "Operation failed"))
			}
		}
	}
	if summary, ok := m["success_summary"].(string); ok && summary != "" {
		b.WriteString(summary)
		b.WriteString("\n")
	}
	if msg, ok := m["message"].(string); ok && msg != "" {
		b.WriteString(msg)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
