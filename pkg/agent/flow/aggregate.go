package flow

import (
	"note-agent-be/pkg/agent/session"
	"note-agent-be/pkg/agent/tool"
)

// Aggregate normalizes a raw tool result into the action-history record the
// decision and finish prompts consume. Success is resolved in priority
// order: an explicit success flag inside the payload wins, then a top-level
// error, then an error result type; anything else counts as success.
func Aggregate(res *tool.Result) session.ActionRecord {
	record := session.ActionRecord{
		Kind:       "tool",
		ToolName:   res.ToolName,
		ResultType: res.ResultType,
		Parameters: res.Parameters,
	}
	if record.ToolName == "" {
		record.ToolName = "unknown"
	}
	if record.ResultType == "" {
		record.ResultType = "unknown"
	}

	switch {
	case res.Payload != nil && hasKey(res.Payload, "success"):
		ok, _ := res.Payload["success"].(bool)
		record.Success = ok
		if ok {
			record.Message = stringOr(res.Payload["message"], "Tool executed successfully")
			record.Result = res.Payload
		} else {
			record.Message = stringOr(res.Payload["error"], "Unknown error")
		}
	case res.Error != "":
		record.Success = false
		record.Message = res.Error
	case res.ResultType == "error":
		record.Success = false
		record.Message = "Tool execution error"
	default:
		record.Success = true
		record.Message = res.Message
		if record.Message == "" {
			record.Message = "Tool executed"
		}
		record.Result = res.Payload
	}

	return record
}

// contextPayload flattens a tool result into the map stored under the
// session's tool_results context key. Successful file edits get a
// success_summary line the finish prompt surfaces verbatim.
func contextPayload(res *tool.Result) map[string]interface{} {
	out := map[string]interface{}{
		"tool_name":   res.ToolName,
		"result_type": res.ResultType,
	}
	if res.Message != "" {
		out["message"] = res.Message
	}
	if res.Error != "" {
		out["error"] = res.Error
	}
	if res.FileId != "" {
		out["file_id"] = res.FileId
	}
	if res.Payload != nil {
		out["result"] = res.Payload
		if ok, _ := res.Payload["success"].(bool); ok {
			if changes, has := res.Payload["changes"]; has {
				out["success_summary"] = "✅ File edit completed successfully:\n" + stringOr(changes, "Changes applied to file.")
			}
		}
	}
	return out
}

func hasKey(m map[string]interface{}, key string) bool {
	_, ok := m[key]
	return ok
}

func stringOr(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
