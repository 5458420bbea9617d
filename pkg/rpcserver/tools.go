//go:build windows

package rpcserver

// toolSchema is a paste-ready MCP-style tool descriptor, advertised verbatim
// in response to a tools/list request. The shapes mirror spec §6 exactly;
// this file carries no behavior, only the advertised schema.
type toolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
	Annotations map[string]any `json:"annotations,omitempty"`
}

func readOnly() map[string]any {
	return map[string]any{"readOnlyHint": true}
}

func destructive() map[string]any {
	return map[string]any{"destructiveHint": true}
}

var toolsList = []toolSchema{
	{
		Name:        "list_allowed_roots",
		Description: "List allowlisted roots. Windows-only. Reparse policy: deny_all.",
		InputSchema: map[string]any{
			"type": "object", "properties": map[string]any{}, "additionalProperties": false,
		},
		Annotations: readOnly(),
	},
	{
		Name: "scan_reserved_names",
		Description: "Scan an allowlisted root for reserved-device / Win32-hostile entries. " +
			"Does not traverse reparse points (deny_all).",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"rootId":      map[string]any{"type": "string"},
				"recursive":   map[string]any{"type": "boolean"},
				"maxDepth":    map[string]any{"type": "integer", "minimum": 0},
				"includeDirs": map[string]any{"type": "boolean"},
			},
			"required":             []string{"rootId", "recursive", "includeDirs"},
			"additionalProperties": false,
		},
		Annotations: readOnly(),
	},
	{
		Name:        "get_finding",
		Description: "Return full details for a findingId returned by scan.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"findingId": map[string]any{"type": "string"},
			},
			"required":             []string{"findingId"},
			"additionalProperties": false,
		},
		Annotations: readOnly(),
	},
	{
		Name: "plan_cleanup",
		Description: "Create an explicit plan and per-entry confirmToken (TTL) bound to " +
			"finding identity (volumeSerial+fileId) and strategy.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"findingIds": map[string]any{
					"type": "array", "items": map[string]any{"type": "string"}, "minItems": 1,
				},
				"requestedActions": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string", "enum": []string{"DELETE"}},
					"minItems": 1,
				},
			},
			"required":             []string{"findingIds", "requestedActions"},
			"additionalProperties": false,
		},
		Annotations: readOnly(),
	},
	{
		Name: "delete_entry",
		Description: "Delete a file or an EMPTY directory only. " +
			"Requires confirmToken. No raw paths accepted.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"findingId":    map[string]any{"type": "string"},
				"confirmToken": map[string]any{"type": "string"},
			},
			"required":             []string{"findingId", "confirmToken"},
			"additionalProperties": false,
		},
		Annotations: destructive(),
	},
	{
		Name: "who_is_using",
		Description: "List processes currently using the target via Windows Restart Manager. " +
			"Read-only — never kills processes.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"findingId": map[string]any{"type": "string"},
			},
			"required":             []string{"findingId"},
			"additionalProperties": false,
		},
		Annotations: readOnly(),
	},
	{
		Name: "get_server_info",
		Description: "Server metadata: name, version, platform, policies, and capabilities. " +
			"Useful for debugging version mismatches and understanding server config.",
		InputSchema: map[string]any{
			"type": "object", "properties": map[string]any{}, "additionalProperties": false,
		},
		Annotations: readOnly(),
	},
}
