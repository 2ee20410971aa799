package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// templateDirProperty is shared by every tool that matches templates.
var templateDirProperty = map[string]interface{}{
	"type":        "string",
	"description": "Directory of rank and suit template images. Defaults to the server's configured template directory.",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Recognition
		{
			Name:        "solitaire_read_state",
			Description: "Recognize a solitaire screenshot and return the game state: the draw pile, seven tableau piles and four discard slots. Unknown cards (face-down or undetected) are reported as \"null\". Optionally saves an annotated copy and the state JSON.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the screenshot",
					},
					"template_dir": templateDirProperty,
					"annotated_output": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for a copy of the screenshot with every detection outlined",
					},
					"state_output": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for the pretty-printed game-state JSON",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "solitaire_detect",
			Description: "Run template matching on a screenshot and return the rank and suit boxes that survive overlap suppression, the associated cards, and how the cards group into board zones and rows. Use this to debug a wrong game state.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the screenshot",
					},
					"template_dir": templateDirProperty,
				},
				"required": []string{"path"},
			},
		},

		// Templates
		{
			Name:        "solitaire_list_templates",
			Description: "List the templates that would be matched: label, kind (rank or suit), size and acceptance threshold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template_dir": templateDirProperty,
				},
			},
		},

		// Verification
		{
			Name:        "solitaire_verify_ranks",
			Description: "Cross-check every detected card's rank with OCR. Reports, per card, the template rank, the OCR reading and whether they agree. Diagnostic only: the game state is not changed. Requires a build with Tesseract support.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the screenshot",
					},
					"template_dir": templateDirProperty,
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code",
						"default":     "eng",
					},
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Upscale factor applied to each rank crop before OCR",
						"default":     3,
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
