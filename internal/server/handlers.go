package server

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/solitaire-vision/internal/detection"
	"github.com/ironsheep/solitaire-vision/internal/imaging"
	"github.com/ironsheep/solitaire-vision/internal/layout"
	"github.com/ironsheep/solitaire-vision/internal/ocr"
	"github.com/ironsheep/solitaire-vision/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "solitaire_read_state").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Str("tool", params.Name).Err(err).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Falls back to the server configuration for omitted parameters
//  3. Loads the screenshot through the shared image cache
//  4. Runs the pipeline (and OCR for verification)
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Recognition
	case "solitaire_read_state":
		return s.handleReadState(args)
	case "solitaire_detect":
		return s.handleDetect(args)

	// Templates
	case "solitaire_list_templates":
		return s.handleListTemplates(args)

	// Verification
	case "solitaire_verify_ranks":
		return s.handleVerifyRanks(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// recognizer builds a pipeline for one call. An empty templateDir uses the
// configured directory.
func (s *Server) recognizer(templateDir string) (*pipeline.Recognizer, error) {
	opts, err := pipeline.OptionsFromConfig(s.cfg)
	if err != nil {
		return nil, err
	}
	if templateDir != "" {
		opts.TemplateDir = templateDir
	}
	matcher, err := detection.NewMatcher(s.cfg.Matcher)
	if err != nil {
		return nil, err
	}
	return pipeline.New(s.cache, matcher, opts, s.log), nil
}

// === Recognition Handlers ===

type readStateArgs struct {
	Path            string `json:"path"`
	TemplateDir     string `json:"template_dir"`
	AnnotatedOutput string `json:"annotated_output"`
	StateOutput     string `json:"state_output"`
}

type readStateResult struct {
	State           layout.GameState `json:"state"`
	Cards           int              `json:"cards_detected"`
	AnnotatedOutput string           `json:"annotated_output,omitempty"`
	StateOutput     string           `json:"state_output,omitempty"`
}

func (s *Server) handleReadState(args json.RawMessage) (interface{}, error) {
	var a readStateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	r, err := s.recognizer(a.TemplateDir)
	if err != nil {
		return nil, err
	}
	res, err := r.Run(a.Path, a.AnnotatedOutput, a.StateOutput)
	if err != nil {
		return nil, err
	}
	return &readStateResult{
		State:           res.State,
		Cards:           len(res.Detections.Cards),
		AnnotatedOutput: a.AnnotatedOutput,
		StateOutput:     a.StateOutput,
	}, nil
}

type detectArgs struct {
	Path        string `json:"path"`
	TemplateDir string `json:"template_dir"`
}

// zoneSummary lists the card labels of one zone, row by row.
type zoneSummary struct {
	Zone int        `json:"zone"`
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

type detectResult struct {
	*pipeline.Detections
	Zones []zoneSummary `json:"zones"`
}

func (s *Server) handleDetect(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	r, err := s.recognizer(a.TemplateDir)
	if err != nil {
		return nil, err
	}
	img, err := r.Load(a.Path)
	if err != nil {
		return nil, err
	}
	d, err := r.Detect(img)
	if err != nil {
		return nil, err
	}

	result := &detectResult{Detections: d, Zones: make([]zoneSummary, 0, layout.ZoneCount)}
	for z, rows := range layout.Group(d.Cards, d.Width, s.cfg.Layout.RowStep) {
		summary := zoneSummary{Zone: z, Name: layout.Zone(z).String(), Rows: make([][]string, 0, len(rows))}
		for _, row := range rows {
			labels := make([]string, 0, len(row))
			for _, b := range row {
				labels = append(labels, b.Label)
			}
			summary.Rows = append(summary.Rows, labels)
		}
		result.Zones = append(result.Zones, summary)
	}
	return result, nil
}

// === Template Handlers ===

type listTemplatesArgs struct {
	TemplateDir string `json:"template_dir"`
}

type templateInfo struct {
	Label     string  `json:"label"`
	Kind      string  `json:"kind"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Threshold float64 `json:"threshold"`
	Path      string  `json:"path"`
}

func (s *Server) handleListTemplates(args json.RawMessage) (interface{}, error) {
	var a listTemplatesArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}

	r, err := s.recognizer(a.TemplateDir)
	if err != nil {
		return nil, err
	}
	templates, err := r.Templates()
	if err != nil {
		return nil, err
	}
	return describeTemplates(templates, s.cfg.Thresholds), nil
}

func describeTemplates(templates []imaging.Template, thresholds detection.Thresholds) []templateInfo {
	infos := make([]templateInfo, 0, len(templates))
	for _, t := range templates {
		infos = append(infos, templateInfo{
			Label:     t.Label,
			Kind:      detection.KindOf(t.Label).String(),
			Width:     t.Width(),
			Height:    t.Height(),
			Threshold: thresholds.For(t.Label),
			Path:      t.Path,
		})
	}
	return infos
}

// === Verification Handlers ===

type verifyRanksArgs struct {
	Path        string `json:"path"`
	TemplateDir string `json:"template_dir"`
	Language    string `json:"language"`
	Scale       int    `json:"scale"`
}

func (s *Server) handleVerifyRanks(args json.RawMessage) (interface{}, error) {
	var a verifyRanksArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.Language == "" {
		a.Language = s.cfg.OCRLanguage
	}
	if a.Scale == 0 {
		a.Scale = s.cfg.OCRScale
	}

	r, err := s.recognizer(a.TemplateDir)
	if err != nil {
		return nil, err
	}
	img, err := r.Load(a.Path)
	if err != nil {
		return nil, err
	}
	d, err := r.Detect(img)
	if err != nil {
		return nil, err
	}

	reader, err := ocr.NewReader(a.Language)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return ocr.Verify(reader, img, d.Cards, a.Scale), nil
}
