// Package server implements the MCP (Model Context Protocol) server for
// solitaire screenshot recognition.
//
// This package provides a JSON-RPC 2.0 server that exposes the recognition
// pipeline through the MCP protocol, so an agent driving a solitaire game in a
// browser can read the board from a screenshot it has just taken.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Recognition:
//   - solitaire_read_state: Screenshot to game state, optionally saving outputs
//   - solitaire_detect: Post-suppression boxes, associated cards and zone rows
//
// Templates:
//   - solitaire_list_templates: Loaded templates with kind, size and threshold
//
// Verification:
//   - solitaire_verify_ranks: OCR cross-check of every detected rank
//
// Every tool accepts an optional template_dir; omitted arguments fall back to
// the configuration the server was created with.
//
// # Image Caching
//
// The server maintains an in-memory cache of decoded images shared by all
// tool calls. Templates and repeated screenshots are decoded once for the
// lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    logger.Fatal().Err(err).Msg("server error")
//	}
package server
