// Package pipeline runs the full screenshot recognition:
//
//	screenshot + templates
//	  -> template matching (parallel across templates)
//	  -> boxes
//	  -> suppression (ranks and suits separately)
//	  -> rank/suit association
//	  -> zone and row grouping
//	  -> game state
//
// A Recognizer is stateless between runs apart from its image loader, which
// may cache decoded files.
package pipeline
