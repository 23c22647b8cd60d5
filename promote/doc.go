// Package promote implements the structural promoter (C12): it takes the
// unified, reading-ordered document produced by fusion (C10) and lifts it
// into a DocBook-shaped structure — chapters and sections nested by
// heading level, lists, figures, and tables materialized as their own
// elements, and a table of contents recognized and skipped rather than
// promoted as body text.
//
// The promoter never re-derives position or text content; it only
// classifies and regroups paragraphs and media/table elements that fusion
// already placed in reading order, mirroring the teacher pack's layered
// layout->heading->list analysis in layout/heading.go and layout/list.go.
package promote
