// Package layout implements the text-side of the pipeline (C3-C7): grouping
// fragments into rows, detecting sub/superscripts, merging row-internal
// fragments, detecting column structure and reading-order blocks, and
// assembling paragraphs including the cross-page continuation pass.
//
// Each stage is a pure function over a page's frozen fragment arena; none
// of them mutate Fragment.Text, position, or FontID — only the ColID,
// ReadingBlock, IsScript, ScriptType and ScriptParentIdx annotation fields
// fragments carry for exactly this purpose.
package layout
