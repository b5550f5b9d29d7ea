// Package render turns LaTeX expressions into images.
//
// Renderer is the seam the solve orchestrator fans out to. HTTPRenderer
// delegates to a LaTeX rendering service; TextRenderer draws the source
// text into a small SVG and needs no external service.
package render
