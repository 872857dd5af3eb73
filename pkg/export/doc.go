// Package export renders a computed keyhole layout into files for laser
// cutting software: SVG and DXF vector documents and a PNG raster preview.
package export
