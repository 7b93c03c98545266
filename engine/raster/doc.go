// Package raster is a small software rasterizer for triangle lists given in
// normalized device coordinates.
//
// It is the CPU stand-in for the GPU draw call: points arrive exactly as they
// would be uploaded to a vertex buffer, every consecutive triple is one
// triangle, and the result is written into a caller-provided Target.
//
// Pipeline (fixed):
//
//	NDC points → viewport mapping → triangle setup → fill or outline → Target.
//
// The renderer keeps no per-frame allocations once created.
package raster
