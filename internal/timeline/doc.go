// Package timeline implements the non-linear compositing model embedded in
// timeline nodes: an ordered clip sequence with derived start offsets, a
// dual-source playback clock that keeps a video surface and an audio track
// in lockstep, waveform binning for scrub rendering, and export of the
// composited sequence as a single archive.
package timeline
