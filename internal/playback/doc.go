// Package playback is the runtime half of soundbank: it turns definitions
// from a soundbank.Registry into live voices.
//
// The engine is single-threaded. Every state change happens inside a call
// on *Engine, and the per-frame Tick advances fades, delayed starts and
// completions. Goroutines other than the one driving the engine must go
// through Engine.Do, which is what Driver uses for its ticker.
//
// Layers, leaf first:
//
//   - Selector picks sub-items by pick mode and follows redirects up to a
//     bounded depth.
//   - gain.go holds the perceptual volume curve and pitch conversions.
//   - Voice is one playing instance with its own fade state machine.
//   - InstancePool recycles voices per prefab kind; VoicePool tracks live
//     voices and applies rate limits and instance caps.
//   - Playlist sequences music tracks.
//   - Engine is the facade callers use.
//
// Fade anchors are absolute timestamps, so a fade keeps running while its
// voice is paused and completes on the first tick after resume.
package playback
