package playback

import (
	"github.com/tphakala/soundbank/internal/logger"
	"github.com/tphakala/soundbank/internal/observability/metrics"
)

// SetMusicPlaylist replaces the playlist tracks. Unknown items are skipped
// and reported; the result is false when any was skipped.
func (e *Engine) SetMusicPlaylist(ids []string) bool {
	known := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := e.lookupItem(id); ok {
			known = append(known, id)
		}
	}
	e.playlist.SetTracks(known)
	return len(known) == len(ids)
}

// GetMusicPlaylist returns a copy of the playlist tracks
func (e *Engine) GetMusicPlaylist() []string {
	return e.playlist.Tracks()
}

// EnqueueMusic appends a track to the playlist
func (e *Engine) EnqueueMusic(id string) bool {
	if _, ok := e.lookupItem(id); !ok {
		return false
	}
	e.playlist.Enqueue(id)
	return true
}

// ConfigurePlaylist replaces the playlist options
func (e *Engine) ConfigurePlaylist(opts PlaylistOptions) {
	e.playlist.SetOptions(opts)
}

// PlaylistOptions returns the playlist options
func (e *Engine) PlaylistOptions() PlaylistOptions {
	return e.playlist.Options()
}

// PlaylistHistory returns the played track indices, oldest first
func (e *Engine) PlaylistHistory() []int {
	return e.playlist.History()
}

// IsPlaylistPlaying reports whether the playlist drives the music
func (e *Engine) IsPlaylistPlaying() bool {
	return e.playlist.Playing()
}

// PlayMusicPlaylist starts the playlist from a fresh history
func (e *Engine) PlayMusicPlaylist() bool {
	if e.playlist.Len() == 0 {
		e.warn("empty_playlist", "music", "playlist has no tracks")
		return false
	}
	e.playlist.Reset()
	e.playlist.setPlaying(true)
	return e.advance(metrics.DirectionNext)
}

// PlayNextOnPlaylist moves to the next track. It returns false, leaving the
// current music alone, when there is no next track.
func (e *Engine) PlayNextOnPlaylist() bool {
	return e.step(metrics.DirectionNext)
}

// PlayPreviousOnPlaylist moves back one track
func (e *Engine) PlayPreviousOnPlaylist() bool {
	return e.step(metrics.DirectionPrevious)
}

// step is a manual advance; on failure the playing flag is restored
func (e *Engine) step(direction string) bool {
	wasPlaying := e.playlist.Playing()
	e.playlist.setPlaying(true)
	if e.advance(direction) {
		return true
	}
	e.playlist.setPlaying(wasPlaying && e.music.Valid())
	return false
}

// advance plays the next playable track in direction. Tracks that fail to
// start are skipped, trying each track at most once.
func (e *Engine) advance(direction string) bool {
	o := playOptions{volume: 1}
	if direction == metrics.DirectionAuto {
		o.delay = e.playlist.Options().DelayBetweenTracks
	}

	for range e.playlist.Len() {
		var idx int
		var ok bool
		if direction == metrics.DirectionPrevious {
			idx, ok = e.playlist.Previous()
		} else {
			idx, ok = e.playlist.Next()
		}
		if !ok {
			e.log.Debug("playlist has no further track", logger.String("direction", direction))
			if direction == metrics.DirectionAuto {
				e.playlist.setPlaying(false)
			}
			return false
		}

		id := e.playlist.Track(idx)
		item, found := e.lookupItem(id)
		if !found {
			continue
		}
		_, err := e.playMusic(item, o)
		if e.outcome(item, err) {
			e.metrics.playlistAdvance(direction)
			e.log.Debug("playlist advanced",
				logger.String("direction", direction),
				logger.String("track", id),
				logger.Int("index", idx))
			return true
		}
	}

	e.playlist.setPlaying(false)
	return false
}
