// Package playback is a minimal stand-in for the player: an ordered track
// queue that stamps every track change with a new generation.
package playback

import (
	"sync"

	"github.com/mmcdole/sleeve/internal/domain"
)

// Queue is safe for concurrent use.
type Queue struct {
	mu         sync.Mutex
	tracks     []string
	index      int
	generation uint64
}

// NewQueue creates a queue positioned on the first track
func NewQueue(tracks []string) *Queue {
	q := &Queue{tracks: append([]string(nil), tracks...)}
	if len(q.tracks) > 0 {
		q.generation = 1
	}
	return q
}

// Len returns the number of tracks
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tracks)
}

// Index returns the position of the current track
func (q *Queue) Index() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index
}

// Current returns the playing track, false when the queue is empty
func (q *Queue) Current() (domain.TrackRef, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.currentLocked()
}

// Next advances one track. At the end of the queue nothing changes.
func (q *Queue) Next() (domain.TrackRef, bool) {
	return q.move(func(i int) int { return i + 1 })
}

// Prev steps back one track. At the start of the queue nothing changes.
func (q *Queue) Prev() (domain.TrackRef, bool) {
	return q.move(func(i int) int { return i - 1 })
}

// Jump moves to track i
func (q *Queue) Jump(i int) (domain.TrackRef, bool) {
	return q.move(func(int) int { return i })
}

// move reports true only when the current track changed
func (q *Queue) move(to func(int) int) (domain.TrackRef, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := to(q.index)
	if i < 0 || i >= len(q.tracks) || i == q.index {
		ref, _ := q.currentLocked()
		return ref, false
	}
	q.index = i
	q.generation++
	return q.currentLocked()
}

func (q *Queue) currentLocked() (domain.TrackRef, bool) {
	if len(q.tracks) == 0 {
		return domain.TrackRef{}, false
	}
	return domain.TrackRef{Path: q.tracks[q.index], Generation: q.generation}, true
}
