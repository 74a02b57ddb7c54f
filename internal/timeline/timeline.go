package timeline

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// DefaultDuration is the length given to captions created by hand,
// before the user drags the handles.
const DefaultDuration = 3.0

// Caption is a timed text unit on the editing timeline. Start and End
// are seconds on the video timeline; End is always strictly greater
// than Start.
type Caption struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	StartTime float64   `json:"start_time"`
	EndTime   float64   `json:"end_time"`
}

// Update carries the optional fields of a caption update. Nil fields
// are left untouched.
type Update struct {
	Text      *string
	StartTime *float64
	EndTime   *float64
}

// Timeline holds the ordered caption collection for one editing
// session. All mutations keep the collection sorted by ascending start
// time and preserve start < end on every caption. Overlapping captions
// are allowed; ActiveCaptionAt resolves ties by taking the first match
// in start order.
//
// A Timeline also tracks which transcription run it last accepted.
// ReplaceAll is tagged with the run generation so a slow, stale
// transcription can never clobber the result of a newer one.
type Timeline struct {
	mu         sync.Mutex
	captions   []Caption
	selected   uuid.UUID
	generation uint64 // latest transcription run registered for this session
	applied    uint64 // generation of the last accepted ReplaceAll
}

// New returns an empty timeline.
func New() *Timeline {
	return &Timeline{}
}

// Add creates a caption starting at start with the default duration and
// empty text, inserts it in start order and selects it. Add never
// fails; a caption running past the end of the video is tolerated.
func (t *Timeline) Add(start float64) Caption {
	t.mu.Lock()
	defer t.mu.Unlock()

	if start < 0 {
		start = 0
	}
	c := Caption{
		ID:        uuid.New(),
		StartTime: start,
		EndTime:   start + DefaultDuration,
	}
	t.captions = append(t.captions, c)
	t.sortLocked()
	t.selected = c.ID
	return c
}

// Update applies the non-nil fields of upd to the caption matching id.
// A missing id is a no-op, not an error: the caption may have been
// replaced by a fresh transcription while the edit was in flight.
// An update that would leave start >= end is rejected.
func (t *Timeline) Update(id uuid.UUID, upd Update) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.captions {
		if t.captions[i].ID != id {
			continue
		}
		next := t.captions[i]
		if upd.Text != nil {
			next.Text = *upd.Text
		}
		if upd.StartTime != nil {
			next.StartTime = *upd.StartTime
		}
		if upd.EndTime != nil {
			next.EndTime = *upd.EndTime
		}
		if next.StartTime < 0 || next.StartTime >= next.EndTime {
			return false
		}
		t.captions[i] = next
		t.sortLocked()
		return true
	}
	return false
}

// Delete removes the caption matching id, clearing the selection if it
// pointed at the deleted caption. Absent ids are a no-op.
func (t *Timeline) Delete(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.captions {
		if t.captions[i].ID == id {
			t.captions = append(t.captions[:i], t.captions[i+1:]...)
			if t.selected == id {
				t.selected = uuid.Nil
			}
			return
		}
	}
}

// ActiveCaptionAt returns the first caption, by ascending start time,
// whose interval contains at (start <= at < end). This runs on every
// playback tick, so it is a plain linear scan over the already-sorted
// slice; at the expected scale (tens to low hundreds of captions) that
// is cheaper than maintaining any index.
func (t *Timeline) ActiveCaptionAt(at float64) (Caption, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, c := range t.captions {
		if c.StartTime > at {
			break // sorted: nothing later can contain at
		}
		if at < c.EndTime {
			return c, true
		}
	}
	return Caption{}, false
}

// BeginRun registers a new transcription run for this session and
// returns its generation tag. Pass the tag to ReplaceAll when the run
// completes; only the most recently started run wins.
func (t *Timeline) BeginRun() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
	return t.generation
}

// ReplaceAll discards the whole collection in favor of captions, which
// typically come from a completed transcription. The previous captions
// are not merged. If generation is stale (a newer run was started via
// BeginRun after this one) the result is dropped and ReplaceAll
// reports false.
func (t *Timeline) ReplaceAll(generation uint64, captions []Caption) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if generation < t.generation || generation < t.applied {
		return false
	}
	t.applied = generation

	t.captions = make([]Caption, 0, len(captions))
	for _, c := range captions {
		if c.StartTime < 0 || c.StartTime >= c.EndTime {
			continue // never admit a caption violating start < end
		}
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		t.captions = append(t.captions, c)
	}
	t.sortLocked()
	t.selected = uuid.Nil
	return true
}

// Captions returns a copy of the collection in start order.
func (t *Timeline) Captions() []Caption {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Caption, len(t.captions))
	copy(out, t.captions)
	return out
}

// Selected returns the id of the currently selected caption, or
// uuid.Nil when nothing is selected.
func (t *Timeline) Selected() uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected
}

// Select marks the caption matching id as selected. Unknown ids clear
// the selection.
func (t *Timeline) Select(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.captions {
		if c.ID == id {
			t.selected = id
			return
		}
	}
	t.selected = uuid.Nil
}

// Len returns the number of captions on the timeline.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.captions)
}

func (t *Timeline) sortLocked() {
	sort.SliceStable(t.captions, func(i, j int) bool {
		return t.captions[i].StartTime < t.captions[j].StartTime
	})
}
