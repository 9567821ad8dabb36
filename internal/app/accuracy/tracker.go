package accuracy

import (
	"sync"
	"time"
)

// Feedback is one user verdict on a recognition result.
type Feedback struct {
	Transcript     string    `json:"transcript"`
	UserCorrection string    `json:"user_correction,omitempty"`
	WasHelpful     bool      `json:"was_helpful"`
	Timestamp      time.Time `json:"timestamp"`
}

// Accuracy is the derived running statistic. AccuracyRate is clamped to
// [0,1]: feedback-only "correct" reports can push the raw correct counter
// past the recognition counter, and the clamp keeps the derived rate a clean
// reading while leaving the counters auditable.
type Accuracy struct {
	TotalRecognitions   int     `json:"total_recognitions"`
	CorrectRecognitions int     `json:"correct_recognitions"`
	UserCorrections     int     `json:"user_corrections"`
	AccuracyRate        float64 `json:"accuracy_rate"`
}

const defaultHistoryLimit = 100

// Tracker keeps running accuracy statistics from recognitions and user
// feedback. Feedback history is a bounded ring; oldest entries drop first.
type Tracker struct {
	mu           sync.Mutex
	total        int
	correct      int
	corrections  int
	history      []Feedback
	historyLimit int
}

// NewTracker creates a tracker with the default ~100-entry feedback history.
func NewTracker() *Tracker {
	return &Tracker{historyLimit: defaultHistoryLimit}
}

// RecordRecognition counts one completed recognition.
func (t *Tracker) RecordRecognition() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
}

// RecordCorrect counts one recognition confirmed correct. Independent of
// RecordRecognition.
func (t *Tracker) RecordCorrect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.correct++
}

// RecordCorrection counts one user-supplied correction. Independent of
// RecordRecognition.
func (t *Tracker) RecordCorrection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.corrections++
}

// AddFeedback appends to the bounded history. Helpful feedback also counts as
// a correct recognition; a present correction also counts as a correction.
func (t *Tracker) AddFeedback(fb Feedback) {
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = append(t.history, fb)
	if len(t.history) > t.historyLimit {
		t.history = t.history[len(t.history)-t.historyLimit:]
	}

	if fb.WasHelpful {
		t.correct++
	}
	if fb.UserCorrection != "" {
		t.corrections++
	}
}

// GetAccuracy computes the derived statistic. The rate is 1.0 when nothing
// has been recognized yet; that is the documented empty-state policy, not a
// divide-by-zero guard.
func (t *Tracker) GetAccuracy() Accuracy {
	t.mu.Lock()
	defer t.mu.Unlock()

	rate := 1.0
	if t.total > 0 {
		rate = float64(t.correct) / float64(t.total)
		if rate > 1 {
			rate = 1
		}
	}

	return Accuracy{
		TotalRecognitions:   t.total,
		CorrectRecognitions: t.correct,
		UserCorrections:     t.corrections,
		AccuracyRate:        rate,
	}
}

// History returns a copy of the feedback ring, oldest first.
func (t *Tracker) History() []Feedback {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Feedback, len(t.history))
	copy(out, t.history)
	return out
}

// Reset zeroes all counters and clears the feedback history.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total = 0
	t.correct = 0
	t.corrections = 0
	t.history = nil
}
