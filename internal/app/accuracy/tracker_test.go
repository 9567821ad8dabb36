package accuracy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAccuracy_FreshTrackerReadsPerfect(t *testing.T) {
	tracker := NewTracker()

	acc := tracker.GetAccuracy()

	assert.Equal(t, 0, acc.TotalRecognitions)
	assert.Equal(t, 1.0, acc.AccuracyRate)
}

func TestTracker_CountersAreIndependent(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordRecognition()
	tracker.RecordRecognition()
	tracker.RecordRecognition()
	tracker.RecordCorrect()
	tracker.RecordCorrection()

	acc := tracker.GetAccuracy()
	assert.Equal(t, 3, acc.TotalRecognitions)
	assert.Equal(t, 1, acc.CorrectRecognitions)
	assert.Equal(t, 1, acc.UserCorrections)
	assert.InDelta(t, 1.0/3.0, acc.AccuracyRate, 1e-9)
}

func TestAddFeedback_HelpfulCountsAsCorrect(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordRecognition()

	tracker.AddFeedback(Feedback{Transcript: "hello", WasHelpful: true})

	acc := tracker.GetAccuracy()
	assert.Equal(t, 1, acc.CorrectRecognitions)
	assert.Equal(t, 0, acc.UserCorrections)
	assert.Equal(t, 1.0, acc.AccuracyRate)
}

func TestAddFeedback_CorrectionCountsAsCorrection(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordRecognition()

	tracker.AddFeedback(Feedback{
		Transcript:     "helo wurld",
		UserCorrection: "hello world",
		WasHelpful:     false,
	})

	acc := tracker.GetAccuracy()
	assert.Equal(t, 0, acc.CorrectRecognitions)
	assert.Equal(t, 1, acc.UserCorrections)
}

func TestGetAccuracy_RateClampedToOne(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordRecognition()

	// Two helpful verdicts against one recognition: raw counters exceed the
	// total but the derived rate stays within [0,1].
	tracker.AddFeedback(Feedback{Transcript: "a", WasHelpful: true})
	tracker.AddFeedback(Feedback{Transcript: "a", WasHelpful: true})

	acc := tracker.GetAccuracy()
	assert.Equal(t, 2, acc.CorrectRecognitions)
	assert.Equal(t, 1, acc.TotalRecognitions)
	assert.Equal(t, 1.0, acc.AccuracyRate)
}

func TestAddFeedback_HistoryIsBounded(t *testing.T) {
	tracker := NewTracker()

	for i := 0; i < 150; i++ {
		tracker.AddFeedback(Feedback{Transcript: fmt.Sprintf("t%d", i)})
	}

	history := tracker.History()
	assert.Len(t, history, 100)
	assert.Equal(t, "t50", history[0].Transcript, "oldest entries dropped first")
	assert.Equal(t, "t149", history[99].Transcript)
}

func TestReset_ClearsEverything(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordRecognition()
	tracker.AddFeedback(Feedback{Transcript: "x", WasHelpful: true, UserCorrection: "y"})

	tracker.Reset()

	acc := tracker.GetAccuracy()
	assert.Equal(t, 0, acc.TotalRecognitions)
	assert.Equal(t, 0, acc.CorrectRecognitions)
	assert.Equal(t, 0, acc.UserCorrections)
	assert.Equal(t, 1.0, acc.AccuracyRate)
	assert.Empty(t, tracker.History())
}
