// Package turn drives one interview session's turn-taking: playback,
// recording, and submission in strict alternation.
package turn

import "fmt"

type Phase string

type Event string

const (
	PhaseLoading    Phase = "loading"
	PhasePlaying    Phase = "playing"
	PhaseArmed      Phase = "armed"
	PhaseRecording  Phase = "recording"
	PhaseSubmitting Phase = "submitting"
	PhaseComplete   Phase = "complete"
	PhaseError      Phase = "error"
)

const (
	EventSessionReady    Event = "session_ready"
	EventPlaybackDone    Event = "playback_done"
	EventBeginRecording  Event = "begin_recording"
	EventTranscriptReady Event = "transcript_ready"
	EventNoSpeech        Event = "no_speech"
	EventNextQuestion    Event = "next_question"
	EventCompleted       Event = "completed"
	EventFail            Event = "fail"
	EventEnd             Event = "end"
)

// Transition applies one event to the current phase. Playing, Recording
// and Submitting are pairwise exclusive by construction: the machine holds
// exactly one phase, and no event maps into two of them.
func Transition(current Phase, event Event) (Phase, error) {
	switch event {
	case EventFail:
		return PhaseError, nil
	case EventEnd:
		// Ending the interview is legal from every phase.
		return PhaseComplete, nil
	}

	switch current {
	case PhaseLoading:
		switch event {
		case EventSessionReady:
			return PhasePlaying, nil
		default:
			return current, invalidTransition(current, event)
		}
	case PhasePlaying:
		switch event {
		case EventPlaybackDone:
			return PhaseArmed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case PhaseArmed:
		switch event {
		case EventBeginRecording:
			return PhaseRecording, nil
		case EventTranscriptReady:
			// Typed-text fallback submits without a recording phase.
			return PhaseSubmitting, nil
		default:
			return current, invalidTransition(current, event)
		}
	case PhaseRecording:
		switch event {
		case EventTranscriptReady:
			return PhaseSubmitting, nil
		case EventNoSpeech:
			return PhaseArmed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case PhaseSubmitting:
		switch event {
		case EventNextQuestion:
			return PhasePlaying, nil
		case EventCompleted:
			return PhaseComplete, nil
		default:
			return current, invalidTransition(current, event)
		}
	case PhaseComplete, PhaseError:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown phase %q", current)
	}
}

func invalidTransition(phase Phase, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", phase, event)
}
