// Command client runs a headless interview session against a running
// server. Without audio hardware it relies on the typed-answer path: the
// interviewer's lines print to the terminal and answers are read from
// stdin. An empty line ends the interview early.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/insidejustjoin/justjoin-sub002/internal/media"
	"github.com/insidejustjoin/justjoin-sub002/internal/speech"
	"github.com/insidejustjoin/justjoin-sub002/internal/turn"
	"github.com/insidejustjoin/justjoin-sub002/pkg/logger"
	"github.com/insidejustjoin/justjoin-sub002/pkg/util"
)

// consoleSynth prints the interviewer's line instead of speaking it.
type consoleSynth struct{}

func (consoleSynth) Speak(ctx context.Context, text, language string) error {
	fmt.Printf("\n[interviewer] %s\n", text)
	return nil
}

// noRecognizer reports speech capture as unavailable so the machine
// drops to typed input.
type noRecognizer struct{}

func (noRecognizer) Recognize(ctx context.Context, language string) (string, error) {
	return "", speech.ErrUnavailable
}

// noDevice denies every acquisition; recording windows yield no segments.
type noDevice struct{}

func (noDevice) Acquire(kind media.Kind, c media.Constraints) (media.Stream, error) {
	return nil, fmt.Errorf("no capture device on this host")
}

func main() {
	if err := logger.Init(logger.LogConfig{Level: "warn"}); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	baseURL := util.GetEnvDefault("INTERVIEW_URL", "http://localhost:8080/api/interview")
	language := util.GetEnvDefault("INTERVIEW_LANGUAGE", "ja")

	api := turn.NewClient(baseURL, language)
	machine := turn.NewMachine(
		api,
		speech.NewPlayback(consoleSynth{}),
		speech.NewVoiceCapture(noRecognizer{}),
		media.NewPipeline(noDevice{}, nil),
		media.NewUploader(baseURL+"/upload-recording"),
	)

	ctx := context.Background()
	err := machine.Start(ctx, turn.StartRequest{
		Email:        util.GetEnv("INTERVIEW_EMAIL"),
		Name:         util.GetEnv("INTERVIEW_NAME"),
		Position:     util.GetEnv("INTERVIEW_POSITION"),
		Language:     language,
		ConsentGiven: true,
	})
	if err != nil {
		log.Fatalf("start interview: %v", err)
	}
	fmt.Printf("session %s started, type your answers below\n", machine.SessionID())

	scanner := bufio.NewScanner(os.Stdin)
	for machine.Phase() == turn.PhaseArmed {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		answer := scanner.Text()
		if answer == "" {
			if err := machine.EndInterview(ctx, "user_ended"); err != nil {
				log.Fatalf("end interview: %v", err)
			}
			fmt.Println("interview ended")
			return
		}
		if err := machine.SubmitTyped(ctx, answer); err != nil {
			log.Fatalf("submit answer: %v", err)
		}
	}

	if machine.Phase() == turn.PhaseComplete {
		fmt.Println("\ninterview complete, thank you")
	}
}
