package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/coderace-dev/coderace/internal/log"
	"github.com/coderace-dev/coderace/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		serverURL string
		baseURL   string
		roomID    string
		name      string
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:           "racer",
		Short:         "Terminal client for coderace: join a room and race from your shell",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--name is required")
			}
			if roomID == "" {
				roomID = uuid.NewString()
			}

			fmt.Printf("room: %s\n", roomID)
			fmt.Printf("share this link with your opponent: %s/race/%s\n\n", strings.TrimRight(baseURL, "/"), roomID)

			logger := log.New(logLevel)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			transport := session.NewWSTransport(logger)
			sess := session.New(roomID, name, serverURL, transport, nil, logger)
			defer sess.Close()

			go renderLoop(sess)
			go inputLoop(ctx, sess)

			if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "ws://localhost:9000/ws", "race server WebSocket URL")
	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:3000", "base URL for the shareable link")
	cmd.Flags().StringVar(&roomID, "room", "", "room id to join (empty mints a new room)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	return cmd
}

// renderLoop prints session snapshots as they change. It deliberately
// avoids redrawing everything: only transitions and fresh facts print.
func renderLoop(sess *session.Session) {
	var (
		lastPhase     = session.PhaseConnecting
		lastCountdown int
		lastFault     string
		selfResults   *session.Result
		oppResults    *session.Result
	)

	for snap := range sess.Snapshots() {
		if snap.Fault != "" && snap.Fault != lastFault {
			lastFault = snap.Fault
			fmt.Printf("!! server error: %s\n", snap.Fault)
		}

		if snap.Phase == session.PhaseCountdown && snap.CountdownValue != nil && *snap.CountdownValue != lastCountdown {
			lastCountdown = *snap.CountdownValue
			fmt.Printf("starting in: %d\n", lastCountdown)
		}

		if snap.Phase != lastPhase {
			renderPhase(snap)
			lastPhase = snap.Phase
		}

		if r := snap.Self.LastResult; r != nil && r != selfResults {
			selfResults = r
			printResults(snap.Self.Name, r)
		}
		if r := snap.Opponent.LastResult; r != nil && r != oppResults {
			oppResults = r
			printResults(snap.Opponent.Name, r)
		}
	}
}

func renderPhase(snap session.RaceSession) {
	switch snap.Phase {
	case session.PhaseWaitingForOpponent:
		fmt.Println("waiting for an opponent...")
	case session.PhaseInProgress:
		fmt.Printf("\n=== %s ===\n%s\n\n", snap.Problem.Title, snap.Problem.Description)
		fmt.Printf("starting code:\n%s\n\n", snap.Problem.StartingCode)
		if snap.RemainingTime != nil {
			fmt.Printf("time limit: %ds\n", *snap.RemainingTime)
		}
		fmt.Println("type code line by line; ':submit' submits, ':code' shows your buffer")
	case session.PhaseFinished:
		switch {
		case snap.Outcome == nil:
			fmt.Println("race over")
		case snap.Outcome.TimedOut:
			fmt.Println("time's up! no one solved the problem.")
		default:
			fmt.Printf("%s won!\n", snap.Outcome.Winner)
		}
	}
}

func printResults(name string, r *session.Result) {
	fmt.Printf("--- %s's results (success=%v) ---\n", name, r.Success)
	for _, line := range r.Results {
		fmt.Println(line)
	}
}

// inputLoop turns stdin lines into edit intents. Every entered line
// re-sends the whole buffer, matching the send-per-change policy.
func inputLoop(ctx context.Context, sess *session.Session) {
	var buf []string

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Text()

		switch line {
		case ":submit":
			sess.Submit()
		case ":code":
			fmt.Println(strings.Join(buf, "\n"))
		case ":clear":
			buf = nil
			sess.TypeCode("")
		default:
			buf = append(buf, line)
			sess.TypeCode(strings.Join(buf, "\n"))
		}
	}
}
