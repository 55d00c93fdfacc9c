package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/jdelaney/gopoly/internal/config"
	"github.com/jdelaney/gopoly/internal/logstore"
	"github.com/jdelaney/gopoly/internal/session"
	"github.com/jdelaney/gopoly/internal/transport"
	"github.com/jdelaney/gopoly/internal/webapi"
	"github.com/jdelaney/gopoly/pkg/types"
)

func main() {
	var (
		envFile  string
		joinCode string
		name     string
		qrOut    string
	)
	flag.StringVar(&envFile, "env", ".env", "path to an optional .env file")
	flag.StringVar(&joinCode, "join", "", "room code to join; empty creates a new room")
	flag.StringVar(&name, "name", "player", "display name")
	flag.StringVar(&qrOut, "qr", "", "write a join-link QR code PNG to this path")
	flag.Parse()

	if err := run(envFile, joinCode, name, qrOut); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(envFile, joinCode, name, qrOut string) error {
	cfg, err := config.LoadDotenv(envFile)
	if err != nil {
		return err
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := webapi.New(cfg.APIBaseURL).Health(ctx); err != nil {
		log.Warnw("server health probe failed", "err", err)
	}

	opts := session.Options{
		Transport: transport.NewSession(transport.Options{
			URL:               cfg.ServerURL,
			ReconnectAttempts: cfg.ReconnectAttempts,
			ReconnectMinDelay: cfg.ReconnectMinDelay,
			ReconnectMaxDelay: cfg.ReconnectMaxDelay,
			Log:               log,
		}),
		CallTimeout:  cfg.CallTimeout,
		DiceFallback: cfg.DiceFallback,
		Log:          log,
	}
	if cfg.LogArchivePath != "" {
		store, err := logstore.Open(cfg.LogArchivePath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.LogSink = store
	}

	sess := session.New(opts)
	defer sess.Close()

	if err := sess.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	var res types.Result
	if joinCode == "" {
		res = sess.CreateRoom(ctx, name, types.RoomSettings{})
	} else {
		res = sess.JoinRoom(ctx, joinCode, name)
	}
	if !res.OK {
		return fmt.Errorf("enter room: %s", res.Reason)
	}

	st := sess.State()
	fmt.Printf("room %s (player %s)\n", st.Session.RoomCode, st.Session.PlayerID)

	if qrOut != "" {
		link := fmt.Sprintf("%s/join/%s", cfg.APIBaseURL, st.Session.RoomCode)
		if err := qrcode.WriteFile(link, qrcode.Medium, 256, qrOut); err != nil {
			log.Warnw("qr code write failed", "err", err)
		} else {
			fmt.Printf("join link QR written to %s\n", qrOut)
		}
	}

	updates, id := sess.Subscribe()
	defer sess.Unsubscribe(id)

	var lastPrinted string
	for {
		select {
		case <-ctx.Done():
			return nil
		case next, ok := <-updates:
			if !ok {
				return nil
			}
			// No animation in a terminal; settle rolls immediately.
			if next.UI.DiceRolling {
				sess.AnimationDone()
			}
			for _, entry := range newEntries(next.UI.EventLog, &lastPrinted) {
				fmt.Printf("[%s] %s\n", entry.Timestamp.Format(time.TimeOnly), entry.Message)
			}
			if next.UI.LastServerError != "" {
				fmt.Printf("server error: %s\n", next.UI.LastServerError)
			}
		}
	}
}

// newEntries returns entries not yet printed. The log is a bounded ring
// that drops old entries, so position indices go stale once it fills; the
// id of the last printed entry is the only stable cursor.
func newEntries(log []types.LogEntry, lastPrinted *string) []types.LogEntry {
	if len(log) == 0 {
		return nil
	}
	out := log
	if *lastPrinted != "" {
		for i := len(log) - 1; i >= 0; i-- {
			if log[i].ID == *lastPrinted {
				out = log[i+1:]
				break
			}
		}
	}
	if len(out) > 0 {
		*lastPrinted = out[len(out)-1].ID
	}
	return out
}
