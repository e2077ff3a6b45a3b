package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/plume-protocol/plume-go/pkg/client"
	"github.com/plume-protocol/plume-go/pkg/discovery"
	"github.com/plume-protocol/plume-go/pkg/version"
)

// Session is the interactive command loop around one client connection.
type Session struct {
	conn *client.Conn
	rl   *readline.Instance

	// Dispatch goroutine for the current connection.
	dispatchMu     sync.Mutex
	dispatchCancel context.CancelFunc
}

// NewSession creates the readline prompt and the (not yet connected)
// client.
func NewSession(cfg client.Config) (*Session, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "plume> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := &Session{rl: rl}

	cfg.OnStateChange = func(oldState, newState client.State) {
		fmt.Fprintf(rl.Stdout(), "[state] %s -> %s\n", oldState, newState)
	}
	cfg.OnError = func(err error) {
		fmt.Fprintf(rl.Stdout(), "[error] %v\n", err)
	}
	s.conn = client.New(cfg)

	return s, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
func (s *Session) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Address returns the broker endpoint string.
func (s *Session) Address() string {
	return s.conn.Address()
}

// Close tears down the connection and the prompt.
func (s *Session) Close() {
	s.stopDispatch()
	s.conn.Close()
	s.rl.Close()
}

// Run starts the interactive command loop.
func (s *Session) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "connect", "c":
			s.cmdConnect(ctx)

		case "disconnect":
			s.stopDispatch()
			s.conn.Close()

		case "reconnect":
			s.cmdReconnect(ctx)

		case "pub", "p":
			s.cmdPub(args)

		case "sub", "s":
			s.cmdSub(args)

		case "unsub", "u":
			s.cmdUnsub(args)

		case "ping":
			s.cmdPing()

		case "subs":
			s.cmdSubs()

		case "stats", "status":
			s.cmdStats()

		case "discover", "d":
			s.cmdDiscover(ctx)

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Plume Commands:
  Connection:
    connect                - Connect to the broker
    disconnect             - Close the connection
    reconnect              - Drop and re-establish the connection
    ping                   - Send a ping

  Messaging:
    pub <subject> <payload> - Publish a message
    sub <subject>           - Subscribe to a subject
    unsub <sid>             - Unsubscribe
    subs                    - List active subscriptions

  General:
    stats                  - Show connection counters
    discover               - Browse for brokers on the local network
    help                   - Show this help
    quit                   - Exit`)
}

// cmdConnect handles the connect command.
func (s *Session) cmdConnect(ctx context.Context) {
	if err := s.conn.Connect(ctx); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Connect failed: %v\n", err)
		return
	}
	s.startDispatch(ctx)
	fmt.Fprintf(s.rl.Stdout(), "Connected to %s\n", s.conn.Address())
}

// cmdReconnect handles the reconnect command.
func (s *Session) cmdReconnect(ctx context.Context) {
	s.stopDispatch()
	if err := s.conn.Reconnect(ctx); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Reconnect failed: %v\n", err)
		return
	}
	s.startDispatch(ctx)
	fmt.Fprintf(s.rl.Stdout(), "Reconnected (count: %d)\n", s.conn.ReconnectCount())
}

// cmdPub handles the pub command.
func (s *Session) cmdPub(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: pub <subject> <payload>")
		return
	}

	payload := strings.Join(args[1:], " ")
	if err := s.conn.Publish(args[0], []byte(payload)); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Publish failed: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "OK")
}

// cmdSub handles the sub command.
func (s *Session) cmdSub(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: sub <subject>")
		return
	}

	out := s.rl.Stdout()
	sid, err := s.conn.Subscribe(args[0], func(msg client.Msg) {
		fmt.Fprintf(out, "[msg] %s (sid %s): %s\n", msg.Subject, msg.SID, msg.Data)
	})
	if err != nil {
		fmt.Fprintf(out, "Subscribe failed: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Subscribed to %q (sid %s)\n", args[0], sid)
}

// cmdUnsub handles the unsub command.
func (s *Session) cmdUnsub(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: unsub <sid>")
		return
	}

	if err := s.conn.Unsubscribe(args[0]); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Unsubscribe failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Unsubscribed sid %s\n", args[0])
}

// cmdPing handles the ping command.
func (s *Session) cmdPing() {
	if err := s.conn.Ping(); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Ping failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Ping sent (total: %d)\n", s.conn.PingCount())
}

// cmdSubs handles the subs command.
func (s *Session) cmdSubs() {
	ids := s.conn.SubscriptionIDs()
	if len(ids) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "No active subscriptions")
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Active subscriptions (%d): %s\n", len(ids), strings.Join(ids, ", "))
}

// cmdStats handles the stats command.
func (s *Session) cmdStats() {
	stats := s.conn.Stats()
	out := s.rl.Stdout()
	fmt.Fprintln(out, "\nConnection Status")
	fmt.Fprintln(out, "-------------------------------------------")
	fmt.Fprintf(out, "  Broker:        %s\n", s.conn.Address())
	fmt.Fprintf(out, "  Protocol:      %s\n", version.Current)
	fmt.Fprintf(out, "  State:         %s\n", s.conn.State())
	fmt.Fprintf(out, "  Pings:         %d\n", stats.Pings)
	fmt.Fprintf(out, "  Publishes:     %d\n", stats.Publishes)
	fmt.Fprintf(out, "  Reconnects:    %d\n", stats.Reconnects)
	fmt.Fprintf(out, "  Msgs received: %d\n", stats.MsgsReceived)
	fmt.Fprintf(out, "  Subscriptions: %d\n", stats.Subscriptions)
	fmt.Fprintln(out)
}

// cmdDiscover handles the discover command.
func (s *Session) cmdDiscover(ctx context.Context) {
	out := s.rl.Stdout()
	fmt.Fprintln(out, "Browsing for brokers (5s)...")

	browseCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	browser := discovery.NewBrowser(discovery.DefaultBrowserConfig())
	results, err := browser.Browse(browseCtx)
	if err != nil {
		fmt.Fprintf(out, "Discovery error: %v\n", err)
		return
	}

	found := 0
	for svc := range results {
		found++
		fmt.Fprintf(out, "  %d. %s at %s (version %s)\n", found, svc.InstanceName, svc.Addr(), svc.Version)
	}
	if found == 0 {
		fmt.Fprintln(out, "No brokers found")
	}
}

// startDispatch runs the dispatch loop for the current connection in
// the background, printing messages as they arrive.
func (s *Session) startDispatch(ctx context.Context) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	if s.dispatchCancel != nil {
		s.dispatchCancel()
	}

	dispatchCtx, cancel := context.WithCancel(ctx)
	s.dispatchCancel = cancel

	go func() {
		err := s.conn.Wait(dispatchCtx, 0)
		if err != nil && dispatchCtx.Err() == nil {
			fmt.Fprintf(s.rl.Stdout(), "[dispatch] stopped: %v\n", err)
		}
	}()
}

// stopDispatch cancels the background dispatch loop if one is running.
func (s *Session) stopDispatch() {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	if s.dispatchCancel != nil {
		s.dispatchCancel()
		s.dispatchCancel = nil
	}
}
