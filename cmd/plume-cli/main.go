// Command plume-cli is an interactive Plume client.
//
// It connects to a broker, publishes and subscribes from a readline
// prompt, and optionally records the protocol exchange to a .plog file
// for later inspection.
//
// Usage:
//
//	plume-cli [flags]
//
// Flags:
//
//	-config string   Configuration file path (YAML)
//	-host string     Broker host (default "localhost")
//	-port int        Broker port (default 4222)
//	-name string     Client name sent in the handshake
//	-plog string     Protocol event log file (.plog)
//	-keepalive duration  Keep-alive ping interval (0 = disabled)
//
// Examples:
//
//	# Connect to a local broker and subscribe interactively
//	plume-cli -host localhost -port 4222
//
//	# Record the protocol exchange for debugging
//	plume-cli -plog session.plog
//
// Interactive Commands:
//
//	connect           - Connect to the broker
//	pub <subject> <payload> - Publish a message
//	sub <subject>     - Subscribe to a subject
//	unsub <sid>       - Unsubscribe
//	ping              - Send a ping
//	subs              - List active subscriptions
//	stats             - Show connection counters
//	discover          - Browse for brokers on the local network
//	reconnect         - Drop and re-establish the connection
//	quit              - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/plume-protocol/plume-go/pkg/client"
	plog "github.com/plume-protocol/plume-go/pkg/log"
)

var flags struct {
	ConfigFile string
	Host       string
	Port       int
	Name       string
	PlogFile   string
	KeepAlive  time.Duration
}

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&flags.Host, "host", "", "Broker host")
	flag.IntVar(&flags.Port, "port", 0, "Broker port")
	flag.StringVar(&flags.Name, "name", "", "Client name sent in the handshake")
	flag.StringVar(&flags.PlogFile, "plog", "", "Protocol event log file (.plog)")
	flag.DurationVar(&flags.KeepAlive, "keepalive", 0, "Keep-alive ping interval (0 = disabled)")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	fileCfg := &FileConfig{}
	if flags.ConfigFile != "" {
		loaded, err := LoadConfig(flags.ConfigFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		fileCfg = loaded
	}

	// Flags override the file.
	cfg := fileCfg.clientConfig()
	if flags.Host != "" {
		cfg.Host = flags.Host
	}
	if flags.Port != 0 {
		cfg.Port = flags.Port
	}
	if flags.Name != "" {
		cfg.Name = flags.Name
	}
	if cfg.Name == "" {
		cfg.Name = "plume-cli-" + uuid.NewString()[:8]
	}
	if flags.KeepAlive > 0 {
		cfg.KeepAlive = client.KeepAliveConfig{PingInterval: flags.KeepAlive}
	}

	plogFile := flags.PlogFile
	if plogFile == "" {
		plogFile = fileCfg.LogFile
	}
	if plogFile != "" {
		fileLogger, err := plog.NewFileLogger(plogFile)
		if err != nil {
			log.Fatalf("Failed to open protocol log: %v", err)
		}
		defer fileLogger.Close()
		cfg.ProtocolLogger = fileLogger
		log.Printf("Recording protocol events to %s", plogFile)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := NewSession(cfg)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	// Route log output through readline so prints don't mangle the prompt.
	log.SetOutput(session.Stdout())

	log.Printf("Plume CLI — broker %s", session.Address())
	go session.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}

	cancel()
	session.Close()

	fmt.Fprintln(os.Stderr, "Goodbye!")
}
