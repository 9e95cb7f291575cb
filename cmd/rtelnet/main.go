// Command rtelnet is a thin interactive wrapper around the rtelnet
// session library: it connects, logs in, prints the banner, then reads
// commands from stdin and prints their quiescent output until the user
// quits or the connection drops.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	rtelnet "github.com/chronicle-d/relic-telnet"
	"github.com/chronicle-d/relic-telnet/internal/config"
	"github.com/chronicle-d/relic-telnet/internal/observability"
	"github.com/chronicle-d/relic-telnet/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "configs/rtelnet.yaml", "path to an rtelnet.yaml configuration file")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: rtelnet [-config path] <address> <port>")
		return 1
	}
	address := args[0]
	port, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid port %q: %v\n", args[1], err)
		return 1
	}

	cliCfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading configuration: %v\n", err)
		return 1
	}

	logger, err := observability.NewLogger(cliCfg.Logging.Level, cliCfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	stdin := bufio.NewReader(os.Stdin)
	username := promptLine(stdin, "Username: ")
	password := promptLine(stdin, "Password: ")

	cfg := rtelnet.NewConfig(address, username, password)
	cfg.Port = port
	cfg.Family = cliCfg.Defaults.Family
	cfg.IdleTimeout = cliCfg.Defaults.IdleTimeout
	cfg.TotalTimeout = cliCfg.Defaults.TotalTimeout
	cfg.LoginTimeout = cliCfg.Defaults.LoginTimeout
	cfg.ExpectTimeout = cliCfg.Defaults.ExpectTimeout
	cfg.NegotiationTimeout = cliCfg.Defaults.NegotiationTimeout
	cfg.Verbosity = cliCfg.Defaults.Verbosity
	cfg.Logger = logger

	session, err := rtelnet.NewSession(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuring session: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := session.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "connecting: %v\n%s", err, session.ErrorStack())
		return 1
	}
	defer session.Close()

	if banner, err := session.FlushBanner(ctx); err == nil && banner != "" {
		fmt.Print(banner)
	}

	lc := server.NewLifecycle(logger)
	lc.Add("command-loop", &server.FuncService{
		StartFn: func() error { return runCommandLoop(ctx, session, stdin) },
		StopFn:  func() { session.Close() },
	})

	if err := lc.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if session.HasBackgroundError() {
		fmt.Fprintf(os.Stderr, "session ended: %v\n", session.BackgroundError())
		return 1
	}
	return 0
}

func promptLine(r *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// runCommandLoop reads one command per line from stdin, executes it, and
// prints the quiescent output. It returns nil on EOF or an explicit
// exit/quit, handing control back to the lifecycle for shutdown.
func runCommandLoop(ctx context.Context, session *rtelnet.Session, stdin *bufio.Reader) error {
	for {
		fmt.Print("> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return nil
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		out, err := session.Execute(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "execute: %v\n", err)
			if session.HasBackgroundError() {
				return session.BackgroundError()
			}
			continue
		}
		fmt.Print(out)
	}
}
