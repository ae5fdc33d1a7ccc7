// ABOUTME: Terminal client for the weft conversation service with streaming output
// ABOUTME: Readline-style loop; slash commands for undo, restart, navigation, and export

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/weftworks/weft/internal/auth"
	"github.com/weftworks/weft/internal/client"
	"github.com/weftworks/weft/internal/convo"
	"github.com/weftworks/weft/internal/export"
	"github.com/weftworks/weft/internal/notify"
	"github.com/weftworks/weft/internal/stream"
	"github.com/weftworks/weft/internal/toolcall"
	"github.com/weftworks/weft/internal/turns"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "Path to TOML config file")
	serverURL := flag.String("server", "", "Server URL (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nGoodbye!")
}

func run(ctx context.Context, cfg *Config) error {
	tokens := auth.EnvFileSource{EnvVar: "WEFT_TOKEN", App: "weft"}
	reportTokenStatus(tokens)

	svc := client.New(cfg.Server.URL, tokens, nil)
	c := convo.New(svc, convo.Config{}, nil)

	if cfg.Display.Mode == "last-turn" {
		c.SetDisplayMode(turns.ModeLastTurn)
	}
	c.SetCollapsible(cfg.Display.Collapsible)

	c.RegisterTool("local_time", func(ctx context.Context, call toolcall.Call) (string, error) {
		return time.Now().Format("3:04 PM on Monday, January 2"), nil
	})

	// Render notifications as they arrive; Send blocks for the whole
	// turn, so output and the prompt never interleave.
	ch, _ := c.Notifier().Subscribe(ctx)
	renderDone := make(chan struct{})
	go func() {
		defer close(renderDone)
		for n := range ch {
			render(n)
		}
	}()
	defer func() {
		c.Notifier().Close()
		<-renderDone
	}()

	fmt.Printf("weft-tui connected to %s\n", cfg.Server.URL)
	fmt.Println("Type a message and press Enter. /help for commands. Ctrl+C to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		printPrompt(c)

		input, err := readLine(ctx, scanner)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := handleCommand(ctx, c, input); quit {
				return nil
			}
			fmt.Println()
			continue
		}

		if err := c.Send(ctx, input); err != nil {
			color.Red("[error] %v", err)
		}
		fmt.Println()
	}
}

// readLine reads one line of input without blocking context cancellation.
func readLine(ctx context.Context, scanner *bufio.Scanner) (string, error) {
	inputCh := make(chan string, 1)
	errCh := make(chan error, 1)

	go func() {
		if scanner.Scan() {
			inputCh <- scanner.Text()
		} else if err := scanner.Err(); err != nil {
			errCh <- err
		} else {
			errCh <- io.EOF
		}
	}()

	select {
	case <-ctx.Done():
		return "", io.EOF
	case err := <-errCh:
		return "", err
	case input := <-inputCh:
		return input, nil
	}
}

func printPrompt(c *convo.Controller) {
	if c.DisplayMode() == turns.ModeLastTurn {
		nav := c.Nav()
		if nav.Total > 0 {
			fmt.Printf("[turn %d/%d]> ", nav.Current, nav.Total)
			return
		}
	}
	fmt.Print("> ")
}

// handleCommand dispatches a slash command; returns true to quit.
func handleCommand(ctx context.Context, c *convo.Controller, input string) bool {
	cmd, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "/quit", "/exit", "/q":
		return true

	case "/help":
		printHelp()

	case "/undo":
		if err := c.Undo(ctx); err != nil {
			color.Red("[error] %v", err)
		}

	case "/restart":
		c.Restart()

	case "/mode":
		switch args {
		case "full":
			c.SetDisplayMode(turns.ModeFull)
			fmt.Println("Showing full history")
		case "last":
			c.SetDisplayMode(turns.ModeLastTurn)
			fmt.Println("Showing one turn at a time")
		default:
			fmt.Println("Usage: /mode full|last")
		}

	case "/prev":
		c.GoToPreviousTurn()
		printVisible(c)

	case "/next":
		c.GoToNextTurn()
		printVisible(c)

	case "/goto":
		k, err := strconv.Atoi(args)
		if err != nil {
			fmt.Println("Usage: /goto <turn number>")
			break
		}
		c.GoToTurn(k)
		printVisible(c)

	case "/last":
		c.GoToLastTurn()
		printVisible(c)

	case "/collapse":
		c.ToggleCollapse()

	case "/export":
		if err := exportTranscript(c, args); err != nil {
			color.Red("[error] %v", err)
		}

	default:
		fmt.Printf("Unknown command %s. /help for commands.\n", cmd)
	}
	return false
}

// printVisible renders the currently visible turns.
func printVisible(c *convo.Controller) {
	visible := c.VisibleTurns()
	if len(visible) == 0 {
		fmt.Println("No conversation yet")
		return
	}
	for _, turn := range visible {
		if turn.User != nil {
			color.Blue("you: %s", turn.User.Content)
		}
		for _, a := range turn.Assistants {
			if a.Content != "" {
				fmt.Printf("assistant: %s\n", a.Content)
			}
		}
	}
}

// exportTranscript writes the conversation to a file. An .html extension
// selects HTML output; everything else gets markdown.
func exportTranscript(c *convo.Controller, path string) error {
	if path == "" {
		path = "transcript.md"
	}

	msgs := c.Messages()
	if len(msgs) == 0 {
		return errors.New("nothing to export")
	}

	var content string
	if strings.HasSuffix(path, ".html") {
		html, err := export.HTML("Conversation", msgs)
		if err != nil {
			return err
		}
		content = html
	} else {
		content = export.Markdown("Conversation", msgs)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	fmt.Printf("Exported %d messages to %s\n", len(msgs), path)
	return nil
}

// render prints one notification. Tokens stream inline; everything else
// gets its own line.
func render(n notify.Notification) {
	switch n.Kind {
	case notify.KindStreamStart:
		color.New(color.FgGreen).Print("assistant: ")

	case notify.KindToken:
		if raw, ok := n.Payload.(json.RawMessage); ok {
			var data stream.TokenData
			if json.Unmarshal(raw, &data) == nil {
				fmt.Print(data.ContentDelta)
			}
		}

	case notify.KindComplete, notify.KindCancelled:
		fmt.Println()

	case notify.KindToolCall:
		fmt.Println()
		color.Yellow("[running tools]")

	case notify.KindError:
		// Operation failures carry ErrorInfo; inline stream error events
		// carry their raw JSON payload.
		switch payload := n.Payload.(type) {
		case notify.ErrorInfo:
			color.Red("[error] %s", payload.Message)
		case json.RawMessage:
			var data stream.ErrorData
			if json.Unmarshal(payload, &data) == nil && data.Message != "" {
				color.Red("[error] %s", data.Message)
			}
		}

	case notify.KindAuthError:
		if payload, ok := n.Payload.(notify.AuthError); ok {
			color.Red("[auth] %s (%s)", payload.Message, payload.Code)
			if payload.RequiresAuth {
				color.Red("Set WEFT_TOKEN or write a token to ~/.config/weft/token")
			}
		}

	case notify.KindUndoComplete:
		color.Yellow("Last turn removed")

	case notify.KindUndoError:
		if info, ok := n.Payload.(notify.ErrorInfo); ok {
			color.Red("[undo] %s", info.Message)
		}

	case notify.KindRestart:
		color.Yellow("Conversation cleared")

	case notify.KindTurnsHidden:
		if payload, ok := n.Payload.(notify.TurnsHidden); ok {
			color.New(color.Faint).Printf("(%d of %d turns shown)\n",
				payload.TotalTurns-payload.HiddenTurns, payload.TotalTurns)
		}
	}
}

// reportTokenStatus prints auth state at startup, failing fast on a token
// that is already expired.
func reportTokenStatus(tokens auth.TokenSource) {
	token, err := tokens.Token()
	if err != nil {
		fmt.Println("Auth: none (set WEFT_TOKEN for authentication)")
		return
	}

	info, err := auth.Inspect(token)
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		color.Red("Auth: token expired at %s", info.ExpiresAt.Format(time.RFC3339))
	case err != nil:
		fmt.Println("Auth: token configured")
	case info.Subject != "":
		fmt.Printf("Auth: token configured (subject %s)\n", info.Subject)
	default:
		fmt.Println("Auth: token configured")
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /undo            Remove the last turn")
	fmt.Println("  /restart         Clear the conversation and start over")
	fmt.Println("  /mode full|last  Show full history or one turn at a time")
	fmt.Println("  /prev, /next     Navigate turns (last-turn mode)")
	fmt.Println("  /goto <n>        Jump to turn n")
	fmt.Println("  /last            Resume following the latest turn")
	fmt.Println("  /collapse        Toggle collapse")
	fmt.Println("  /export [path]   Save the transcript (.html for HTML)")
	fmt.Println("  /help            Show this help")
	fmt.Println("  /quit            Exit")
}
