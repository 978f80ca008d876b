package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/theIndrajeet/AskSarkar/internal/protocol"
)

var (
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	questionStyle  = lipgloss.NewStyle().Italic(true)
	thinkingStyle  = lipgloss.NewStyle().Faint(true)
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	documentStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Client is a WebSocket chat client.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	done      chan struct{}
}

// NewClient creates a new client and connects to the server.
func NewClient(addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		conn: conn,
		done: make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// SendHello sends a hello message and waits for hello_ack.
func (c *Client) SendHello(apiKey, sessionID string) (*protocol.HelloAckMessage, error) {
	msg := protocol.HelloMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeHello,
			Ts:        time.Now().UnixMilli(),
			SessionID: sessionID,
		},
		APIKey: apiKey,
	}

	if err := c.conn.WriteJSON(msg); err != nil {
		return nil, fmt.Errorf("write hello: %w", err)
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read hello_ack: %w", err)
	}

	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("unmarshal hello_ack: %w", err)
	}

	if base.Type == protocol.TypeError {
		var errMsg protocol.ErrorMessage
		json.Unmarshal(data, &errMsg)
		return nil, fmt.Errorf("hello failed: %s - %s", errMsg.Code, errMsg.Message)
	}

	if base.Type != protocol.TypeHelloAck {
		return nil, fmt.Errorf("expected hello_ack, got: %s", base.Type)
	}

	var ack protocol.HelloAckMessage
	if err := json.Unmarshal(data, &ack); err != nil {
		return nil, fmt.Errorf("unmarshal hello_ack: %w", err)
	}
	c.sessionID = ack.SessionID
	return &ack, nil
}

// SendMessage sends one user turn.
func (c *Client) SendMessage(content string) error {
	return c.conn.WriteJSON(protocol.UserMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeUserMessage,
			Ts:        time.Now().UnixMilli(),
			SessionID: c.sessionID,
			RequestID: fmt.Sprintf("req_%d", time.Now().UnixNano()),
		},
		Content: content,
	})
}

// SendComplete asks the server to finalize the application.
func (c *Client) SendComplete() error {
	return c.conn.WriteJSON(protocol.CompleteMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeComplete,
			Ts:        time.Now().UnixMilli(),
			SessionID: c.sessionID,
		},
	})
}

// ReadMessages reads and prints server messages until the connection closes.
func (c *Client) ReadMessages(w io.Writer) {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Warn("Read failed", "err", err)
				}
				return
			}
			if out := formatServerMessage(data); out != "" {
				fmt.Fprintln(w, out)
			}
		}
	}
}

// formatServerMessage renders a server message for the terminal.
func formatServerMessage(data []byte) string {
	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return ""
	}

	switch base.Type {
	case protocol.TypeState:
		var msg protocol.StateMessage
		json.Unmarshal(data, &msg)
		if msg.State == protocol.StateThinking {
			return thinkingStyle.Render("...")
		}
		return ""

	case protocol.TypeAssistantReply:
		var msg protocol.AssistantReplyMessage
		json.Unmarshal(data, &msg)
		var b strings.Builder
		fmt.Fprintf(&b, "\n%s %s", assistantStyle.Render(fmt.Sprintf("assistant [%s]:", msg.Stage)), msg.Reply.Message)
		if msg.Reply.NextQuestion != "" {
			fmt.Fprintf(&b, "\n  %s", questionStyle.Render(msg.Reply.NextQuestion))
		}
		if msg.Document != "" {
			fmt.Fprintf(&b, "\n\n%s\n(type /done to finalize)", documentStyle.Render(msg.Document))
		}
		if msg.Usage != nil {
			fmt.Fprintf(&b, "\n%s", noticeStyle.Render(fmt.Sprintf("[%s] %s", msg.Usage.Type, msg.Usage.Message)))
		}
		return b.String()

	case protocol.TypeRTIReady:
		var msg protocol.RTIReadyMessage
		json.Unmarshal(data, &msg)
		return "\n" + documentStyle.Render(msg.Document)

	case protocol.TypeError:
		var msg protocol.ErrorMessage
		json.Unmarshal(data, &msg)
		out := "\n" + errorStyle.Render(fmt.Sprintf("error (%s):", msg.Code)) + " " + msg.Message
		if msg.Usage != nil && msg.Usage.ShowFallback {
			out += "\n" + noticeStyle.Render(msg.Usage.Message)
		}
		return out
	}

	return ""
}

func runChat(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connecting to %s...\n", addrFlag)

	client, err := NewClient(addrFlag)
	if err != nil {
		return err
	}
	defer client.Close()

	ack, err := client.SendHello(apiKeyFlag, sessionFlag)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Session established: %s\n\n%s\n", ack.SessionID, ack.Greeting)
	fmt.Fprintln(out, "\nCommands: /done to finalize, /quit to exit")

	go client.ReadMessages(out)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		fmt.Fprint(out, "> ")
		select {
		case <-interrupt:
			fmt.Fprintln(out, "\nInterrupted")
			return nil
		default:
			if !scanner.Scan() {
				return nil
			}

			input := strings.TrimSpace(scanner.Text())
			switch input {
			case "":
				continue
			case "/quit":
				fmt.Fprintln(out, "Bye!")
				return nil
			case "/done":
				if err := client.SendComplete(); err != nil {
					log.Warn("Send failed", "err", err)
				}
				continue
			}

			if err := client.SendMessage(input); err != nil {
				log.Warn("Send failed", "err", err)
			}
		}
	}
}
