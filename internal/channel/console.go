package channel

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

const consolePrompt = "> "

// ConsoleChannel is a local debug channel: stdin in, stdout out. Every line
// is treated as a direct message from a single fixed user.
type ConsoleChannel struct {
	mu      sync.Mutex
	handler func(InboundMessage)
	cancel  context.CancelFunc
	running bool
}

func NewConsoleChannel() *ConsoleChannel {
	return &ConsoleChannel{}
}

func (c *ConsoleChannel) Name() string { return "console" }

func (c *ConsoleChannel) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	go c.consume(ctx, lines)

	fmt.Print(consolePrompt)
	return nil
}

func (c *ConsoleChannel) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.running = false
	return nil
}

func (c *ConsoleChannel) Send(_ context.Context, msg OutboundMessage) error {
	fmt.Printf("\n[Lyla]: %s\n\n%s", msg.Text, consolePrompt)
	return nil
}

func (c *ConsoleChannel) OnMessage(handler func(InboundMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

func (c *ConsoleChannel) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *ConsoleChannel) consume(ctx context.Context, lines <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case text, ok := <-lines:
			if !ok {
				return
			}
			if text == "" {
				fmt.Print(consolePrompt)
				continue
			}

			c.mu.Lock()
			handler := c.handler
			c.mu.Unlock()

			if handler != nil {
				handler(InboundMessage{
					ChannelName: "console",
					SenderID:    "local",
					SenderName:  "User",
					ChatID:      "console",
					ChannelID:   "console",
					Text:        text,
					Direct:      true,
					Timestamp:   time.Now(),
				})
			}
		}
	}
}
