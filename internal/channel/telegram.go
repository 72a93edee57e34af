package channel

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"
)

// TelegramChannel integrates with the Telegram Bot API.
type TelegramChannel struct {
	mu            sync.Mutex
	token         string
	allowedIDs    map[int64]bool
	bot           *tele.Bot
	handler       func(InboundMessage)
	memberHandler func(MemberEvent)
	running       bool
}

// TelegramConfig holds Telegram-specific configuration.
type TelegramConfig struct {
	Token      string
	AllowedIDs []int64
}

// NewTelegramChannel creates a new Telegram channel.
func NewTelegramChannel(cfg TelegramConfig) *TelegramChannel {
	allowed := make(map[int64]bool, len(cfg.AllowedIDs))
	for _, id := range cfg.AllowedIDs {
		allowed[id] = true
	}
	return &TelegramChannel{
		token:      cfg.Token,
		allowedIDs: allowed,
	}
}

func (t *TelegramChannel) Name() string { return "telegram" }

func (t *TelegramChannel) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return nil
	}

	pref := tele.Settings{
		Token:  t.token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	bot, err := tele.NewBot(pref)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}

	bot.Handle(tele.OnText, func(c tele.Context) error {
		t.dispatch(c, nil, c.Text())
		return nil
	})

	bot.Handle(tele.OnPhoto, func(c tele.Context) error {
		photo := c.Message().Photo
		if photo == nil {
			return nil
		}
		data, err := t.download(&photo.File)
		if err != nil {
			log.Printf("[telegram] photo download failed: %v", err)
			return c.Send("Could not download the image.")
		}
		t.dispatch(c, data, c.Message().Caption)
		return nil
	})

	bot.Handle(tele.OnUserJoined, func(c tele.Context) error {
		t.mu.Lock()
		handler := t.memberHandler
		t.mu.Unlock()

		if handler != nil && c.Message().UserJoined != nil {
			chatID := strconv.FormatInt(c.Chat().ID, 10)
			handler(MemberEvent{
				CommunityID: chatID,
				ChatID:      chatID,
				UserName:    c.Message().UserJoined.FirstName,
				Joined:      true,
			})
		}
		return nil
	})

	t.bot = bot
	t.running = true

	go func() {
		bot.Start()
	}()

	// Stop bot when context is cancelled
	go func() {
		<-ctx.Done()
		bot.Stop()
	}()

	return nil
}

// dispatch converts a Telegram update to an InboundMessage and hands it to
// the registered handler.
func (t *TelegramChannel) dispatch(c tele.Context, image []byte, text string) {
	sender := c.Sender()

	// Authorization check
	if len(t.allowedIDs) > 0 && !t.allowedIDs[sender.ID] {
		log.Printf("[telegram] unauthorized user: %d (%s)", sender.ID, sender.Username)
		return // silently ignore
	}

	t.mu.Lock()
	handler := t.handler
	bot := t.bot
	t.mu.Unlock()

	if handler == nil {
		return
	}

	chat := c.Chat()
	chatID := strconv.FormatInt(chat.ID, 10)
	direct := chat.Type == tele.ChatPrivate

	communityID := ""
	if !direct {
		communityID = chatID
	}

	mentioned := false
	if bot != nil && bot.Me != nil && bot.Me.Username != "" {
		mentioned = strings.Contains(text, "@"+bot.Me.Username)
	}

	handler(InboundMessage{
		ChannelName: "telegram",
		SenderID:    strconv.FormatInt(sender.ID, 10),
		SenderName:  strings.TrimSpace(sender.FirstName + " " + sender.LastName),
		ChatID:      chatID,
		ChannelID:   chatID,
		CommunityID: communityID,
		Text:        text,
		Image:       image,
		Mentioned:   mentioned,
		Direct:      direct,
		Timestamp:   time.Now(),
	})
}

func (t *TelegramChannel) download(file *tele.File) ([]byte, error) {
	t.mu.Lock()
	bot := t.bot
	t.mu.Unlock()

	if bot == nil {
		return nil, fmt.Errorf("telegram bot not started")
	}

	rc, err := bot.File(file)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (t *TelegramChannel) Stop(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bot != nil {
		t.bot.Stop()
	}
	t.running = false
	return nil
}

// Send delivers one message. Chunking happens upstream; a message handed to
// Send is already within the platform limit.
func (t *TelegramChannel) Send(_ context.Context, msg OutboundMessage) error {
	t.mu.Lock()
	bot := t.bot
	t.mu.Unlock()

	if bot == nil {
		return fmt.Errorf("telegram bot not started")
	}

	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	if _, err := bot.Send(&tele.Chat{ID: chatID}, msg.Text); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (t *TelegramChannel) OnMessage(handler func(InboundMessage)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = handler
}

// OnMemberJoin registers a handler for users joining a group chat.
func (t *TelegramChannel) OnMemberJoin(handler func(MemberEvent)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.memberHandler = handler
}

func (t *TelegramChannel) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}
