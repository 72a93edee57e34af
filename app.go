package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/channel"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/chunk"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/config"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/eventbus"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/history"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/llm"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/relay"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/routing"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/security"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/web"
)

const (
	botName = "Lyla"

	keyringPlaceholder      = "[keyring]"
	secretNameLLMKey        = "llm_api_key"
	secretNameFallbackKey   = "fallback_llm_api_key"
	secretNameTelegramToken = "telegram_token"
)

// App holds the application state and wires the pieces together.
type App struct {
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex // protects cfg and rly
	cfg       *config.Config
	cfgLoader *config.Loader
	bus       *eventbus.Bus
	rly       *relay.Relay
	sender    *chunk.Sender
	chanMgr   *channel.Manager
	store     *history.SQLiteStore // nil when the durable tier is unavailable
	routes    *routing.Table
	comms     *routing.CommunityStore
	keyStore  *security.KeyStore
	logsMu    sync.Mutex // protects logs
	logs      []web.LogLine
}

// NewApp creates a new App.
func NewApp() *App {
	return &App{
		bus: eventbus.New(),
	}
}

// Startup initializes config, storage, the generation backend, the relay,
// routing state, and platform channels. Returns an error only for failures
// the bot cannot run without; degraded subsystems log and continue.
func (a *App) Startup(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.ctx = ctx
	a.cancel = cancel

	// Load config
	loader, err := config.NewLoader()
	if err != nil {
		return fmt.Errorf("create config loader: %w", err)
	}
	a.cfgLoader = loader

	cfg, err := loader.Load()
	if err != nil {
		log.Printf("[app] failed to load config: %v, using defaults", err)
		cfg = config.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	// Initialize secure key store
	ks, err := security.NewKeyStore(nil)
	if err != nil {
		log.Printf("[app] warning: failed to create key store: %v (secrets stay in config file)", err)
	}
	a.keyStore = ks

	// Resolve secrets from Keychain (or migrate plaintext into it)
	a.resolveSecrets()

	// Durable history (SQLite). Startup continues without it; the relay
	// then runs on its in-memory tier.
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".lyla")

	store, err := history.NewSQLiteStore(filepath.Join(dataDir, "history.db"))
	if err != nil {
		log.Printf("[app] durable history unavailable: %v", err)
	} else {
		a.store = store
	}

	// Routing table and per-community config
	routes, err := routing.OpenTable(filepath.Join(dataDir, "chatbot_channels.json"))
	if err != nil {
		return fmt.Errorf("open routing table: %w", err)
	}
	a.routes = routes

	comms, err := routing.OpenCommunityStore(filepath.Join(dataDir, "communities.json"))
	if err != nil {
		return fmt.Errorf("open community configs: %w", err)
	}
	a.comms = comms

	// Generation backend, with optional fallback chain
	gen, err := llm.NewGenerator(cfg.LLM, cfg.Bot)
	if err != nil {
		return fmt.Errorf("create generator: %w", err)
	}
	if cfg.FallbackLLM != nil && cfg.FallbackLLM.APIKey != "" {
		fallback, err := llm.NewGenerator(*cfg.FallbackLLM, cfg.Bot)
		if err != nil {
			log.Printf("[app] fallback generator unavailable: %v", err)
		} else {
			gen = llm.NewFallbackGenerator(gen, fallback)
		}
	}

	// Relay and the outbound sender
	var durable history.Store
	var stats history.Stats
	if a.store != nil {
		durable = a.store
		stats = a.store
	}
	rly, err := relay.New(cfg.Bot, gen, durable, stats, a.bus)
	if err != nil {
		return err
	}
	a.rly = rly

	sender, err := chunk.NewSender(cfg.Bot.ChunkSize)
	if err != nil {
		return err
	}
	a.sender = sender

	// Platform channels
	a.chanMgr = channel.NewManager()

	if cfg.Channels.Telegram != nil && cfg.Channels.Telegram.Token != "" {
		tg := channel.NewTelegramChannel(channel.TelegramConfig{
			Token:      cfg.Channels.Telegram.Token,
			AllowedIDs: cfg.Channels.Telegram.AllowedIDs,
		})
		tg.OnMessage(func(msg channel.InboundMessage) {
			a.handleInbound(tg, msg)
		})
		tg.OnMemberJoin(func(ev channel.MemberEvent) {
			a.handleMemberJoin(tg, ev)
		})
		a.chanMgr.Register(tg)
	}

	if cfg.Channels.Console {
		console := channel.NewConsoleChannel()
		console.OnMessage(func(msg channel.InboundMessage) {
			a.handleInbound(console, msg)
		})
		a.chanMgr.Register(console)
	}

	// Feed the log ring from the event bus
	a.bus.Subscribe(eventbus.TopicError, func(e eventbus.Event) {
		a.addLog("error", e.Payload)
	})
	a.bus.Subscribe(eventbus.TopicStatusChange, func(e eventbus.Event) {
		a.addLog("info", e.Payload)
	})

	if err := a.chanMgr.StartAll(ctx); err != nil {
		return err
	}

	a.bus.Publish(eventbus.TopicStatusChange, "bot started")
	log.Printf("[app] %s is running", botName)
	return nil
}

// Shutdown stops channels and closes storage.
func (a *App) Shutdown(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	if a.chanMgr != nil {
		a.chanMgr.StopAll(ctx)
	}
	if a.store != nil {
		a.store.Close()
	}
}

// BotName implements web.StatusSource.
func (a *App) BotName() string { return botName }

// Ready implements web.StatusSource.
func (a *App) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rly != nil
}

// Stats returns the statistics backend, nil when storage is unavailable.
func (a *App) Stats() history.Stats {
	if a.store == nil {
		return nil
	}
	return a.store
}

// handleInbound decides whether a message is for the bot, dispatches
// commands, and otherwise runs it through the relay and delivers the reply.
func (a *App) handleInbound(ch channel.Channel, msg channel.InboundMessage) {
	a.bus.Publish(eventbus.TopicInboundMessage, msg)

	prefix := routing.DefaultPrefix
	if msg.CommunityID != "" {
		prefix = a.comms.Get(msg.CommunityID).Prefix
	}

	trimmed := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(trimmed, prefix) && len(trimmed) > len(prefix) {
		a.handleCommand(ch, msg, strings.TrimPrefix(trimmed, prefix))
		return
	}

	// Group messages reach the relay only when the bot is addressed or the
	// community has routed this channel to it. Direct chats always do.
	if !msg.Direct && !msg.Mentioned && !a.routes.IsRouted(msg.CommunityID, msg.ChannelID) {
		return
	}

	segments := a.rly.Handle(a.ctx, relay.Request{
		UserID:      msg.SenderID,
		Text:        msg.Text,
		Image:       msg.Image,
		CommunityID: msg.CommunityID,
		ChannelID:   msg.ChannelID,
	})
	a.deliver(ch, msg.ChatID, segments)
}

func (a *App) handleCommand(ch channel.Channel, msg channel.InboundMessage, cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	var reply string
	switch name {
	case "reset":
		reply = a.rly.Reset(a.ctx, msg.SenderID)

	case "info":
		reply = a.infoReply()

	case "stats":
		reply = a.statsReply(msg)

	case "set_chatbot":
		if msg.CommunityID == "" {
			reply = "This command only works in a group."
			break
		}
		result, err := a.routes.Toggle(msg.CommunityID, msg.ChannelID)
		if err != nil {
			log.Printf("[app] routing toggle failed: %v", err)
			reply = "Could not update the chat channel."
			break
		}
		reply = fmt.Sprintf("Chat mode %s for this channel.", result)

	case "set_welcome":
		if msg.CommunityID == "" {
			reply = "This command only works in a group."
			break
		}
		err := a.comms.Update(msg.CommunityID, func(c *routing.CommunityConfig) {
			c.WelcomeChannel = msg.ChannelID
		})
		if err != nil {
			log.Printf("[app] welcome channel update failed: %v", err)
			reply = "Could not update the welcome channel."
			break
		}
		reply = "Welcome messages will be posted in this channel."

	case "set_prefix":
		if msg.CommunityID == "" {
			reply = "This command only works in a group."
			break
		}
		if len(args) != 1 {
			reply = "Usage: set_prefix <prefix>"
			break
		}
		err := a.comms.Update(msg.CommunityID, func(c *routing.CommunityConfig) {
			c.Prefix = args[0]
		})
		if err != nil {
			log.Printf("[app] prefix update failed: %v", err)
			reply = "Could not update the prefix."
			break
		}
		reply = fmt.Sprintf("Command prefix set to %s", args[0])

	default:
		// Unknown commands are ignored; other bots may own them.
		return
	}

	a.deliver(ch, msg.ChatID, a.splitReply(reply))
}

func (a *App) infoReply() string {
	a.mu.RLock()
	cfg := a.cfg
	a.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", botName)
	fmt.Fprintf(&b, "Model: %s (%s)\n", cfg.LLM.Model, cfg.LLM.Provider)
	fmt.Fprintf(&b, "History window: %d messages\n", cfg.Bot.MaxHistory)
	for name, running := range a.chanMgr.List() {
		state := "stopped"
		if running {
			state = "running"
		}
		fmt.Fprintf(&b, "Channel %s: %s\n", name, state)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) statsReply(msg channel.InboundMessage) string {
	if a.store == nil {
		return "Statistics are unavailable right now."
	}

	user, err := a.store.User(a.ctx, msg.SenderID)
	if err != nil {
		log.Printf("[app] user stats failed: %v", err)
		return "Statistics are unavailable right now."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your messages: %d\n", user.MessageCount)

	global, err := a.store.Global(a.ctx)
	if err == nil {
		fmt.Fprintf(&b, "Total conversations: %d\n", global.Conversations)
		fmt.Fprintf(&b, "Users served: %d\n", global.Users)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) handleMemberJoin(ch channel.Channel, ev channel.MemberEvent) {
	a.bus.Publish(eventbus.TopicMemberJoined, ev)

	if !ev.Joined {
		return
	}
	cfg := a.comms.Get(ev.CommunityID)
	if cfg.WelcomeChannel == "" {
		return
	}

	greeting := fmt.Sprintf("Welcome, %s!", ev.UserName)
	if err := ch.Send(a.ctx, channel.OutboundMessage{ChatID: cfg.WelcomeChannel, Text: greeting}); err != nil {
		log.Printf("[app] welcome message failed: %v", err)
	}
}

// deliver sends segments through the channel, in order, best-effort.
func (a *App) deliver(ch channel.Channel, chatID string, segments []chunk.Segment) {
	if len(segments) == 0 {
		return
	}
	sink := channelSink{ch: ch, chatID: chatID}
	if err := a.sender.DeliverSegments(a.ctx, sink, segments); err != nil {
		log.Printf("[app] delivery to %s incomplete: %v", chatID, err)
		a.bus.Publish(eventbus.TopicError, err)
	}
	a.bus.Publish(eventbus.TopicOutboundMessage, chatID)
}

// splitReply chunks command replies the same way relay replies are chunked.
func (a *App) splitReply(text string) []chunk.Segment {
	segments, err := chunk.Split(text, a.cfg.Bot.ChunkSize)
	if err != nil {
		return []chunk.Segment{{Index: 0, Text: text}}
	}
	return segments
}

// channelSink adapts a platform channel to the chunk.Sink interface.
type channelSink struct {
	ch     channel.Channel
	chatID string
}

func (s channelSink) Send(ctx context.Context, text string) error {
	return s.ch.Send(ctx, channel.OutboundMessage{ChatID: s.chatID, Text: text})
}

// resolveSecrets loads secrets from Keychain into in-memory config.
// On first run, migrates plaintext secrets from config.json to Keychain.
func (a *App) resolveSecrets() {
	if a.keyStore == nil {
		return
	}

	migrated := false

	resolve := func(field *string, name string) {
		switch {
		case *field == keyringPlaceholder:
			if val, err := a.keyStore.Get(name); err == nil {
				*field = val
			} else {
				log.Printf("[app] warning: failed to read %s from keyring: %v", name, err)
			}
		case *field != "":
			if err := a.keyStore.Set(name, *field); err == nil {
				migrated = true
				log.Printf("[app] migrated %s to secure storage", name)
			}
		}
	}

	resolve(&a.cfg.LLM.APIKey, secretNameLLMKey)
	if a.cfg.FallbackLLM != nil {
		resolve(&a.cfg.FallbackLLM.APIKey, secretNameFallbackKey)
	}
	if a.cfg.Channels.Telegram != nil {
		resolve(&a.cfg.Channels.Telegram.Token, secretNameTelegramToken)
	}

	// Rewrite config.json with placeholders instead of real keys
	if migrated {
		if err := a.saveConfig(); err != nil {
			log.Printf("[app] warning: failed to save config after secret migration: %v", err)
		}
	}
}

// saveConfig writes config to disk with secrets replaced by [keyring]
// placeholders. In-memory config keeps the real keys.
func (a *App) saveConfig() error {
	cfgForDisk := *a.cfg
	if cfgForDisk.LLM.APIKey != "" {
		cfgForDisk.LLM.APIKey = keyringPlaceholder
	}
	if cfgForDisk.FallbackLLM != nil && cfgForDisk.FallbackLLM.APIKey != "" {
		fbCopy := *cfgForDisk.FallbackLLM
		fbCopy.APIKey = keyringPlaceholder
		cfgForDisk.FallbackLLM = &fbCopy
	}
	if cfgForDisk.Channels.Telegram != nil && cfgForDisk.Channels.Telegram.Token != "" {
		tgCopy := *cfgForDisk.Channels.Telegram
		tgCopy.Token = keyringPlaceholder
		cfgForDisk.Channels.Telegram = &tgCopy
	}
	return a.cfgLoader.Save(&cfgForDisk)
}

func (a *App) addLog(level string, payload any) {
	entry := web.LogLine{
		Level: level,
		Time:  time.Now().UTC().Format(time.RFC3339),
	}
	switch v := payload.(type) {
	case string:
		entry.Message = v
	case error:
		entry.Message = v.Error()
	default:
		entry.Message = fmt.Sprint(v)
	}
	a.logsMu.Lock()
	a.logs = append(a.logs, entry)
	if len(a.logs) > 1000 {
		a.logs = a.logs[len(a.logs)-500:]
	}
	a.logsMu.Unlock()
}

// RecentLogs implements web.LogSource: up to limit lines, newest last.
func (a *App) RecentLogs(limit int) []web.LogLine {
	a.logsMu.Lock()
	defer a.logsMu.Unlock()

	start := 0
	if limit > 0 && limit < len(a.logs) {
		start = len(a.logs) - limit
	}
	out := make([]web.LogLine, len(a.logs)-start)
	copy(out, a.logs[start:])
	return out
}
