// Package relay is the conversation core: it resolves a user's history,
// assembles a prompt, invokes the generation backend once, persists the
// exchange, and returns the response as ordered bounded segments.
package relay

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"strings"
	"sync"

	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/chunk"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/config"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/eventbus"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/history"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/llm"
	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/sanitize"
)

const (
	genFailureReply   = "Sorry, I encountered an error processing your message. Please try again."
	imageFailureReply = "Sorry, I couldn't process that image. Please try again."
	defaultImageAsk   = "What is in this image?"
)

// Number of lock stripes for per-user serialization. Requests from the same
// user share a stripe; requests from different users almost never do.
const lockShards = 64

// Request is one inbound message to handle.
type Request struct {
	UserID      string
	Text        string
	Image       []byte
	CommunityID string
	ChannelID   string
}

// Relay orchestrates history, generation, and chunking for one bot instance.
type Relay struct {
	cfg       config.BotConfig
	gen       llm.Generator
	store     history.Store // nil when the durable tier is not configured
	stats     history.Stats // nil when statistics are unavailable
	cache     *history.LocalCache
	sanitizer *sanitize.Sanitizer
	bus       *eventbus.Bus
	locks     [lockShards]sync.Mutex
}

// New creates a relay. store and stats may be nil; the relay then runs on
// the in-memory tier alone. Fails on a non-positive chunk size.
func New(cfg config.BotConfig, gen llm.Generator, store history.Store, stats history.Stats, bus *eventbus.Bus) (*Relay, error) {
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("invalid configuration: chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if len(cfg.ResetKeywords) == 0 {
		cfg.ResetKeywords = []string{"RESET"}
	}
	return &Relay{
		cfg:       cfg,
		gen:       gen,
		store:     store,
		stats:     stats,
		cache:     history.NewLocalCache(cfg.MaxHistory),
		sanitizer: sanitize.New(),
		bus:       bus,
	}, nil
}

// Handle processes one inbound message and returns the ordered reply
// segments. Backend failures are converted to a user-safe reply; Handle
// never surfaces a raw backend error.
func (r *Relay) Handle(ctx context.Context, req Request) []chunk.Segment {
	clean := r.sanitizer.Clean(req.Text)

	lock := r.userLock(req.UserID)
	lock.Lock()
	defer lock.Unlock()

	// Images are stateless single turns: no history read, no history write.
	if len(req.Image) > 0 {
		return r.handleImage(ctx, req, clean)
	}

	if r.isReset(clean) {
		return r.split(r.reset(ctx, req.UserID))
	}

	r.touchStats(ctx, req)

	if r.cfg.MaxHistory == 0 {
		return r.handleStateless(ctx, req, clean)
	}
	return r.handleConversation(ctx, req, clean)
}

// Reset clears the user's history on both tiers, best-effort, and returns
// the confirmation text. Used by the reset keyword and the /reset command.
func (r *Relay) Reset(ctx context.Context, userID string) string {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return r.reset(ctx, userID)
}

func (r *Relay) reset(ctx context.Context, userID string) string {
	r.cache.Clear(userID)

	reply := "Conversation history has been reset."
	if r.store != nil {
		removed, err := r.store.Clear(ctx, userID)
		if err != nil {
			log.Printf("[relay] durable clear failed for %s: %v", userID, err)
		} else {
			reply = fmt.Sprintf("Conversation history has been reset: %d exchanges removed.", removed)
		}
	}

	r.bus.Publish(eventbus.TopicHistoryReset, userID)
	return reply
}

func (r *Relay) handleImage(ctx context.Context, req Request, clean string) []chunk.Segment {
	prompt := clean
	if prompt == "" {
		prompt = defaultImageAsk
	}

	r.bus.Publish(eventbus.TopicGenRequest, prompt)
	text, err := r.gen.GenerateFromImage(ctx, req.Image, prompt)
	if err != nil {
		log.Printf("[relay] image generation failed for %s: %v", req.UserID, err)
		r.bus.Publish(eventbus.TopicError, err)
		return r.split(imageFailureReply)
	}
	r.bus.Publish(eventbus.TopicGenResponse, text)
	return r.split(text)
}

func (r *Relay) handleStateless(ctx context.Context, req Request, clean string) []chunk.Segment {
	r.bus.Publish(eventbus.TopicGenRequest, clean)
	text, err := r.gen.Generate(ctx, clean)
	if err != nil {
		log.Printf("[relay] generation failed for %s: %v", req.UserID, err)
		r.bus.Publish(eventbus.TopicError, err)
		return r.split(genFailureReply)
	}
	r.bus.Publish(eventbus.TopicGenResponse, text)

	// History is disabled but the exchange is still recorded for statistics.
	if r.store != nil {
		if err := r.store.Save(ctx, req.UserID, clean, text, req.CommunityID); err != nil {
			log.Printf("[relay] persist failed for %s: %v", req.UserID, err)
		}
	}
	return r.split(text)
}

func (r *Relay) handleConversation(ctx context.Context, req Request, clean string) []chunk.Segment {
	resolved := r.resolveContext(ctx, req.UserID)

	var prompt string
	switch resolved.source {
	case sourceDurable:
		prompt = assembleFromExchanges(resolved.exchanges, clean)
	default:
		// Fallback tier: the input joins the raw window before prompting,
		// mirroring how the window is replayed on later requests.
		r.cache.Append(req.UserID, clean)
		prompt = assembleFromRaw(r.cache.Get(req.UserID))
	}

	r.bus.Publish(eventbus.TopicGenRequest, prompt)
	text, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[relay] generation failed for %s: %v", req.UserID, err)
		r.bus.Publish(eventbus.TopicError, err)
		return r.split(genFailureReply)
	}
	r.bus.Publish(eventbus.TopicGenResponse, text)

	// Persist to whichever tier supplied context, best-effort.
	switch resolved.source {
	case sourceDurable:
		if err := r.store.Save(ctx, req.UserID, clean, text, req.CommunityID); err != nil {
			log.Printf("[relay] persist failed for %s: %v", req.UserID, err)
		}
	default:
		r.cache.Append(req.UserID, text)
	}

	return r.split(text)
}

func (r *Relay) isReset(clean string) bool {
	upper := strings.ToUpper(clean)
	for _, kw := range r.cfg.ResetKeywords {
		if strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

func (r *Relay) touchStats(ctx context.Context, req Request) {
	if r.stats == nil {
		return
	}
	if err := r.stats.TouchUser(ctx, req.UserID, req.CommunityID); err != nil {
		log.Printf("[relay] user stats update failed: %v", err)
	}
	if req.CommunityID != "" {
		if err := r.stats.TouchCommunity(ctx, req.CommunityID); err != nil {
			log.Printf("[relay] community stats update failed: %v", err)
		}
	}
}

// split never fails: the chunk size was validated in New.
func (r *Relay) split(text string) []chunk.Segment {
	segments, err := chunk.Split(text, r.cfg.ChunkSize)
	if err != nil {
		log.Printf("[relay] split failed: %v", err)
		return []chunk.Segment{{Index: 0, Text: text}}
	}
	return segments
}

func (r *Relay) userLock(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &r.locks[h.Sum32()%lockShards]
}
