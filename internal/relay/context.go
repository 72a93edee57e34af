package relay

import (
	"context"
	"log"
	"strings"

	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/history"
)

// contextSource tags which tier supplied the conversation context.
type contextSource int

const (
	// sourceDurable: the durable tier answered; its window is authoritative.
	sourceDurable contextSource = iota
	// sourceDurableUnavailable: the durable tier failed; the local cache
	// substitutes for this request only.
	sourceDurableUnavailable
	// sourceFallback: no durable tier is configured.
	sourceFallback
)

type resolvedContext struct {
	source    contextSource
	exchanges []history.Exchange // most recent first; only for sourceDurable
}

// resolveContext picks the tier for this request. Durable-tier failures
// degrade to the local cache and are never surfaced to the requester.
func (r *Relay) resolveContext(ctx context.Context, userID string) resolvedContext {
	if r.store == nil {
		return resolvedContext{source: sourceFallback}
	}

	exchanges, err := r.store.Recent(ctx, userID, r.cfg.MaxHistory)
	if err != nil {
		log.Printf("[relay] durable tier unavailable for %s, using local cache: %v", userID, err)
		return resolvedContext{source: sourceDurableUnavailable}
	}
	return resolvedContext{source: sourceDurable, exchanges: exchanges}
}

// assembleFromExchanges builds a prompt from structured history. Exchanges
// arrive most recent first and are replayed in chronological order as
// alternating prompt/response turns, with the new input last.
func assembleFromExchanges(exchanges []history.Exchange, input string) string {
	if len(exchanges) == 0 {
		return input
	}

	var sb strings.Builder
	for i := len(exchanges) - 1; i >= 0; i-- {
		sb.WriteString(exchanges[i].Prompt)
		sb.WriteString("\n\n")
		sb.WriteString(exchanges[i].Response)
		sb.WriteString("\n\n")
	}
	sb.WriteString(input)
	return sb.String()
}

// assembleFromRaw builds a prompt from the fallback tier's raw window,
// which interleaves prompts and responses as plain strings. This is a
// deliberately different strategy from the durable tier's structured
// turns; the two are not equivalent and are kept separate.
func assembleFromRaw(window []string) string {
	return strings.Join(window, "\n\n")
}
