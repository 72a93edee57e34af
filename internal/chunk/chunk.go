// Package chunk splits oversized responses into ordered, bounded segments
// and delivers them to an output sink.
package chunk

import (
	"context"
	"fmt"
)

// Segment is one bounded piece of a response, tagged with its position.
type Segment struct {
	Index int
	Text  string
}

// Split cuts text into consecutive segments of at most max characters.
// Every segment except possibly the last has exactly max characters, the
// concatenation of all segments reproduces text, and an empty input yields
// no segments. max must be positive.
func Split(text string, max int) ([]Segment, error) {
	if max <= 0 {
		return nil, fmt.Errorf("invalid configuration: chunk size must be positive, got %d", max)
	}

	runes := []rune(text)
	var segments []Segment
	for i := 0; i < len(runes); i += max {
		end := i + max
		if end > len(runes) {
			end = len(runes)
		}
		segments = append(segments, Segment{
			Index: len(segments),
			Text:  string(runes[i:end]),
		})
	}
	return segments, nil
}

// Sink receives one segment at a time, in order.
type Sink interface {
	Send(ctx context.Context, text string) error
}

// PartialDeliveryError reports that some segments were rejected by the sink.
type PartialDeliveryError struct {
	Delivered int
	Total     int
	Err       error // last sink error
}

func (e *PartialDeliveryError) Error() string {
	return fmt.Sprintf("delivered %d of %d segments: %v", e.Delivered, e.Total, e.Err)
}

func (e *PartialDeliveryError) Unwrap() error {
	return e.Err
}

// Sender splits text and delivers the segments sequentially.
type Sender struct {
	max int
}

// NewSender creates a sender with the given maximum segment size.
func NewSender(max int) (*Sender, error) {
	if max <= 0 {
		return nil, fmt.Errorf("invalid configuration: chunk size must be positive, got %d", max)
	}
	return &Sender{max: max}, nil
}

// Deliver sends text to the sink, one segment per call, in order.
// A rejected segment does not stop the remaining ones; delivery is
// best-effort and never retried. Cancellation of ctx abandons the rest.
// If any segment was rejected, a *PartialDeliveryError is returned.
func (s *Sender) Deliver(ctx context.Context, sink Sink, text string) error {
	segments, err := Split(text, s.max)
	if err != nil {
		return err
	}
	return s.DeliverSegments(ctx, sink, segments)
}

// DeliverSegments sends pre-split segments to the sink in order.
func (s *Sender) DeliverSegments(ctx context.Context, sink Sink, segments []Segment) error {
	delivered := 0
	var lastErr error

	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}
		if err := sink.Send(ctx, seg.Text); err != nil {
			lastErr = err
			continue
		}
		delivered++
	}

	if delivered < len(segments) {
		return &PartialDeliveryError{Delivered: delivered, Total: len(segments), Err: lastErr}
	}
	return nil
}
