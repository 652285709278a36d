// Package lifecycle decides which chats remain valid and evicts the rest.
// Eviction is lazy and read-triggered: every chat-list read runs the expiry
// rule and reclaims expired chats and their messages. The same decision
// logic backs the optional periodic sweep, so both triggers share one rule.
package lifecycle

import (
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ridepool/pkg/logger"
	"ridepool/pkg/models"
	"ridepool/pkg/store"
)

// DefaultWindow is the retention window after a trip's pickup time. A chat
// with pickupTime t is expired strictly after t + 72h.
const DefaultWindow = 72 * time.Hour

var (
	chatsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridepool_chats_evicted_total",
		Help: "Chats removed by the expiry sweep.",
	})
	messagesPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridepool_messages_purged_total",
		Help: "Messages removed as a cascade of chat eviction.",
	})
)

// Sweeper evaluates chat expiry with an injectable clock so the rule is
// testable and reusable from both the list path and the background sweep.
type Sweeper struct {
	Window time.Duration
	Now    func() time.Time
}

// NewSweeper returns a Sweeper with the given window (DefaultWindow when
// zero or negative) and a wall clock.
func NewSweeper(window time.Duration) *Sweeper {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Sweeper{Window: window, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Expired reports whether a chat is past its retention window at now. Chats
// without a pickup time never expire.
func Expired(now time.Time, c models.Chat, window time.Duration) bool {
	if c.PickupTime == nil {
		return false
	}
	return now.After(c.PickupTime.Add(window))
}

// Partition splits raw chat documents into valid and expired sets, keeping
// the input order for the valid set. Documents that do not decode as chats
// cannot be judged and stay in the valid set.
func (s *Sweeper) Partition(now time.Time, raws [][]byte) (valid [][]byte, expired []models.Chat) {
	valid = make([][]byte, 0, len(raws))
	for _, raw := range raws {
		var c models.Chat
		if err := json.Unmarshal(raw, &c); err != nil {
			logger.Warn("chat_undecodable", "error", err)
			valid = append(valid, raw)
			continue
		}
		if Expired(now, c, s.Window) {
			expired = append(expired, c)
			continue
		}
		valid = append(valid, raw)
	}
	return valid, expired
}

// ListChats returns a user's valid chats in scan order, evicting expired
// ones as a side effect. A failing scan fails the whole call; a per-chat
// eviction failure is logged and the chat is still withheld from the result.
func (s *Sweeper) ListChats(userID string) ([][]byte, error) {
	raws, err := store.ListUserChats(userID)
	if err != nil {
		return nil, err
	}
	valid, expired := s.Partition(s.now(), raws)
	for _, c := range expired {
		s.evict(c)
	}
	return valid, nil
}

// SweepAll runs the expiry rule over every stored chat. With dryRun the
// expired set is only counted, not removed. Returns the number of chats
// evicted (or that would be).
func (s *Sweeper) SweepAll(dryRun bool) (int, error) {
	raws, err := store.ListAllChats()
	if err != nil {
		return 0, err
	}
	_, expired := s.Partition(s.now(), raws)
	if dryRun {
		logger.Info("sweep_dry_run", "expired", len(expired))
		return len(expired), nil
	}
	n := 0
	for _, c := range expired {
		if s.evict(c) {
			n++
		}
	}
	return n, nil
}

func (s *Sweeper) evict(c models.Chat) bool {
	msgs, err := store.DeleteChat(c.ID)
	if err != nil {
		// best-effort: a later pass gets another read-opportunity
		logger.Error("chat_evict_failed", "chat", c.ID, "error", err)
		return false
	}
	chatsEvicted.Inc()
	messagesPurged.Add(float64(msgs))
	logger.Info("chat_evicted", "chat", c.ID, "user", c.UserID, "messages", msgs)
	return true
}
