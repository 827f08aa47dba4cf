// Package outbox sends user messages: directly while online, through a
// durable replay queue while offline. Replay preserves enqueue order and
// submits every client message id at most once.
package outbox

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davialcantara/selah/internal/bus"
	"github.com/davialcantara/selah/internal/remote"
	"github.com/davialcantara/selah/internal/status"
	"github.com/davialcantara/selah/internal/store"
)

// RemoteSender submits outbound messages to the write API.
type RemoteSender interface {
	CreateMessage(ctx context.Context, m *remote.OutboundMessage) (serverMsgID string, err error)
}

// Connectivity exposes the current state and its transition epoch.
type Connectivity interface {
	State() (online bool, epoch uint64)
}

// Sender owns the outbound message path.
type Sender struct {
	db        *store.DB
	remote    RemoteSender
	conn      Connectivity
	bus       *bus.Bus
	logger    *zap.Logger
	cancel    context.CancelFunc
	replaying atomic.Bool
}

// NewSender creates a sender.
func NewSender(db *store.DB, r RemoteSender, conn Connectivity, b *bus.Bus, logger *zap.Logger) *Sender {
	return &Sender{
		db:     db,
		remote: r,
		conn:   conn,
		bus:    b,
		logger: logger,
	}
}

// Send submits one message. The entry is persisted to the outbox first in
// every case, so a crash can never lose an accepted message.
//
// Online, the entry optimistically moves to sent before the remote call; on
// ack it is acknowledged and removed. A failed direct send is re-queued and
// the error returned, so the caller can tell the user while replay-on-
// reconnect retries it with the same client message id.
//
// Offline, the entry stays queued and the returned status is queued.
func (s *Sender) Send(ctx context.Context, senderID, body, attachmentRef string) (string, status.Status, error) {
	clientMsgID := uuid.NewString()
	if err := s.db.QueueOutbox(clientMsgID, senderID, body, attachmentRef); err != nil {
		return "", "", err
	}

	online, _ := s.conn.State()
	if !online {
		s.publish("message.queued", map[string]string{"client_msg_id": clientMsgID})
		s.publishPending()
		return clientMsgID, status.Queued, nil
	}

	entry, err := s.db.GetOutbox(clientMsgID)
	if err != nil {
		return clientMsgID, status.Queued, err
	}
	st, err := s.deliver(ctx, entry)
	return clientMsgID, st, err
}

// Start subscribes to connectivity transitions and replays the queue on
// every transition to online. Events are consumed by a single goroutine, so
// at most one replay pass is ever in flight.
func (s *Sender) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	ch, unsub := s.bus.Subscribe("connectivity.online", 16)

	go func() {
		defer unsub()
		// A previous process run may have died between marking an entry
		// sent and receiving the ack, leaving it invisible to replay.
		// The server deduplicates by client message id, so re-queueing
		// is safe.
		if n, err := s.db.RecoverSentOutbox("interrupted before ack"); err != nil {
			s.logger.Error("failed to recover in-flight outbox entries", zap.Error(err))
		} else if n > 0 {
			s.logger.Info("recovered in-flight outbox entries", zap.Int("count", n))
			s.publishPending()
		}
		// Drain anything left over from a previous process run in case the
		// monitor came up online before we subscribed.
		s.Replay(ctx)
		for {
			select {
			case <-ch:
				s.Replay(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the replay subscriber.
func (s *Sender) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// PendingCount returns the number of queued messages, for the UI's pending
// indicator.
func (s *Sender) PendingCount() (int, error) {
	return s.db.PendingOutboxCount()
}

// Replay drains the queue in strict enqueue order while online. It stops on
// the first failure so later messages cannot overtake an earlier one, and it
// stops when the connectivity epoch moves past the one it started under;
// the transition that caused the move triggers a fresh pass that takes over.
// Safe to call concurrently; extra calls while a pass is active are no-ops.
func (s *Sender) Replay(ctx context.Context) {
	if !s.replaying.CompareAndSwap(false, true) {
		return
	}
	defer s.replaying.Store(false)

	online, epoch := s.conn.State()
	if !online {
		return
	}

	pending, err := s.db.PendingOutbox()
	if err != nil {
		s.logger.Error("failed to read outbox", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	s.logger.Info("replaying outbox", zap.Int("pending", len(pending)), zap.Uint64("epoch", epoch))

	for i := range pending {
		curOnline, curEpoch := s.conn.State()
		if !curOnline || curEpoch != epoch {
			s.logger.Info("replay fenced by connectivity change",
				zap.Uint64("started_epoch", epoch),
				zap.Uint64("current_epoch", curEpoch),
			)
			return
		}
		if _, err := s.deliver(ctx, &pending[i]); err != nil {
			// Remaining entries stay queued for the next online transition.
			return
		}
	}
	s.publishPending()
}

// deliver moves one entry queued -> sent -> acknowledged, or re-queues it on
// failure.
func (s *Sender) deliver(ctx context.Context, entry *store.OutboxEntry) (status.Status, error) {
	if err := s.db.MarkOutboxSent(entry.ClientMsgID); err != nil {
		s.logger.Error("failed to mark sent", zap.Error(err), zap.String("client_msg_id", entry.ClientMsgID))
		return entry.Status, err
	}
	s.publish("message.sent", map[string]string{"client_msg_id": entry.ClientMsgID})

	serverMsgID, err := s.remote.CreateMessage(ctx, &remote.OutboundMessage{
		SenderID:      entry.SenderID,
		Payload:       entry.Body,
		ClientID:      entry.ClientMsgID,
		AttachmentRef: entry.AttachmentRef,
		Timestamp:     entry.CreatedAt,
	})
	if err != nil {
		s.logger.Error("failed to send message", zap.Error(err), zap.String("client_msg_id", entry.ClientMsgID))
		_ = s.db.MarkOutboxFailed(entry.ClientMsgID, err.Error())
		_ = s.db.RequeueOutbox(entry.ClientMsgID)
		s.publish("message.send_failed", map[string]string{
			"client_msg_id": entry.ClientMsgID,
			"error":         err.Error(),
		})
		s.publishPending()
		return status.Queued, err
	}

	if err := s.db.AcknowledgeOutbox(entry.ClientMsgID); err != nil {
		s.logger.Error("failed to ack outbox", zap.Error(err), zap.String("client_msg_id", entry.ClientMsgID))
		return status.Sent, err
	}

	s.logger.Info("message acknowledged",
		zap.String("client_msg_id", entry.ClientMsgID),
		zap.String("server_msg_id", serverMsgID),
	)
	s.publish("message.send_ack", map[string]string{
		"client_msg_id": entry.ClientMsgID,
		"server_msg_id": serverMsgID,
	})
	return status.Acknowledged, nil
}

func (s *Sender) publish(kind string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

func (s *Sender) publishPending() {
	if s.bus == nil {
		return
	}
	n, err := s.db.PendingOutboxCount()
	if err != nil {
		return
	}
	s.bus.Publish(bus.Event{Kind: "outbox.pending", Timestamp: time.Now(), Payload: n})
}
