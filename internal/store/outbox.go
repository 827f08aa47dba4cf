package store

import (
	"fmt"
	"time"

	"github.com/davialcantara/selah/internal/status"
)

// QueueOutbox appends a message to the durable outbox in state queued.
func (db *DB) QueueOutbox(clientMsgID, senderID, body, attachmentRef string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO outbox (client_msg_id, sender_id, body, attachment_ref, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		clientMsgID, senderID, body, attachmentRef, status.Queued, now, now)
	if err != nil {
		return storageErr("queue outbox", err)
	}
	return nil
}

// GetOutbox returns one outbox entry by client message id, or nil if it is
// not in the queue (never enqueued, or already acknowledged and removed).
func (db *DB) GetOutbox(clientMsgID string) (*OutboxEntry, error) {
	var e OutboxEntry
	err := db.QueryRow(`
		SELECT id, client_msg_id, sender_id, body, attachment_ref, status, error_message, created_at, updated_at
		FROM outbox WHERE client_msg_id = ?`, clientMsgID).
		Scan(&e.ID, &e.ClientMsgID, &e.SenderID, &e.Body, &e.AttachmentRef, &e.Status, &e.ErrorMessage, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storageErr("get outbox", err)
	}
	return &e, nil
}

// PendingOutbox returns queued entries in strict enqueue order. The id
// tiebreak matters: created_at has millisecond resolution and bursts of
// enqueues can collide within one tick.
func (db *DB) PendingOutbox() ([]OutboxEntry, error) {
	rows, err := db.Query(`
		SELECT id, client_msg_id, sender_id, body, attachment_ref, status, error_message, created_at, updated_at
		FROM outbox WHERE status = ? ORDER BY created_at ASC, id ASC`, status.Queued)
	if err != nil {
		return nil, storageErr("pending outbox", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		if err := rows.Scan(&e.ID, &e.ClientMsgID, &e.SenderID, &e.Body, &e.AttachmentRef, &e.Status, &e.ErrorMessage, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, storageErr("pending outbox: scan", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("pending outbox", err)
	}
	return entries, nil
}

// PendingOutboxCount returns how many entries are still queued, for the
// UI's pending indicator.
func (db *DB) PendingOutboxCount() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM outbox WHERE status = ?`, status.Queued).Scan(&n); err != nil {
		return 0, storageErr("pending outbox count", err)
	}
	return n, nil
}

// RecoverSentOutbox re-queues entries stranded in sent by a process that
// died between marking sent and receiving the ack. The server deduplicates
// by client_msg_id, so a message that did reach it is acked as a no-op on
// the retry. Returns how many entries were recovered.
func (db *DB) RecoverSentOutbox(reason string) (int, error) {
	rows, err := db.Query(`
		SELECT client_msg_id FROM outbox WHERE status = ? ORDER BY created_at ASC, id ASC`, status.Sent)
	if err != nil {
		return 0, storageErr("recover sent outbox", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, storageErr("recover sent outbox: scan", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, storageErr("recover sent outbox", err)
	}

	// sent -> failed -> queued, through the state machine.
	for i, id := range ids {
		if err := db.MarkOutboxFailed(id, reason); err != nil {
			return i, err
		}
		if err := db.RequeueOutbox(id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}

// MarkOutboxSent transitions an entry queued -> sent.
func (db *DB) MarkOutboxSent(clientMsgID string) error {
	return db.setOutboxStatus(clientMsgID, status.Sent, "")
}

// MarkOutboxFailed transitions an entry sent -> failed, recording the error.
func (db *DB) MarkOutboxFailed(clientMsgID, errMsg string) error {
	return db.setOutboxStatus(clientMsgID, status.Failed, errMsg)
}

// RequeueOutbox transitions a failed entry back to queued so the next replay
// retries it with the same client message id.
func (db *DB) RequeueOutbox(clientMsgID string) error {
	return db.setOutboxStatus(clientMsgID, status.Queued, "")
}

// AcknowledgeOutbox removes an entry whose remote write was confirmed.
// Deleting on ack is what makes replay exactly-once: an acknowledged client
// id can never be picked up by a later replay pass.
func (db *DB) AcknowledgeOutbox(clientMsgID string) error {
	tx, err := db.Begin()
	if err != nil {
		return storageErr("ack outbox", err)
	}
	defer func() { _ = tx.Rollback() }()

	var cur status.Status
	if err := tx.QueryRow(`SELECT status FROM outbox WHERE client_msg_id = ?`, clientMsgID).Scan(&cur); err != nil {
		if isNoRows(err) {
			return fmt.Errorf("ack outbox: unknown client_msg_id %q", clientMsgID)
		}
		return storageErr("ack outbox", err)
	}
	if err := status.Check(cur, status.Acknowledged); err != nil {
		return fmt.Errorf("ack outbox %q: %w", clientMsgID, err)
	}
	if _, err := tx.Exec(`DELETE FROM outbox WHERE client_msg_id = ?`, clientMsgID); err != nil {
		return storageErr("ack outbox: delete", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("ack outbox: commit", err)
	}
	return nil
}

func (db *DB) setOutboxStatus(clientMsgID string, to status.Status, errMsg string) error {
	tx, err := db.Begin()
	if err != nil {
		return storageErr("set outbox status", err)
	}
	defer func() { _ = tx.Rollback() }()

	var cur status.Status
	if err := tx.QueryRow(`SELECT status FROM outbox WHERE client_msg_id = ?`, clientMsgID).Scan(&cur); err != nil {
		if isNoRows(err) {
			return fmt.Errorf("set outbox status: unknown client_msg_id %q", clientMsgID)
		}
		return storageErr("set outbox status", err)
	}
	if err := status.Check(cur, to); err != nil {
		return fmt.Errorf("outbox %q: %w", clientMsgID, err)
	}

	now := time.Now().UnixMilli()
	if _, err := tx.Exec(`
		UPDATE outbox SET status = ?, error_message = ?, updated_at = ? WHERE client_msg_id = ?`,
		to, errMsg, now, clientMsgID); err != nil {
		return storageErr("set outbox status", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("set outbox status: commit", err)
	}
	return nil
}
