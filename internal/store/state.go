package store

// SetState stores one scalar app-state value.
func (db *DB) SetState(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return storageErr("set state", err)
	}
	return nil
}

// GetState returns a scalar app-state value, or "" if unset.
func (db *DB) GetState(key string) (string, error) {
	var v string
	err := db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if isNoRows(err) {
			return "", nil
		}
		return "", storageErr("get state", err)
	}
	return v, nil
}

// SetLastReadMessageID records the newest message a user has read. Unread
// counters elsewhere in the app read it back.
func (db *DB) SetLastReadMessageID(userID, messageID string) error {
	return db.SetState("last_read_message_id:"+userID, messageID)
}

// LastReadMessageID returns the stored marker for a user, or "".
func (db *DB) LastReadMessageID(userID string) (string, error) {
	return db.GetState("last_read_message_id:" + userID)
}
