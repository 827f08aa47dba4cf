package store

import "time"

// PutDownloadMeta upserts the per-translation download progress record.
func (db *DB) PutDownloadMeta(m *DownloadMeta) error {
	m.LastUpdated = time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO download_meta (translation_id, total_units, processed_units, failed_units, fully_cached, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(translation_id) DO UPDATE SET
			total_units = excluded.total_units,
			processed_units = excluded.processed_units,
			failed_units = excluded.failed_units,
			fully_cached = excluded.fully_cached,
			last_updated = excluded.last_updated`,
		m.Translation, m.TotalUnits, m.ProcessedUnits, m.FailedUnits, m.FullyCached, m.LastUpdated)
	if err != nil {
		return storageErr("put download meta", err)
	}
	return nil
}

// GetDownloadMeta returns the progress record for a translation, or nil if no
// download has ever run for it.
func (db *DB) GetDownloadMeta(translation string) (*DownloadMeta, error) {
	m := &DownloadMeta{Translation: translation}
	err := db.QueryRow(`
		SELECT total_units, processed_units, failed_units, fully_cached, last_updated
		FROM download_meta WHERE translation_id = ?`,
		translation).Scan(&m.TotalUnits, &m.ProcessedUnits, &m.FailedUnits, &m.FullyCached, &m.LastUpdated)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storageErr("get download meta", err)
	}
	return m, nil
}
