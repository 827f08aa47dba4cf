package store

import "time"

// PutChapter caches a chapter and its denormalized verse records in one
// transaction. Re-caching a chapter replaces any verse rows derived from a
// previous write, so stale verses never survive their parent.
func (db *DB) PutChapter(ch *Chapter) error {
	now := time.Now().UnixMilli()
	if ch.CachedAt == 0 {
		ch.CachedAt = now
	}

	tx, err := db.Begin()
	if err != nil {
		return storageErr("put chapter", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO chapters (translation_id, book_id, chapter, verse_count, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(translation_id, book_id, chapter) DO UPDATE SET
			verse_count = excluded.verse_count,
			cached_at = excluded.cached_at`,
		ch.Translation, ch.Book, ch.Number, len(ch.Verses), ch.CachedAt); err != nil {
		return storageErr("put chapter", err)
	}

	if _, err := tx.Exec(`
		DELETE FROM verses WHERE translation_id = ? AND book_id = ? AND chapter = ?`,
		ch.Translation, ch.Book, ch.Number); err != nil {
		return storageErr("put chapter: invalidate verses", err)
	}

	for _, v := range ch.Verses {
		if _, err := tx.Exec(`
			INSERT INTO verses (translation_id, book_id, chapter, verse, body, cached_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			ch.Translation, ch.Book, ch.Number, v.Number, v.Text, ch.CachedAt); err != nil {
			return storageErr("put chapter: verse", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("put chapter: commit", err)
	}
	return nil
}

// GetChapter returns a cached chapter with its verses in order, or nil if the
// chapter has not been cached.
func (db *DB) GetChapter(translation, book string, number int) (*Chapter, error) {
	ch := &Chapter{Translation: translation, Book: book, Number: number}
	err := db.QueryRow(`
		SELECT cached_at FROM chapters
		WHERE translation_id = ? AND book_id = ? AND chapter = ?`,
		translation, book, number).Scan(&ch.CachedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storageErr("get chapter", err)
	}

	rows, err := db.Query(`
		SELECT verse, body, cached_at FROM verses
		WHERE translation_id = ? AND book_id = ? AND chapter = ?
		ORDER BY verse ASC`,
		translation, book, number)
	if err != nil {
		return nil, storageErr("get chapter: verses", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		v := Verse{Translation: translation, Book: book, Chapter: number}
		if err := rows.Scan(&v.Number, &v.Text, &v.CachedAt); err != nil {
			return nil, storageErr("get chapter: scan verse", err)
		}
		ch.Verses = append(ch.Verses, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get chapter: verses", err)
	}
	return ch, nil
}

// DeleteChapter removes a cached chapter and its verse records.
func (db *DB) DeleteChapter(translation, book string, number int) error {
	tx, err := db.Begin()
	if err != nil {
		return storageErr("delete chapter", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		DELETE FROM verses WHERE translation_id = ? AND book_id = ? AND chapter = ?`,
		translation, book, number); err != nil {
		return storageErr("delete chapter: verses", err)
	}
	if _, err := tx.Exec(`
		DELETE FROM chapters WHERE translation_id = ? AND book_id = ? AND chapter = ?`,
		translation, book, number); err != nil {
		return storageErr("delete chapter", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("delete chapter: commit", err)
	}
	return nil
}
