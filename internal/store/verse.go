package store

import (
	"database/sql"
	"errors"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// GetVerse returns one cached verse, or nil if it has not been cached.
func (db *DB) GetVerse(translation, book string, chapter, number int) (*Verse, error) {
	v := &Verse{Translation: translation, Book: book, Chapter: chapter, Number: number}
	err := db.QueryRow(`
		SELECT body, cached_at FROM verses
		WHERE translation_id = ? AND book_id = ? AND chapter = ? AND verse = ?`,
		translation, book, chapter, number).Scan(&v.Text, &v.CachedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storageErr("get verse", err)
	}
	return v, nil
}

// SearchVerses performs a full-text search over cached verse bodies.
func (db *DB) SearchVerses(query, translation string, limit int) ([]VerseResult, error) {
	if limit <= 0 {
		limit = 50
	}

	q := `
		SELECT v.translation_id, v.book_id, v.chapter, v.verse, v.body, v.cached_at,
		       snippet(verses_fts, 0, '<<', '>>', '...', 16)
		FROM verses_fts f
		JOIN verses v ON v.id = f.rowid
		WHERE verses_fts MATCH ?`

	args := []any{query}
	if translation != "" {
		q += " AND v.translation_id = ?"
		args = append(args, translation)
	}
	q += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, storageErr("search verses", err)
	}
	defer func() { _ = rows.Close() }()

	var results []VerseResult
	for rows.Next() {
		var r VerseResult
		if err := rows.Scan(
			&r.Verse.Translation, &r.Verse.Book, &r.Verse.Chapter,
			&r.Verse.Number, &r.Verse.Text, &r.Verse.CachedAt, &r.Snippet,
		); err != nil {
			return nil, storageErr("search verses: scan", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("search verses", err)
	}
	return results, nil
}
