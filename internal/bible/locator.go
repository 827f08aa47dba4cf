package bible

import "fmt"

// Locator identifies one cacheable unit of scripture text, at chapter
// granularity (Verse == 0) or verse granularity (Verse > 0). Construct it
// once and treat it as a value; nothing mutates a Locator after creation.
type Locator struct {
	Translation string
	Book        string
	Chapter     int
	Verse       int
}

// ChapterOf returns the chapter-level locator containing l. For a
// chapter-level locator this is l itself.
func (l Locator) ChapterOf() Locator {
	l.Verse = 0
	return l
}

// IsVerse reports whether l addresses a single verse.
func (l Locator) IsVerse() bool {
	return l.Verse > 0
}

// Validate checks the locator against the catalog.
func (l Locator) Validate(catalog []Book) error {
	if l.Translation == "" {
		return fmt.Errorf("locator %s: empty translation", l)
	}
	b := BookByID(catalog, l.Book)
	if b == nil {
		return fmt.Errorf("locator %s: unknown book", l)
	}
	if l.Chapter < 1 || l.Chapter > b.Chapters {
		return fmt.Errorf("locator %s: chapter out of range (%s has %d)", l, b.Name, b.Chapters)
	}
	if l.Verse < 0 {
		return fmt.Errorf("locator %s: negative verse", l)
	}
	return nil
}

func (l Locator) String() string {
	if l.IsVerse() {
		return fmt.Sprintf("%s/%s/%d:%d", l.Translation, l.Book, l.Chapter, l.Verse)
	}
	return fmt.Sprintf("%s/%s/%d", l.Translation, l.Book, l.Chapter)
}
