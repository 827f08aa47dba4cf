// Package bible holds the fixed scripture catalog and content locators.
package bible

// Book is one entry of the canonical catalog.
type Book struct {
	ID       string
	Name     string
	Chapters int
}

// Canon is the 66-book Protestant canon in canonical order. The download
// orchestrator walks it front to back, so order here is load-bearing for
// progress reporting.
var Canon = []Book{
	{ID: "genesis", Name: "Genesis", Chapters: 50},
	{ID: "exodus", Name: "Exodus", Chapters: 40},
	{ID: "leviticus", Name: "Leviticus", Chapters: 27},
	{ID: "numbers", Name: "Numbers", Chapters: 36},
	{ID: "deuteronomy", Name: "Deuteronomy", Chapters: 34},
	{ID: "joshua", Name: "Joshua", Chapters: 24},
	{ID: "judges", Name: "Judges", Chapters: 21},
	{ID: "ruth", Name: "Ruth", Chapters: 4},
	{ID: "1samuel", Name: "1 Samuel", Chapters: 31},
	{ID: "2samuel", Name: "2 Samuel", Chapters: 24},
	{ID: "1kings", Name: "1 Kings", Chapters: 22},
	{ID: "2kings", Name: "2 Kings", Chapters: 25},
	{ID: "1chronicles", Name: "1 Chronicles", Chapters: 29},
	{ID: "2chronicles", Name: "2 Chronicles", Chapters: 36},
	{ID: "ezra", Name: "Ezra", Chapters: 10},
	{ID: "nehemiah", Name: "Nehemiah", Chapters: 13},
	{ID: "esther", Name: "Esther", Chapters: 10},
	{ID: "job", Name: "Job", Chapters: 42},
	{ID: "psalms", Name: "Psalms", Chapters: 150},
	{ID: "proverbs", Name: "Proverbs", Chapters: 31},
	{ID: "ecclesiastes", Name: "Ecclesiastes", Chapters: 12},
	{ID: "songofsolomon", Name: "Song of Solomon", Chapters: 8},
	{ID: "isaiah", Name: "Isaiah", Chapters: 66},
	{ID: "jeremiah", Name: "Jeremiah", Chapters: 52},
	{ID: "lamentations", Name: "Lamentations", Chapters: 5},
	{ID: "ezekiel", Name: "Ezekiel", Chapters: 48},
	{ID: "daniel", Name: "Daniel", Chapters: 12},
	{ID: "hosea", Name: "Hosea", Chapters: 14},
	{ID: "joel", Name: "Joel", Chapters: 3},
	{ID: "amos", Name: "Amos", Chapters: 9},
	{ID: "obadiah", Name: "Obadiah", Chapters: 1},
	{ID: "jonah", Name: "Jonah", Chapters: 4},
	{ID: "micah", Name: "Micah", Chapters: 7},
	{ID: "nahum", Name: "Nahum", Chapters: 3},
	{ID: "habakkuk", Name: "Habakkuk", Chapters: 3},
	{ID: "zephaniah", Name: "Zephaniah", Chapters: 3},
	{ID: "haggai", Name: "Haggai", Chapters: 2},
	{ID: "zechariah", Name: "Zechariah", Chapters: 14},
	{ID: "malachi", Name: "Malachi", Chapters: 4},
	{ID: "matthew", Name: "Matthew", Chapters: 28},
	{ID: "mark", Name: "Mark", Chapters: 16},
	{ID: "luke", Name: "Luke", Chapters: 24},
	{ID: "john", Name: "John", Chapters: 21},
	{ID: "acts", Name: "Acts", Chapters: 28},
	{ID: "romans", Name: "Romans", Chapters: 16},
	{ID: "1corinthians", Name: "1 Corinthians", Chapters: 16},
	{ID: "2corinthians", Name: "2 Corinthians", Chapters: 13},
	{ID: "galatians", Name: "Galatians", Chapters: 6},
	{ID: "ephesians", Name: "Ephesians", Chapters: 6},
	{ID: "philippians", Name: "Philippians", Chapters: 4},
	{ID: "colossians", Name: "Colossians", Chapters: 4},
	{ID: "1thessalonians", Name: "1 Thessalonians", Chapters: 5},
	{ID: "2thessalonians", Name: "2 Thessalonians", Chapters: 3},
	{ID: "1timothy", Name: "1 Timothy", Chapters: 6},
	{ID: "2timothy", Name: "2 Timothy", Chapters: 4},
	{ID: "titus", Name: "Titus", Chapters: 3},
	{ID: "philemon", Name: "Philemon", Chapters: 1},
	{ID: "hebrews", Name: "Hebrews", Chapters: 13},
	{ID: "james", Name: "James", Chapters: 5},
	{ID: "1peter", Name: "1 Peter", Chapters: 5},
	{ID: "2peter", Name: "2 Peter", Chapters: 3},
	{ID: "1john", Name: "1 John", Chapters: 5},
	{ID: "2john", Name: "2 John", Chapters: 1},
	{ID: "3john", Name: "3 John", Chapters: 1},
	{ID: "jude", Name: "Jude", Chapters: 1},
	{ID: "revelation", Name: "Revelation", Chapters: 22},
}

// TotalChapters returns the number of chapters in a catalog.
func TotalChapters(catalog []Book) int {
	total := 0
	for _, b := range catalog {
		total += b.Chapters
	}
	return total
}

// BookByID looks up a catalog entry. Returns nil if the id is unknown.
func BookByID(catalog []Book, id string) *Book {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	return nil
}
