package bible

import "testing"

func TestCanonShape(t *testing.T) {
	if len(Canon) != 66 {
		t.Fatalf("canon has %d books, want 66", len(Canon))
	}
	if got := TotalChapters(Canon); got != 1189 {
		t.Errorf("TotalChapters = %d, want 1189", got)
	}
	seen := map[string]bool{}
	for _, b := range Canon {
		if b.Chapters < 1 {
			t.Errorf("%s has %d chapters", b.ID, b.Chapters)
		}
		if seen[b.ID] {
			t.Errorf("duplicate book id %q", b.ID)
		}
		seen[b.ID] = true
	}
	if Canon[0].ID != "genesis" || Canon[65].ID != "revelation" {
		t.Errorf("canonical order broken: first=%s last=%s", Canon[0].ID, Canon[65].ID)
	}
}

func TestBookByID(t *testing.T) {
	b := BookByID(Canon, "psalms")
	if b == nil || b.Chapters != 150 {
		t.Fatalf("psalms lookup = %+v, want 150 chapters", b)
	}
	if BookByID(Canon, "enoch") != nil {
		t.Error("expected nil for book outside the canon")
	}
}

func TestLocatorValidate(t *testing.T) {
	tests := []struct {
		name    string
		loc     Locator
		wantErr bool
	}{
		{"chapter ok", Locator{Translation: "kjv", Book: "genesis", Chapter: 1}, false},
		{"verse ok", Locator{Translation: "kjv", Book: "john", Chapter: 3, Verse: 16}, false},
		{"last chapter", Locator{Translation: "kjv", Book: "psalms", Chapter: 150}, false},
		{"chapter past end", Locator{Translation: "kjv", Book: "jude", Chapter: 2}, true},
		{"chapter zero", Locator{Translation: "kjv", Book: "genesis", Chapter: 0}, true},
		{"unknown book", Locator{Translation: "kjv", Book: "enoch", Chapter: 1}, true},
		{"empty translation", Locator{Book: "genesis", Chapter: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.loc.Validate(Canon)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%s) error = %v, wantErr %v", tt.loc, err, tt.wantErr)
			}
		})
	}
}

func TestLocatorChapterOf(t *testing.T) {
	v := Locator{Translation: "kjv", Book: "john", Chapter: 3, Verse: 16}
	c := v.ChapterOf()
	if c.Verse != 0 || c.Book != "john" || c.Chapter != 3 {
		t.Errorf("ChapterOf = %s, want kjv/john/3", c)
	}
	if !v.IsVerse() || c.IsVerse() {
		t.Error("IsVerse flags wrong")
	}
}
