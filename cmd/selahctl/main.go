package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/davialcantara/selah/internal/bible"
	"github.com/davialcantara/selah/internal/config"
	"github.com/davialcantara/selah/internal/download"
	"github.com/davialcantara/selah/internal/lock"
	"github.com/davialcantara/selah/internal/profile"
	"github.com/davialcantara/selah/internal/reader"
	"github.com/davialcantara/selah/internal/remote"
	"github.com/davialcantara/selah/internal/store"
)

// staticConn reports the connectivity state observed by a single probe at
// startup. Good enough for a one-shot command.
type staticConn bool

func (c staticConn) Online() bool { return bool(c) }

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	name := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(profile.ConfigPath())
	if err != nil {
		cfg = config.Default()
	}

	if err := profile.EnsureDir(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	lk, err := lock.Acquire(profile.LockPath(name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: profile %q is busy: %v\n", name, err)
		os.Exit(1)
	}
	defer func() { _ = lk.Release() }()

	db, err := store.Open(profile.DBPath(name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	if _, err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	client := remote.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, zap.NewNop())

	ctx := context.Background()

	switch args[0] {
	case "download":
		cmdDownload(ctx, db, client, cfg, *jsonFlag)
	case "read":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: selahctl read <book> <chapter>[:<verse>]")
			os.Exit(1)
		}
		cmdRead(ctx, db, client, cfg, args[1], args[2], *jsonFlag)
	case "search":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: selahctl search <query>")
			os.Exit(1)
		}
		cmdSearch(db, cfg, strings.Join(args[1:], " "), *jsonFlag)
	case "queue":
		cmdQueue(db, *jsonFlag)
	case "status":
		cmdStatus(db, cfg, *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: selahctl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  download                   Download the configured translation for offline use")
	fmt.Fprintln(os.Stderr, "  read <book> <ch>[:<v>]     Read a chapter or verse (cache-first)")
	fmt.Fprintln(os.Stderr, "  search <query>             Full-text search over cached verses")
	fmt.Fprintln(os.Stderr, "  queue                      List pending outbound messages")
	fmt.Fprintln(os.Stderr, "  status                     Show cache and download state")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "selahctl works on the profile store directly; stop selahd first.")
}

func cmdDownload(ctx context.Context, db *store.DB, client *remote.Client, cfg *config.Config, jsonOut bool) {
	if err := client.Probe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: backend unreachable: %v\n", err)
		os.Exit(1)
	}

	delay := time.Duration(cfg.Download.RequestDelayMS) * time.Millisecond
	o := download.NewOrchestrator(db, client, nil, zap.NewNop(), bible.Canon, delay)
	if !jsonOut {
		o.OnProgress(func(percent int) {
			fmt.Printf("\rDownloading %s... %d%%", cfg.Download.Translation, percent)
		})
	}

	meta, err := o.Run(ctx, cfg.Download.Translation)
	if !jsonOut {
		fmt.Println()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(meta)
		return
	}
	fmt.Printf("Processed: %d/%d chapters\n", meta.ProcessedUnits, meta.TotalUnits)
	if meta.FailedUnits > 0 {
		fmt.Printf("Skipped:   %d chapters (rerun download to retry)\n", meta.FailedUnits)
	}
}

func cmdRead(ctx context.Context, db *store.DB, client *remote.Client, cfg *config.Config, book, ref string, jsonOut bool) {
	loc := bible.Locator{Translation: cfg.Download.Translation, Book: strings.ToLower(book)}

	chapterPart, versePart, hasVerse := strings.Cut(ref, ":")
	var err error
	loc.Chapter, err = strconv.Atoi(chapterPart)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: bad chapter %q\n", chapterPart)
		os.Exit(1)
	}
	if hasVerse {
		loc.Verse, err = strconv.Atoi(versePart)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: bad verse %q\n", versePart)
			os.Exit(1)
		}
	}
	if err := loc.Validate(bible.Canon); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	online := client.Probe(ctx) == nil
	r := reader.New(db, client, staticConn(online), zap.NewNop())

	if loc.IsVerse() {
		v, err := r.Verse(ctx, loc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if jsonOut {
			outputJSON(v)
			return
		}
		fmt.Printf("%s %d:%d  %s\n", book, v.Chapter, v.Number, v.Text)
		return
	}

	ch, err := r.Chapter(ctx, loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(ch)
		return
	}
	for _, v := range ch.Verses {
		fmt.Printf("%3d  %s\n", v.Number, v.Text)
	}
}

func cmdSearch(db *store.DB, cfg *config.Config, query string, jsonOut bool) {
	results, err := db.SearchVerses(query, cfg.Download.Translation, 20)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(results)
		return
	}
	if len(results) == 0 {
		fmt.Println("No matches.")
		return
	}
	for _, res := range results {
		fmt.Printf("%s %d:%d  %s\n", res.Verse.Book, res.Verse.Chapter, res.Verse.Number, res.Snippet)
	}
}

func cmdQueue(db *store.DB, jsonOut bool) {
	entries, err := db.PendingOutbox()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(entries)
		return
	}
	if len(entries) == 0 {
		fmt.Println("Queue is empty.")
		return
	}
	for _, e := range entries {
		created := time.Unix(e.CreatedAt, 0).Format(time.RFC3339)
		fmt.Printf("%s  %s  %q\n", created, e.ClientMsgID, e.Body)
	}
	fmt.Printf("%d message(s) pending.\n", len(entries))
}

func cmdStatus(db *store.DB, cfg *config.Config, jsonOut bool) {
	chapters, err := db.Count(store.NamespaceChapters)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	verses, _ := db.Count(store.NamespaceVerses)
	pending, _ := db.PendingOutboxCount()
	meta, err := db.GetDownloadMeta(cfg.Download.Translation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if jsonOut {
		outputJSON(map[string]any{
			"chapters": chapters,
			"verses":   verses,
			"pending":  pending,
			"download": meta,
		})
		return
	}
	fmt.Printf("Translation: %s\n", cfg.Download.Translation)
	fmt.Printf("Chapters:    %d cached\n", chapters)
	fmt.Printf("Verses:      %d cached\n", verses)
	fmt.Printf("Pending:     %d outbound message(s)\n", pending)
	if meta == nil {
		fmt.Println("Download:    never run")
		return
	}
	fmt.Printf("Download:    %d/%d chapters", meta.ProcessedUnits, meta.TotalUnits)
	if meta.FullyCached {
		fmt.Print(" (complete)")
	}
	fmt.Println()
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
