// atomsummary — aggregate an atomevents log into SQLite.
//
// Produces two tables: events (count per record kind, with intern records
// split by representation) and strings (per dynamic string: insert/remove
// balance, peak concurrent entries, whether any entry leaked).
package main

import (
	"database/sql"
	"flag"
	"os"

	"atomcache/atom"
	"atomcache/debug"
	"atomcache/event"
	"atomcache/utils"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"
)

type stringStat struct {
	inserts int
	removes int
	live    int
	peak    int
}

func main() {
	in := flag.String("in", "atom-events.json", "event log produced by atomevents")
	dbPath := flag.String("db", "atom-summary.db", "SQLite output database")
	flag.Parse()

	data, err := os.ReadFile(*in)
	if err != nil {
		debug.DropError("SUMMARY", err)
		os.Exit(1)
	}
	var records []event.Record
	if err := sonnet.Unmarshal(data, &records); err != nil {
		debug.DropError("SUMMARY", err)
		os.Exit(1)
	}

	kinds := make(map[string]int)
	byAddr := make(map[uint64]string)
	byString := make(map[string]*stringStat)

	for _, r := range records {
		switch r.Event {
		case "intern":
			kinds["intern_"+atom.KindOfWord(r.ID).String()]++
		case "insert":
			kinds["insert"]++
			byAddr[r.ID] = r.Str
			st := byString[r.Str]
			if st == nil {
				st = &stringStat{}
				byString[r.Str] = st
			}
			st.inserts++
			st.live++
			if st.live > st.peak {
				st.peak = st.live
			}
		case "remove":
			kinds["remove"]++
			// Entries inserted before capture began have no address mapping.
			if s, ok := byAddr[r.ID]; ok {
				if st := byString[s]; st != nil {
					st.removes++
					st.live--
				}
			}
		}
	}

	if err := store(*dbPath, kinds, byString); err != nil {
		debug.DropError("SUMMARY", err)
		os.Exit(1)
	}
	debug.DropMessage("SUMMARY", utils.Itoa(len(records))+" records, "+
		utils.Itoa(len(byString))+" dynamic strings -> "+*dbPath)
}

func store(path string, kinds map[string]int, byString map[string]*stringStat) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (kind TEXT PRIMARY KEY, count INTEGER NOT NULL);
		CREATE TABLE IF NOT EXISTS strings (
			string    TEXT PRIMARY KEY,
			inserts   INTEGER NOT NULL,
			removes   INTEGER NOT NULL,
			peak_live INTEGER NOT NULL,
			leaked    INTEGER NOT NULL
		);
		DELETE FROM events;
		DELETE FROM strings;`)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	evStmt, err := tx.Prepare("INSERT INTO events (kind, count) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer evStmt.Close()
	for kind, n := range kinds {
		if _, err := evStmt.Exec(kind, n); err != nil {
			return err
		}
	}

	strStmt, err := tx.Prepare(
		"INSERT INTO strings (string, inserts, removes, peak_live, leaked) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer strStmt.Close()
	for s, st := range byString {
		leaked := 0
		if st.inserts != st.removes {
			leaked = 1
		}
		if _, err := strStmt.Exec(s, st.inserts, st.removes, st.peak, leaked); err != nil {
			return err
		}
	}

	return tx.Commit()
}
