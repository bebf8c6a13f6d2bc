// atomevents — replay a text workload through the interner with event
// capture on, then dump the captured intern/insert/remove log as JSON for
// cmd/atomsummary.
package main

import (
	"flag"
	"os"
	"strings"

	"atomcache/atom"
	"atomcache/debug"
	"atomcache/event"
	"atomcache/utils"
)

func main() {
	in := flag.String("in", "", "workload file (whitespace-separated tokens)")
	out := flag.String("out", "atom-events.json", "event log output path")
	flag.Parse()

	if *in == "" {
		debug.DropMessage("EVENTS", "missing -in workload file")
		os.Exit(2)
	}
	data, err := os.ReadFile(*in)
	if err != nil {
		debug.DropError("EVENTS", err)
		os.Exit(1)
	}

	event.Enable()
	toks := strings.Fields(string(data))
	handles := make([]atom.DefaultAtom, 0, len(toks))
	for _, t := range toks {
		handles = append(handles, atom.Intern(t))
	}
	for _, h := range handles {
		h.Drop()
	}
	event.Disable()

	if err := event.WriteJSON(*out); err != nil {
		debug.DropError("EVENTS", err)
		os.Exit(1)
	}
	debug.DropMessage("EVENTS", utils.Itoa(len(toks))+" tokens -> "+utils.Itoa(len(event.Snapshot()))+" records")
}
