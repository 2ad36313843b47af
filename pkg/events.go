package eeglab

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Event is one row of the (n_events x 3) event array: sample latency, the
// previous value column (always 0 here) and the event code.
type Event struct {
	Sample int
	Prev   int
	Code   int
}

type EventTable []Event

// Codes returns the code column.
func (t EventTable) Codes() []int {
	codes := make([]int, len(t))
	for i, ev := range t {
		codes[i] = ev.Code
	}
	return codes
}

// EventIDMap maps event labels to codes.
type EventIDMap map[string]int

// Labels returns the labels ordered by code, then by name.
func (m EventIDMap) Labels() []string {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	slices.SortFunc(labels, func(a, b string) int {
		if m[a] != m[b] {
			return m[a] - m[b]
		}
		return strings.Compare(a, b)
	})
	return labels
}

// EventIDFromCodes builds the map used when event ids are given as plain
// integers: each code is keyed by its decimal string.
func EventIDFromCodes(codes ...int) EventIDMap {
	ids := make(EventIDMap, len(codes))
	for _, code := range codes {
		ids[strconv.Itoa(code)] = code
	}
	return ids
}

// DefaultEventIDs is the map used when an event table is supplied without an
// event id map: one entry per distinct code.
func DefaultEventIDs(table EventTable) EventIDMap {
	var codes []int
	for _, ev := range table {
		if !slices.Contains(codes, ev.Code) {
			codes = append(codes, ev.Code)
		}
	}
	return EventIDFromCodes(codes...)
}

// ReconstructEvents builds the event table of an epoched recording, one row
// per trial. Codes follow first appearance of each label unless explicit is
// given, in which case it is used as is.
func ReconstructEvents(epochs []EpochAnnotation, explicit EventIDMap) (EventTable, EventIDMap, error) {
	labels := make([]string, len(epochs))
	latencies := make([]int, len(epochs))
	var unique []string

	for i, ep := range epochs {
		if len(ep.Labels) != 1 {
			return nil, nil, &ErrAmbiguousAnnotation{Trial: i, Labels: len(ep.Labels)}
		}
		labels[i] = ep.Labels[0]
		if len(ep.Latencies) == 0 {
			return nil, nil, fmt.Errorf("epoch[%d]: %w", i, &ErrMissingField{Field: "eventurevent"})
		}
		latencies[i] = int(ep.Latencies[0])
		if !slices.Contains(unique, labels[i]) {
			unique = append(unique, labels[i])
		}
	}

	var eventID EventIDMap
	if explicit != nil {
		eventID = maps.Clone(explicit)
	} else {
		eventID = make(EventIDMap, len(unique))
		for idx, label := range unique {
			eventID[label] = idx
		}
	}

	table := make(EventTable, len(epochs))
	for i := range epochs {
		code, ok := eventID[labels[i]]
		if !ok {
			return nil, nil, &ErrUnknownLabel{Trial: i, Label: labels[i]}
		}
		table[i] = Event{Sample: latencies[i], Prev: 0, Code: code}
	}

	if err := ValidateEventIDs(table, eventID); err != nil {
		return nil, nil, err
	}
	if verbosity > 0 {
		message := fmt.Sprintf("Reconstructed %d events with %d event types", len(table), len(eventID))
		logger.Info(message, "events")
	}
	return table, eventID, nil
}

// ValidateEventIDs checks that every code in ids occurs in the table.
func ValidateEventIDs(table EventTable, ids EventIDMap) error {
	codes := table.Codes()
	for _, label := range ids.Labels() {
		if !slices.Contains(codes, ids[label]) {
			return &ErrNoMatchingEvents{Label: label, Code: ids[label]}
		}
	}
	return nil
}

// ReadEventsFile reads a text event array: three integer columns
// (sample, previous, code), or four when a time column follows the sample.
func ReadEventsFile(filename string) (EventTable, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	var table EventTable
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		switch len(fields) {
		case 3:
		case 4:
			fields = []string{fields[0], fields[2], fields[3]}
		default:
			return nil, fmt.Errorf("error parsing events %s line %d: expected 3 or 4 columns, got %d", filename, line, len(fields))
		}
		var row [3]int
		for i, f := range fields {
			row[i], err = strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("error parsing events %s line %d: %w", filename, line, err)
			}
		}
		table = append(table, Event{Sample: row[0], Prev: row[1], Code: row[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading events %s: %w", filename, err)
	}
	return table, nil
}

// WriteEventsFile writes the three column text form read by ReadEventsFile.
func WriteEventsFile(filename string, table EventTable) error {
	file, err := os.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	w := bufio.NewWriter(file)
	for _, ev := range table {
		fmt.Fprintf(w, "%d %d %d\n", ev.Sample, ev.Prev, ev.Code)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("error writing events %s: %w", filename, err)
	}
	return file.Close()
}
