package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"golang.org/x/text/unicode/norm"
)

// Entry is one (system, game, archive) triple of the manifest.
type Entry struct {
	System  string `json:"system"`
	Game    string `json:"game"`
	Archive string `json:"archive" validate:"required,localarchive"`
}

// Manifest is a parsed manifest document.
type Manifest struct {
	path     string
	entries  []Entry
	consumed bool
}

// Open reads and checks the manifest at path. A missing or unreadable file is
// a *ReadError; malformed JSON, a wrong shape, or an archive name that leaves
// the archive directory is a *ParseError. A repeated key keeps its first
// position and takes the last value, as JSON.parse does.
func Open(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return parse(path, data)
}

// Parse checks an in-memory manifest. path is used only in errors.
func Parse(path string, data []byte) (*Manifest, error) {
	return parse(path, data)
}

func parse(path string, data []byte) (*Manifest, error) {
	entries, err := decode(path, data)
	if err != nil {
		return nil, err
	}
	return &Manifest{path: path, entries: entries}, nil
}

// Path returns the file the manifest was read from.
func (m *Manifest) Path() string { return m.path }

// Len reports the number of entries in the manifest.
func (m *Manifest) Len() int { return len(m.entries) }

// Entries returns the manifest entries in document order: systems in key
// order, then games in key order within each system. The sequence can be
// ranged over once; later iterations yield ErrConsumed.
func (m *Manifest) Entries() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		if m.consumed {
			yield(Entry{}, ErrConsumed)
			return
		}
		m.consumed = true
		for _, entry := range m.entries {
			if !yield(entry, nil) {
				return
			}
		}
	}
}

type systemGames struct {
	name  string
	games []Entry
	index map[string]int
}

// decode walks the document token by token and returns its entries in key
// order.
func decode(path string, data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	fail := func(err error) error {
		offset := dec.InputOffset()
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			offset = syntaxErr.Offset
		}
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return &ParseError{Path: path, Offset: offset, Err: err}
	}

	if err := expectDelim(dec, '{', "top level"); err != nil {
		return nil, fail(err)
	}
	var systems []*systemGames
	bySystem := make(map[string]int)
	for dec.More() {
		system, err := readKey(dec)
		if err != nil {
			return nil, fail(err)
		}
		if err := expectDelim(dec, '{', fmt.Sprintf("system %q", system)); err != nil {
			return nil, fail(err)
		}
		current := &systemGames{name: system, index: make(map[string]int)}
		for dec.More() {
			game, err := readKey(dec)
			if err != nil {
				return nil, fail(err)
			}
			tok, err := dec.Token()
			if err != nil {
				return nil, fail(err)
			}
			archive, ok := tok.(string)
			if !ok {
				return nil, fail(fmt.Errorf("system %q game %q: archive must be a string, got %s", system, game, describe(tok)))
			}
			entry := Entry{System: system, Game: game, Archive: archive}
			if err := validateEntry(entry); err != nil {
				return nil, fail(err)
			}
			if pos, seen := current.index[game]; seen {
				current.games[pos] = entry
				continue
			}
			current.index[game] = len(current.games)
			current.games = append(current.games, entry)
		}
		if err := expectDelim(dec, '}', fmt.Sprintf("system %q", system)); err != nil {
			return nil, fail(err)
		}
		if pos, seen := bySystem[system]; seen {
			systems[pos] = current
			continue
		}
		bySystem[system] = len(systems)
		systems = append(systems, current)
	}
	if err := expectDelim(dec, '}', "top level"); err != nil {
		return nil, fail(err)
	}
	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, &ParseError{Path: path, Offset: dec.InputOffset(), Err: err}
		}
		return nil, &ParseError{Path: path, Offset: dec.InputOffset(), Err: fmt.Errorf("unexpected %s after document", describe(tok))}
	}

	var entries []Entry
	for _, system := range systems {
		entries = append(entries, system.games...)
	}
	return entries, nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %s", describe(tok))
	}
	return norm.NFC.String(key), nil
}

func expectDelim(dec *json.Decoder, want json.Delim, where string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); ok && delim == want {
		return nil
	}
	if want == '{' {
		return fmt.Errorf("%s must be an object, got %s", where, describe(tok))
	}
	return fmt.Errorf("%s: expected %q, got %s", where, want, describe(tok))
}

func describe(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return "object"
		case '[':
			return "array"
		default:
			return fmt.Sprintf("%q", v.String())
		}
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", tok)
	}
}
