// Package chatlog is a best-effort append-only message log, one JSON-lines
// file per room. It shares only the room-name sanitization convention with
// the relay core and knows nothing about live membership.
package chatlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/wavelink/internal/domain"
)

const (
	maxNicknameLen  = 64
	defaultNickname = "anonymous"
)

var ErrEmptyMessage = errors.New("empty message")

type Entry struct {
	Time int64  `json:"time"`
	User string `json:"user"`
	Msg  string `json:"msg"`
}

// Store appends and reads per-room logs under dir. Operations on the same
// room are serialized; a torn append would corrupt the trailing line.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[domain.RoomName]*sync.Mutex
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, locks: make(map[domain.RoomName]*sync.Mutex)}
}

// path assumes room has already been through domain.SanitizeRoomName, so
// the name is safe as a filename component.
func (s *Store) path(room domain.RoomName) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_chat.log", room))
}

func (s *Store) roomLock(room domain.RoomName) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[room]
	if !ok {
		l = &sync.Mutex{}
		s.locks[room] = l
	}
	return l
}

// Append stores one entry. The nickname is trimmed and truncated with a
// placeholder fallback; the message is HTML-escaped; an empty message is
// rejected.
func (s *Store) Append(room domain.RoomName, nickname, message string) (Entry, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Entry{}, ErrEmptyMessage
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = defaultNickname
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLen {
		nickname = string([]rune(nickname)[:maxNicknameLen])
	}

	entry := Entry{
		Time: time.Now().Unix(),
		User: nickname,
		Msg:  html.EscapeString(message),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal chat entry: %w", err)
	}

	l := s.roomLock(room)
	l.Lock()
	defer l.Unlock()

	f, err := os.OpenFile(s.path(room), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Entry{}, fmt.Errorf("open chat log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return Entry{}, fmt.Errorf("write chat log: %w", err)
	}
	return entry, nil
}

// ReadAll returns every stored entry for the room, oldest first. A room
// with no log yields an empty list; unparseable lines are skipped.
func (s *Store) ReadAll(room domain.RoomName) ([]Entry, error) {
	l := s.roomLock(room)
	l.Lock()
	defer l.Unlock()

	f, err := os.Open(s.path(room))
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("open chat log: %w", err)
	}
	defer f.Close()

	entries := []Entry{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			log.Debug().Err(err).Str("module", "chatlog").Str("room", string(room)).Msg("skipping bad log line")
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read chat log: %w", err)
	}
	return entries, nil
}
