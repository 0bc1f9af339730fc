package world

import (
	"strings"
	"time"
	"unicode"

	"github.com/mattn/go-runewidth"

	"horde-hunt/server/internal/net/proto"
)

const emoteDuration = 3 * time.Second

var allowedEmotes = map[string]bool{
	"👍":  true,
	"👎":  true,
	"😂":  true,
	"😱":  true,
	"💀":  true,
	"🔥":  true,
	"❤️": true,
	"🎯":  true,
}

// sanitizeText strips control characters, collapses whitespace and truncates
// to maxWidth terminal cells.
func sanitizeText(s string, maxWidth int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == unicode.ReplacementChar {
			return -1
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if maxWidth > 0 && runewidth.StringWidth(cleaned) > maxWidth {
		cleaned = strings.TrimSpace(runewidth.Truncate(cleaned, maxWidth, ""))
	}
	return cleaned
}

// Chat broadcasts a sanitised message. Muted players and a muted room are
// silently refused.
func (w *World) Chat(id, message string, now time.Time) error {
	p, ok := w.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	w.Touch(id, now)
	if !w.chatEnabled || p.ChatMuted {
		return ErrChatDisabled
	}
	limit := w.cfg.Chat.MaxLength
	if limit <= 0 {
		limit = 140
	}
	text := sanitizeText(message, limit)
	if text == "" {
		return ErrEmptyMessage
	}
	w.broadcast(proto.Chat{Type: proto.TypeChat, From: id, Name: p.Name, Message: text})
	return nil
}

// ToggleChat flips the player's own mute. When the hunter passes an explicit
// disabled flag the whole room is switched instead.
func (w *World) ToggleChat(id string, disabled *bool) error {
	p, ok := w.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if disabled != nil && p.Hunter() {
		w.chatEnabled = !*disabled
		if w.chatEnabled {
			w.notice("Chat enabled")
		} else {
			w.notice("Chat disabled")
		}
		return nil
	}
	p.ChatMuted = !p.ChatMuted
	return nil
}

// ChatEnabled reports the room-wide chat switch.
func (w *World) ChatEnabled() bool {
	return w.chatEnabled
}

// Emote shows an allow-listed symbol above the player for a few seconds.
func (w *World) Emote(id, symbol string, now time.Time) error {
	p, ok := w.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if !allowedEmotes[symbol] {
		return ErrInvalidEmote
	}
	p.Emote = symbol
	p.EmoteUntil = now.Add(emoteDuration)
	return nil
}
