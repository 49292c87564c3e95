package chat

// ContextWindowSize bounds how many recent turns accompany each exchange.
const ContextWindowSize = 6

// HistoryEntry is the transport form of a turn inside an exchange request.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SelectContext keeps the most recent completed user and model turns, oldest
// first, capped at ContextWindowSize.
func SelectContext(turns []Turn) []HistoryEntry {
	qualifying := make([]Turn, 0, len(turns))
	for _, turn := range turns {
		if turn.Speaker != SpeakerUser && turn.Speaker != SpeakerModel {
			continue
		}
		if turn.Status != StatusComplete {
			continue
		}
		qualifying = append(qualifying, turn)
	}

	if len(qualifying) > ContextWindowSize {
		qualifying = qualifying[len(qualifying)-ContextWindowSize:]
	}

	history := make([]HistoryEntry, 0, len(qualifying))
	for _, turn := range qualifying {
		history = append(history, HistoryEntry{Role: string(turn.Speaker), Content: turn.Text})
	}
	return history
}

// TrimHistory returns the last ContextWindowSize entries of history.
func TrimHistory(history []HistoryEntry) []HistoryEntry {
	if len(history) > ContextWindowSize {
		history = history[len(history)-ContextWindowSize:]
	}
	return append([]HistoryEntry(nil), history...)
}
