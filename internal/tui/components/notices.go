package components

import (
	"strings"

	"github.com/rgehrsitz/dpesim/internal/bridge"
	"github.com/rgehrsitz/dpesim/internal/tui/tuistyles"
)

// NoticeLog keeps the most recent notices for the status area.
type NoticeLog struct {
	notices []bridge.Notice
	limit   int
}

// NewNoticeLog keeps at most limit notices.
func NewNoticeLog(limit int) *NoticeLog {
	return &NoticeLog{limit: max(limit, 1)}
}

// Add appends a notice, dropping the oldest beyond the limit.
func (l *NoticeLog) Add(n bridge.Notice) {
	l.notices = append(l.notices, n)
	if len(l.notices) > l.limit {
		l.notices = l.notices[len(l.notices)-l.limit:]
	}
}

// Notices returns the kept notices, oldest first.
func (l *NoticeLog) Notices() []bridge.Notice {
	return append([]bridge.Notice(nil), l.notices...)
}

// Clear drops every notice.
func (l *NoticeLog) Clear() { l.notices = nil }

// Render returns one styled line per notice.
func (l *NoticeLog) Render() string {
	lines := make([]string, len(l.notices))
	for i, n := range l.notices {
		switch n.Level {
		case bridge.NoticeError:
			lines[i] = tuistyles.ErrorStyle.Render("✗ " + n.Message)
		case bridge.NoticeWarn:
			lines[i] = tuistyles.WarnStyle.Render("! " + n.Message)
		default:
			lines[i] = tuistyles.InfoStyle.Render("✓ " + n.Message)
		}
	}
	return strings.Join(lines, "\n")
}
