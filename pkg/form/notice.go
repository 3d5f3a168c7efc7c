package form

import "time"

// DefaultNoticeTTL is how long a notice stays visible.
const DefaultNoticeTTL = 6 * time.Second

// NoticeKind distinguishes success and error banners.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSuccess:
		return "success"
	case NoticeError:
		return "error"
	default:
		return "none"
	}
}

// Notice is a transient banner. The presentation layer shows it while Active
// reports true; a newer notice replaces it.
type Notice struct {
	Kind      NoticeKind
	Message   string
	ExpiresAt time.Time
}

// NewNotice builds a notice that expires ttl after now.
func NewNotice(kind NoticeKind, message string, now time.Time, ttl time.Duration) Notice {
	return Notice{
		Kind:      kind,
		Message:   message,
		ExpiresAt: now.Add(ttl),
	}
}

// Active reports whether the notice should still be displayed at now.
func (n Notice) Active(now time.Time) bool {
	return n.Kind != NoticeNone && now.Before(n.ExpiresAt)
}
