package store

import "context"

// Session identifies the signed-in admin on whose behalf a call is made.
type Session struct {
	UserID int
	Email  string
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || s.UserID == 0 {
		return Session{}, false
	}
	return s, true
}
