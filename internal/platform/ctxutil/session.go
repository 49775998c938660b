package ctxutil

import "context"

type sessionDataKey struct{}

// SessionData identifies the assistant session a request is acting on.
type SessionData struct {
	SessionID string
	Channel   string
}

func WithSessionData(ctx context.Context, sd *SessionData) context.Context {
	return context.WithValue(ctx, sessionDataKey{}, sd)
}

func GetSessionData(ctx context.Context) *SessionData {
	if ctx == nil {
		return nil
	}
	if sd, ok := ctx.Value(sessionDataKey{}).(*SessionData); ok {
		return sd
	}
	return nil
}
