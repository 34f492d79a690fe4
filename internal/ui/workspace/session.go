package workspace

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// SessionName is the cookie name.
const SessionName = "datapulse"

const sessionIDKey = "id"

// NewCookieStore returns the cookie store used for session ids.
func NewCookieStore(secret []byte) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.MaxAge(86400 * 30) // 30 days
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// SessionID returns the caller's session id, issuing one if the request has
// none. It may write a Set-Cookie header, so it must run before the response
// body is started.
func SessionID(w http.ResponseWriter, r *http.Request, store sessions.Store) (string, error) {
	sess, err := store.Get(r, SessionName)
	if err != nil {
		// A cookie signed with an old secret decodes as an error plus a
		// fresh session; start over with that one.
		sess, _ = store.New(r, SessionName)
	}

	if id, ok := sess.Values[sessionIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	sess.Values[sessionIDKey] = id
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return id, nil
}
