package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	pidCookieName   = "pid"
	adminCookieName = "admin_session"
	clientIDHeader  = "X-Client-Id"
)

// readSessionPID returns the pid carried by the session cookie, nil when the
// cookie is absent or unparsable
func readSessionPID(r *http.Request) *int {
	c, err := r.Cookie(pidCookieName)
	if err != nil {
		return nil
	}
	pid, err := strconv.Atoi(c.Value)
	if err != nil || pid < 0 {
		return nil
	}
	return &pid
}

// writeSessionPID persists the resolved pid as the client's session token
func writeSessionPID(w http.ResponseWriter, pid int, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     pidCookieName,
		Value:    strconv.Itoa(pid),
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// readClientID extracts the client-supplied correlation id: header first, then
// query, then the request body's cid field
func readClientID(r *http.Request, bodyCid string) string {
	if cid := strings.TrimSpace(r.Header.Get(clientIDHeader)); cid != "" {
		return cid
	}
	if cid := strings.TrimSpace(r.URL.Query().Get("cid")); cid != "" {
		return cid
	}
	return strings.TrimSpace(bodyCid)
}
