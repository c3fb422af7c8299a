package pipecheetah

// SessionListener receives session lifecycle callbacks. The owning
// component invokes them synchronously: OnClientConnected right after
// the transport session is accepted, OnClientDisconnected after the
// connection has ended. Nil funcs are skipped.
type SessionListener struct {
	OnClientConnected    func(sessionID string)
	OnClientDisconnected func(sessionID string)
}

func (l *SessionListener) Connected(sessionID string) {
	if l != nil && l.OnClientConnected != nil {
		l.OnClientConnected(sessionID)
	}
}

func (l *SessionListener) Disconnected(sessionID string) {
	if l != nil && l.OnClientDisconnected != nil {
		l.OnClientDisconnected(sessionID)
	}
}
