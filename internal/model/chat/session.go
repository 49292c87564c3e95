package chat

import "time"

// Session describes a conversation hosted by the server on behalf of a browser.
type Session struct {
	ID          string    `json:"id"`
	UserName    string    `json:"userName"`
	PersonaName string    `json:"personaName"`
	Traits      []string  `json:"traits"`
	CreatedAt   time.Time `json:"createdAt"`
}
