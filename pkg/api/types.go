package api

import (
	"io"
	"time"
)

// User is an authenticated console user.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Registration is the payload of the sign-up form. New accounts require a
// registration code handed out by the operators.
type Registration struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FullName         string `json:"full_name"`
	RegistrationCode string `json:"registration_code"`
}

// EmbedInfo is the embeddable widget snippet of a project and the domains
// allowed to host it.
type EmbedInfo struct {
	EmbedCode      string   `json:"embed_code"`
	AllowedDomains []string `json:"allowed_domains"`
}

// Upload is a file sent in a multipart form.
type Upload struct {
	Filename    string
	ContentType string // video/* type; derived from Filename when empty
	Body        io.Reader
}

// NodeInput is the question form: a new question below ParentID, or the
// root question when ParentID is empty.
type NodeInput struct {
	Question      string
	ParentID      string
	IsSubQuestion bool
}

// AnswerInput is the answer form. Video is optional.
type AnswerInput struct {
	Text  string
	Video *Upload
}
