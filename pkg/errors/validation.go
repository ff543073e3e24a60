package errors

import (
	"mime"
	"net/mail"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxNameLength = 200
	maxTextLength = 2000
)

// ValidateProjectName validates a project name entered in the create form.
func ValidateProjectName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fieldErr("name", "project name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fieldErr("name", "project name too long (max %d characters)", maxNameLength)
	}
	if hasControl(name) {
		return fieldErr("name", "project name contains invalid control characters")
	}
	return nil
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeText trims a form text and turns CRLF and CR line breaks, as sent
// by browser textareas, into LF.
func NormalizeText(text string) string {
	return strings.TrimSpace(lineBreaks.Replace(text))
}

// ValidateText validates the required free-text field of a question or
// answer form. field names the form field in the returned error. Line breaks
// are checked after NormalizeText.
func ValidateText(field, text string) error {
	text = NormalizeText(text)
	if text == "" {
		return fieldErr(field, "%s is required", field)
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return fieldErr(field, "%s too long (max %d characters)", field, maxTextLength)
	}
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return fieldErr(field, "%s contains invalid control characters", field)
		}
	}
	return nil
}

// VideoContentType returns the MIME type for a video file name, derived from
// its extension, or "" if the extension is unknown.
func VideoContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if t, ok := videoTypes[ext]; ok {
		return t
	}
	return mime.TypeByExtension(ext)
}

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".ogv":  "video/ogg",
}

// ValidateVideoFile checks that an upload is a video. contentType may be
// empty, in which case it is derived from the file name. Only video/* MIME
// types are accepted.
func ValidateVideoFile(filename, contentType string) error {
	if strings.TrimSpace(filename) == "" {
		return fieldErr("video", "video file is required")
	}
	if contentType == "" {
		contentType = VideoContentType(filename)
	}
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(media, "video/") {
		return fieldErr("video", "please upload a valid video file")
	}
	return nil
}

// domainRegex matches a host name with an optional port, e.g. example.com or
// localhost:3000.
var domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*(:[0-9]{1,5})?$`)

// ValidateDomain validates an allowed embed domain. A scheme prefix is
// rejected: the backend stores bare hosts.
func ValidateDomain(domain string) error {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return fieldErr("domain", "domain is required")
	}
	if strings.Contains(domain, "://") {
		return fieldErr("domain", "enter the host only, without http:// or https://")
	}
	if len(domain) > 253 || !domainRegex.MatchString(domain) {
		return fieldErr("domain", "invalid domain: %q", domain)
	}
	return nil
}

// ValidateEmail validates the email field of the login and register forms.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fieldErr("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fieldErr("email", "invalid email address")
	}
	return nil
}

// ValidatePassword validates a password field. Only presence is checked; the
// backend owns the password policy.
func ValidatePassword(password string) error {
	if password == "" {
		return fieldErr("password", "password is required")
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}
	return nil
}

func hasControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
