package draft

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	"github.com/SscSPs/academy_sponsorship/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CookieStore keeps the draft in a signed, HttpOnly cookie. It is bound to one request: reads see
// the incoming cookie, or whatever this request already wrote.
type CookieStore struct {
	c          *gin.Context
	codec      *Codec
	cookieName string
	secure     bool

	written bool
	pending string // token written during this request, "" after Clear
}

// NewCookieStore binds a store to the current request.
func NewCookieStore(c *gin.Context, codec *Codec, cookieName string, secure bool) *CookieStore {
	return &CookieStore{c: c, codec: codec, cookieName: cookieName, secure: secure}
}

var _ domain.DraftStore = (*CookieStore)(nil)

func (s *CookieStore) Save(intent domain.DonationIntent) error {
	token, err := s.codec.Encode(intent)
	if err != nil {
		return err
	}
	s.setCookie(token, int(s.codec.Retention.Seconds()))
	s.written, s.pending = true, token
	return nil
}

// Load never fails: an unreadable cookie is reported as no draft.
func (s *CookieStore) Load() (domain.DonationIntent, bool) {
	token := s.pending
	if !s.written {
		raw, err := s.c.Cookie(s.cookieName)
		if err != nil {
			return nil, false
		}
		token = raw
	}
	if token == "" {
		return nil, false
	}

	intent, err := s.codec.Decode(token)
	if err != nil {
		middleware.GetLoggerFromCtx(s.c.Request.Context()).Debug("Ignoring unreadable donation draft", slog.String("error", err.Error()))
		return nil, false
	}
	return intent, true
}

func (s *CookieStore) Clear() error {
	s.setCookie("", -1)
	s.written, s.pending = true, ""
	return nil
}

func (s *CookieStore) setCookie(value string, maxAge int) {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(s.cookieName, value, maxAge, "/", "", s.secure, true)
}
