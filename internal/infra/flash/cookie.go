package flash

import (
	"github.com/bytedance/sonic"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// NewCookieSessionStore returns the signed cookie backend used by the
// sessions middleware.
func NewCookieSessionStore(secret string) sessions.Store {
	s := cookie.NewStore([]byte(secret))
	s.Options(sessions.Options{Path: "/", HttpOnly: true})
	return s
}

// CookieStore keeps messages in the request session. The router must install
// sessions.Sessions before any handler that uses it.
type CookieStore struct{}

func NewCookieStore() *CookieStore { return &CookieStore{} }

func (CookieStore) Add(c *gin.Context, category, text string) error {
	raw, err := sonic.MarshalString(Message{Category: category, Text: text})
	if err != nil {
		return err
	}
	s := sessions.Default(c)
	s.AddFlash(raw)
	return s.Save()
}

func (CookieStore) Take(c *gin.Context) ([]Message, error) {
	s := sessions.Default(c)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	if err := s.Save(); err != nil {
		return nil, err
	}

	out := make([]Message, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var m Message
		if err := sonic.UnmarshalString(str, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
