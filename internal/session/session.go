package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	cookieName = "resume-session"
	keyID      = "sid"
)

// Store 基于签名 Cookie 的会话存储
type Store struct {
	cookies *sessions.CookieStore
}

// NewStore 创建会话存储，secret 为空时每次启动使用随机密钥
func NewStore(secret string) *Store {
	if secret == "" {
		secret = uuid.NewString()
	}
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: cs}
}

// State 单个请求的会话状态
type State struct {
	sess  *sessions.Session
	dirty bool
}

// Load 读取请求的会话；Cookie 无效时返回一个新会话
func (s *Store) Load(r *http.Request) *State {
	sess, err := s.cookies.Get(r, cookieName)
	if err != nil || sess == nil {
		sess = sessions.NewSession(s.cookies, cookieName)
		sess.Options = s.cookies.Options
		sess.IsNew = true
	}
	st := &State{sess: sess}
	if _, ok := sess.Values[keyID].(string); !ok {
		sess.Values[keyID] = uuid.NewString()
		st.dirty = true
	}
	return st
}

// ID 会话标识
func (st *State) ID() string {
	id, _ := st.sess.Values[keyID].(string)
	return id
}

// Get 读取字符串值，不存在时返回空串
func (st *State) Get(key string) string {
	v, _ := st.sess.Values[key].(string)
	return v
}

// Set 写入字符串值，需调用 Save 才会下发
func (st *State) Set(key, value string) {
	if st.Get(key) == value {
		return
	}
	st.sess.Values[key] = value
	st.dirty = true
}

// Save 有变化时写回 Cookie
func (st *State) Save(r *http.Request, w http.ResponseWriter) error {
	if !st.dirty {
		return nil
	}
	if err := st.sess.Save(r, w); err != nil {
		return err
	}
	st.dirty = false
	return nil
}
