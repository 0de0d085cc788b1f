package services

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/storage"
	"github.com/AnshRaj112/socialapp-backend/internal/store/memstore"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// pngBytes sniffs as image/png.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type sentMail struct {
	to, subject, html string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *captureMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, html})
	return nil
}

// codeMails returns the mails sent to email, oldest first.
func (m *captureMailer) codeMails(email string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, s := range m.sent {
		if s.to == email {
			out = append(out, s)
		}
	}
	return out
}

var codeRe = regexp.MustCompile(`>(\d{4})</div>`)

// lastCode extracts the code from the newest mail sent to email.
func (m *captureMailer) lastCode(t *testing.T, email string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].to == email {
			match := codeRe.FindStringSubmatch(m.sent[i].html)
			require.Len(t, match, 2, "mail carries no code")
			return match[1]
		}
	}
	t.Fatalf("no mail sent to %s", email)
	return ""
}

type testEnv struct {
	store    *memstore.Store
	assets   *storage.Memory
	sessions *memstore.Sessions
	otps     *memstore.OTPs
	mailer   *captureMailer
	otp      *OTPService
	gate     *Gate
	engine   *Engine
	auth     *AuthService
}

func newTestEnv(t *testing.T, opts EngineOptions) *testEnv {
	t.Helper()
	log := zap.NewNop()
	env := &testEnv{
		store:    memstore.New(),
		assets:   storage.NewMemory(),
		sessions: memstore.NewSessions(),
		otps:     memstore.NewOTPs(),
		mailer:   &captureMailer{},
	}
	env.otp = NewOTPService(env.otps, env.mailer, 5*time.Minute, log)
	env.otp.cost = bcrypt.MinCost
	env.gate = NewGate("test-secret", time.Hour, env.sessions, env.store.Users())
	env.engine = NewEngine(env.store, env.assets, log, opts)
	env.auth = NewAuthService(env.store, env.assets, env.otp, env.gate, env.engine, log)
	return env
}

func strict() EngineOptions { return EngineOptions{OwnershipStrict: true} }

// user inserts a verified user directly, skipping password hashing.
func (e *testEnv) user(t *testing.T, username, fullname string) *models.User {
	t.Helper()
	u := models.NewUser(username, fullname, username+"@x.com", "unused", time.Now())
	u.IsVerified = true
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return u
}

func (e *testEnv) reload(t *testing.T, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := e.store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (e *testEnv) post(t *testing.T, owner primitive.ObjectID, text string) *PostView {
	t.Helper()
	p, err := e.engine.CreatePost(context.Background(), owner, text, nil)
	require.NoError(t, err)
	return p
}

func (e *testEnv) loadPost(t *testing.T, id primitive.ObjectID) *models.Post {
	t.Helper()
	p, err := e.store.Posts().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func findPost(t *testing.T, feed []PostView, id primitive.ObjectID) PostView {
	t.Helper()
	for _, p := range feed {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("post %s not in feed", id.Hex())
	return PostView{}
}
