package identity

import (
	"testing"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestProvider_SetUser(t *testing.T) {
	p := New("alice")
	var got []string
	unsubscribe := p.Subscribe(func(userID string) { got = append(got, "first:"+userID) })
	p.Subscribe(func(userID string) { got = append(got, "second:"+userID) })

	p.SetUser("alice") // unchanged, no notification
	p.SetUser("bob")
	unsubscribe()
	unsubscribe()
	p.SetUser("")

	assert.Equal(t, "", p.CurrentUser())
	assert.Equal(t, []string{"first:bob", "second:bob", "second:"}, got)
}

func TestProvider_SubscriberMaySubscribe(t *testing.T) {
	p := New("")
	calls := 0
	p.Subscribe(func(string) {
		calls++
		p.Subscribe(func(string) { calls++ })
	})

	p.SetUser("alice")
	assert.Equal(t, 1, calls)

	p.SetUser("bob")
	assert.Equal(t, 3, calls)
}

func TestResolve(t *testing.T) {
	cfg := domain.NewDefaultConfig()
	cfg.User.ID = "from-config"

	tests := []struct {
		name string
		flag string
		env  string
		cfg  *domain.Config
		want string
	}{
		{name: "flag wins", flag: "from-flag", env: "from-env", cfg: cfg, want: "from-flag"},
		{name: "env over config", env: "from-env", cfg: cfg, want: "from-env"},
		{name: "config", cfg: cfg, want: "from-config"},
		{name: "anonymous", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvUser, tt.env)
			assert.Equal(t, tt.want, Resolve(tt.flag, tt.cfg))
		})
	}
}
