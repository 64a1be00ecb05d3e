package loader_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"datarec/core/loader"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  int
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(app fiber.Router) error {
	s.loaded++
	if s.err != nil {
		return s.err
	}
	app.Get("/"+s.name, func(c *fiber.Ctx) error { return c.SendString(s.name) })
	return nil
}

func TestManagerLoadAll(t *testing.T) {
	on := &stubFeature{name: "on", enabled: true}
	off := &stubFeature{name: "off"}

	mgr := loader.NewManager(nil)
	mgr.Register(on)
	mgr.Register(off)

	app := fiber.New()
	require.NoError(t, mgr.LoadAll(app))
	assert.Equal(t, 1, on.loaded)
	assert.Equal(t, 0, off.loaded)

	resp, err := app.Test(httptest.NewRequest("GET", "/on", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/off", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestManagerRegisterReplaces(t *testing.T) {
	mgr := loader.NewManager(nil)
	first := &stubFeature{name: "recon", enabled: true}
	second := &stubFeature{name: "recon", enabled: true}
	mgr.Register(first)
	mgr.Register(second)

	require.Len(t, mgr.Features(), 1)
	assert.Same(t, second, mgr.Features()[0])
}

func TestManagerLoadAllError(t *testing.T) {
	boom := &stubFeature{name: "boom", enabled: true, err: errors.New("broken")}
	after := &stubFeature{name: "after", enabled: true}

	mgr := loader.NewManager(nil)
	mgr.Register(boom)
	mgr.Register(after)

	err := mgr.LoadAll(fiber.New())
	assert.ErrorContains(t, err, "failed to load feature boom")
	assert.Equal(t, 0, after.loaded)
}
