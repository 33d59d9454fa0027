package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/object"
)

func newEngine(t *testing.T, src string) *Engine {
	t.Helper()
	e, err := NewEngine("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	require.NoError(t, e.LoadString(src))
	return e
}

func unit(entry uint32) *object.Unit {
	u := object.NewUnit()
	u.Create(1, entry, object.HighUnit)
	u.SetMap(0, 0)
	u.SetLevel(12)
	return u
}

func player(class uint8, gm bool) *object.Player {
	p := object.NewPlayer()
	p.Create(1)
	p.SetClass(class)
	if gm {
		p.SetGameMaster(object.SecGameMaster)
	}
	return p
}

func TestNeverVisibleHook(t *testing.T) {
	e := newEngine(t, `
register_object_script(100, {
    never_visible = function(obj) return obj.level > 10 end,
})`)
	assert.Equal(t, 1, e.HookCount())
	assert.True(t, e.IsNeverVisible(unit(100)))
	assert.False(t, e.IsNeverVisible(unit(101)), "no script for entry")
	assert.False(t, e.IsAlwaysVisibleFor(unit(100), player(1, false)), "hook not declared")
}

func TestAlwaysVisibleSeesSeer(t *testing.T) {
	e := newEngine(t, `
register_object_script(100, {
    always_visible = function(obj, seer) return seer.kind == "player" and seer.gm end,
})`)
	assert.True(t, e.IsAlwaysVisibleFor(unit(100), player(1, true)))
	assert.False(t, e.IsAlwaysVisibleFor(unit(100), player(1, false)))
}

func TestActivateToQuestNilIsUnhandled(t *testing.T) {
	e := newEngine(t, `
register_object_script(500, {
    activate_to_quest = function(obj, viewer)
        if viewer.class == 4 then return true end
        if viewer.class == 1 then return false end
        return nil
    end,
})`)
	g := object.NewGameObject()
	g.Create(1, 500, 0, 0, 0, 0, 0)

	active, handled := e.ActivateToQuest(g, player(4, false))
	assert.True(t, handled)
	assert.True(t, active)

	active, handled = e.ActivateToQuest(g, player(1, false))
	assert.True(t, handled)
	assert.False(t, active)

	_, handled = e.ActivateToQuest(g, player(2, false))
	assert.False(t, handled)
}

func TestScriptErrorIsUnhandled(t *testing.T) {
	e := newEngine(t, `
register_object_script(100, {
    never_visible = function(obj) error("boom") end,
})`)
	assert.False(t, e.IsNeverVisible(unit(100)))
}

func TestRegisterRejectsBadEntry(t *testing.T) {
	e := newEngine(t, "")
	assert.Error(t, e.LoadString(`register_object_script(0, {})`))
	assert.Error(t, e.LoadString(`register_object_script(1, 2)`))
}

func TestNewEngineLoadsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "objects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "objects", "a.lua"),
		[]byte(`register_object_script(7, { never_visible = function(o) return true end })`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not lua"), 0o644))

	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, 1, e.HookCount())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("this is not lua"), 0o644))
	_, err = NewEngine(dir, zap.NewNop())
	assert.Error(t, err)
}
