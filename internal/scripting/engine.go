package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/object"
)

// Engine wraps a single gopher-lua VM holding per-entry content hooks.
// Partition ticks call into it from several workers, so every VM access
// holds mu.
//
// Scripts register hooks by template entry:
//
//	register_object_script(180001, {
//	    never_visible     = function(obj) return false end,
//	    always_visible    = function(obj, seer) return seer.gm end,
//	    activate_to_quest = function(obj, viewer) return viewer.class == 4 end,
//	})
//
// A hook that is missing, errors, or returns nil leaves the decision to
// the server.
type Engine struct {
	mu    sync.Mutex
	vm    *lua.LState
	hooks map[uint32]*lua.LTable
	log   *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from dir and its
// objects/ subdirectory. A missing directory loads nothing.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, hooks: make(map[uint32]*lua.LTable), log: log}
	vm.SetGlobal("register_object_script", vm.NewFunction(e.luaRegister))

	if scriptsDir == "" {
		return e, nil
	}
	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "objects")} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts %s: %w", dir, err)
		}
	}
	log.Info("腳本載入完成", zap.Int("物件腳本", len(e.hooks)))
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a script chunk, registering any hooks it declares.
func (e *Engine) LoadString(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vm.DoString(src)
}

// HookCount returns the number of entries with a registered script.
func (e *Engine) HookCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.hooks)
}

func (e *Engine) luaRegister(L *lua.LState) int {
	entry := L.CheckInt64(1)
	tbl := L.CheckTable(2)
	if entry <= 0 || entry > int64(^uint32(0)) {
		L.ArgError(1, "entry out of range")
		return 0
	}
	e.hooks[uint32(entry)] = tbl
	return 0
}

// IsNeverVisible implements detect.ContentRules.
func (e *Engine) IsNeverVisible(obj object.Entity) bool {
	v, ok := e.call(obj, "never_visible", obj)
	return ok && v
}

// IsAlwaysVisibleFor implements detect.ContentRules.
func (e *Engine) IsAlwaysVisibleFor(obj object.Entity, seer object.Entity) bool {
	v, ok := e.call(obj, "always_visible", obj, seer)
	return ok && v
}

// ActivateToQuest reports the script verdict on whether g is lit up for
// viewer. handled is false when no script decided.
func (e *Engine) ActivateToQuest(g *object.GameObject, viewer *object.Player) (active, handled bool) {
	return e.call(g, "activate_to_quest", g, viewer)
}

// call runs hook name of obj's entry with the given objects as arguments.
// ok is false when there is no such hook, it failed, or it returned nil.
func (e *Engine) call(obj object.Entity, name string, args ...object.Entity) (result, ok bool) {
	entry := obj.Base().Entry()
	if entry == 0 {
		return false, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	tbl := e.hooks[entry]
	if tbl == nil {
		return false, false
	}
	fn, isFn := e.vm.GetField(tbl, name).(*lua.LFunction)
	if !isFn {
		return false, false
	}

	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = e.objectTable(a)
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, largs...); err != nil {
		e.log.Error("lua 物件腳本執行失敗",
			zap.Uint32("entry", entry),
			zap.String("hook", name),
			zap.Error(err),
		)
		return false, false
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	if ret == lua.LNil {
		return false, false
	}
	return lua.LVAsBool(ret), true
}

// objectTable packs the fields scripts may inspect.
func (e *Engine) objectTable(obj object.Entity) *lua.LTable {
	b := obj.Base()
	t := e.vm.NewTable()
	t.RawSetString("low", lua.LNumber(b.GUID().Low()))
	t.RawSetString("entry", lua.LNumber(b.Entry()))
	t.RawSetString("kind", lua.LString(strings.ToLower(obj.Kind().String())))
	if w := b.ToWorld(); w != nil {
		t.RawSetString("map", lua.LNumber(w.MapID()))
		t.RawSetString("zone", lua.LNumber(w.ZoneID()))
		t.RawSetString("phase", lua.LNumber(w.PhaseMask()))
		t.RawSetString("x", lua.LNumber(w.X()))
		t.RawSetString("y", lua.LNumber(w.Y()))
		t.RawSetString("z", lua.LNumber(w.Z()))
	}
	if u := b.ToUnit(); u != nil {
		t.RawSetString("level", lua.LNumber(u.Level()))
		t.RawSetString("health", lua.LNumber(u.Health()))
		t.RawSetString("faction", lua.LNumber(u.Faction()))
	}
	if p := b.ToPlayer(); p != nil {
		t.RawSetString("class", lua.LNumber(p.Class()))
		t.RawSetString("team", lua.LNumber(p.Team()))
		t.RawSetString("gm", lua.LBool(p.IsGameMaster()))
	}
	return t
}

func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
