// Package script implements the engine's scripted units: small callable
// predicates, expressions and actions embedded in a compiled game
// definition. A unit is carried in the definition JSON as an object with a
// "$code" marker holding a Lua chunk; at call time it receives the fixed
// (state, Q) argument pair, where Q reads and writes qualities through the
// engine's accessor protocol.
package script

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Shopify/go-lua"
)

// codeKey marks an object in the game definition JSON as a scripted unit.
const codeKey = "$code"

// Unit is a single scripted predicate, expression or action. Only the source
// is stored; chunks are compiled by a Runner at call time.
type Unit struct {
	Source string
}

// UnmarshalJSON revives a {"$code": "..."} object into a Unit.
func (u *Unit) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	raw, ok := obj[codeKey]
	if !ok {
		return fmt.Errorf("scripted unit missing %q key", codeKey)
	}
	return json.Unmarshal(raw, &u.Source)
}

// MarshalJSON writes the unit back in its {"$code": "..."} form.
func (u Unit) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{codeKey: u.Source})
}

// Qualities is the engine-side accessor pair a unit's Q argument is bound
// to. Set must apply the engine's clamp/validate/signal protocol.
type Qualities interface {
	Get(id string) any
	Set(id string, value any)
}

// StateView is the read-only slice of game state exposed to units as the
// state argument.
type StateView struct {
	SceneID        string
	PrevSceneID    string
	PrevTopSceneID string
	RootSceneID    string
	JumpSceneID    string
	GameOver       bool
	Visits         map[string]int
}

// Runner owns a Lua state and executes units against it. A Runner is not
// safe for concurrent use; the engine's single-threaded contract covers it.
type Runner struct {
	l *lua.State
}

// NewRunner creates a runner with the Lua standard libraries opened. The
// game definition is trusted, as it is in the original runtime; callers that
// load untrusted definitions need their own sandboxing.
func NewRunner() *Runner {
	l := lua.NewState()
	lua.OpenLibraries(l)
	return &Runner{l: l}
}

// Call executes the unit with the (state, Q) contract and returns its first
// result converted to a Go value (nil, bool, float64 or string).
func (r *Runner) Call(u *Unit, view StateView, q Qualities) (any, error) {
	l := r.l
	base := l.Top()
	defer l.SetTop(base)

	wrapped := "local state, Q = ...\n" + u.Source
	if err := l.Load(strings.NewReader(wrapped), "=unit", ""); err != nil {
		return nil, fmt.Errorf("compile scripted unit: %w", err)
	}
	pushStateView(l, view)
	r.pushQualities(q)
	if err := l.ProtectedCall(2, 1, 0); err != nil {
		return nil, fmt.Errorf("run scripted unit: %w", err)
	}
	return toGo(l, -1), nil
}

// Check verifies the unit compiles without executing it. Used by load-time
// validation.
func Check(source string) error {
	l := lua.NewState()
	wrapped := "local state, Q = ...\n" + source
	if err := l.Load(strings.NewReader(wrapped), "=unit", ""); err != nil {
		return fmt.Errorf("compile scripted unit: %w", err)
	}
	return nil
}

func pushStateView(l *lua.State, view StateView) {
	l.NewTable()
	l.PushString(view.SceneID)
	l.SetField(-2, "sceneId")
	l.PushString(view.PrevSceneID)
	l.SetField(-2, "prevSceneId")
	l.PushString(view.PrevTopSceneID)
	l.SetField(-2, "prevTopSceneId")
	l.PushString(view.RootSceneID)
	l.SetField(-2, "rootSceneId")
	l.PushString(view.JumpSceneID)
	l.SetField(-2, "jumpSceneId")
	l.PushBoolean(view.GameOver)
	l.SetField(-2, "gameOver")
	l.NewTable()
	for id, count := range view.Visits {
		l.PushInteger(count)
		l.SetField(-2, id)
	}
	l.SetField(-2, "visits")
}

// pushQualities pushes a proxy table whose reads and writes are forwarded to
// the Qualities accessor, so Lua assignments like Q.health = 5 go through
// the engine's clamp/validate/signal protocol.
func (r *Runner) pushQualities(q Qualities) {
	l := r.l
	l.NewTable()
	l.NewTable()
	l.PushGoFunction(func(l *lua.State) int {
		id, _ := l.ToString(2)
		pushGo(l, q.Get(id))
		return 1
	})
	l.SetField(-2, "__index")
	l.PushGoFunction(func(l *lua.State) int {
		id, _ := l.ToString(2)
		q.Set(id, toGo(l, 3))
		return 0
	})
	l.SetField(-2, "__newindex")
	l.SetMetaTable(-2)
}

func pushGo(l *lua.State, value any) {
	switch v := value.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(v)
	case int:
		l.PushNumber(float64(v))
	case float64:
		l.PushNumber(v)
	case string:
		l.PushString(v)
	default:
		l.PushString(fmt.Sprint(v))
	}
}

func toGo(l *lua.State, index int) any {
	switch l.TypeOf(index) {
	case lua.TypeBoolean:
		return l.ToBoolean(index)
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		return n
	case lua.TypeString:
		s, _ := l.ToString(index)
		return s
	default:
		return nil
	}
}
