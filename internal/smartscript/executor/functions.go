// File: functions.go
// Title: SmartScript Built-in Functions
// Description: Table of the @functions available in echo tags: math, stack
//              manipulation, mime type and parameter access.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-08
// Modified: 2026-03-09
//
// Change History:
// - 2026-03-08 v0.1.0: Initial function table
// - 2026-03-09 v0.1.1: decfmt

package executor

import (
	"math"
	"sort"

	"github.com/msto63/smartweb/internal/smartscript/value"
	"github.com/msto63/smartweb/internal/web"
)

type builtin func(in *interpreter) error

// builtins is the fixed function table. Argument order follows the push
// order in the script: getters take (name default), setters (value name).
var builtins = map[string]builtin{
	"sin":         fnSin,
	"decfmt":      fnDecfmt,
	"dup":         fnDup,
	"swap":        fnSwap,
	"setMimeType": fnSetMimeType,
	"paramGet": paramGetter(func(rc *web.RequestContext, name string) (string, bool) {
		return rc.Parameter(name)
	}),
	"pparamGet": paramGetter(func(rc *web.RequestContext, name string) (string, bool) {
		return rc.PersistentParameter(name)
	}),
	"tparamGet": paramGetter(func(rc *web.RequestContext, name string) (string, bool) {
		return rc.TemporaryParameter(name)
	}),
	"pparamSet": paramSetter(func(rc *web.RequestContext, name, v string) {
		rc.SetPersistentParameter(name, v)
	}),
	"tparamSet": paramSetter(func(rc *web.RequestContext, name, v string) {
		rc.SetTemporaryParameter(name, v)
	}),
	"pparamDel": paramDeleter(func(rc *web.RequestContext, name string) {
		rc.RemovePersistentParameter(name)
	}),
	"tparamDel": paramDeleter(func(rc *web.RequestContext, name string) {
		rc.RemoveTemporaryParameter(name)
	}),
}

// Functions returns the sorted names of the builtin functions
func Functions() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fnSin replaces x (degrees) with its sine
func fnSin(in *interpreter) error {
	x, err := in.pop()
	if err != nil {
		return err
	}
	n, err := value.Coerce(x.Value())
	if err != nil {
		return err
	}
	deg, ok := n.(float64)
	if !ok {
		deg = float64(n.(int32))
	}
	in.push(value.New(math.Sin(deg * math.Pi / 180)))
	return nil
}

// fnDecfmt pops a pattern such as "#,##0.00" and a number, pushes the text
func fnDecfmt(in *interpreter) error {
	pattern, err := in.pop()
	if err != nil {
		return err
	}
	x, err := in.pop()
	if err != nil {
		return err
	}
	text, err := FormatDecimal(x.Value(), pattern.String())
	if err != nil {
		return err
	}
	in.push(value.New(text))
	return nil
}

func fnDup(in *interpreter) error {
	top, err := in.peek()
	if err != nil {
		return err
	}
	in.push(top.Copy())
	return nil
}

func fnSwap(in *interpreter) error {
	a, err := in.pop()
	if err != nil {
		return err
	}
	b, err := in.pop()
	if err != nil {
		return err
	}
	in.push(a)
	in.push(b)
	return nil
}

func fnSetMimeType(in *interpreter) error {
	mime, err := in.pop()
	if err != nil {
		return err
	}
	return in.engine.rc.SetMimeType(mime.String())
}

func paramGetter(get func(rc *web.RequestContext, name string) (string, bool)) builtin {
	return func(in *interpreter) error {
		def, err := in.pop()
		if err != nil {
			return err
		}
		name, err := in.pop()
		if err != nil {
			return err
		}
		if v, ok := get(in.engine.rc, name.String()); ok {
			in.push(value.New(v))
		} else {
			in.push(def)
		}
		return nil
	}
}

func paramSetter(set func(rc *web.RequestContext, name, v string)) builtin {
	return func(in *interpreter) error {
		name, err := in.pop()
		if err != nil {
			return err
		}
		v, err := in.pop()
		if err != nil {
			return err
		}
		set(in.engine.rc, name.String(), v.String())
		return nil
	}
}

func paramDeleter(del func(rc *web.RequestContext, name string)) builtin {
	return func(in *interpreter) error {
		name, err := in.pop()
		if err != nil {
			return err
		}
		del(in.engine.rc, name.String())
		return nil
	}
}
