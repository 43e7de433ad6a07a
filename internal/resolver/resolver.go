// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package resolver performs the single static pre-pass that binds every
// variable reference to the lexical distance at which its declaration
// lives. It is the one non-trivial static analysis in the system.
//
// It is grounded on a "closure-based recursive walk carrying a stack of
// scope state" shape: a recursive walk over the syntax tree threads a
// mutable stack of scopes, pushing and popping as it descends into nested
// blocks, functions and classes, the same shape used elsewhere in the
// source corpus for threading a mutable environment through a recursive
// walk over nested conditional branches.
package resolver

import (
	"github.com/EngFlow/liquidox/internal/ast"
	"github.com/EngFlow/liquidox/internal/diag"
	"github.com/EngFlow/liquidox/internal/token"
)

// UseKey is the unique identity of a variable *use* in the AST: a name
// together with its source position, since a name may be used many times.
type UseKey struct {
	Name string
	Pos  token.Cursor
}

// Distances maps each local variable use to the number of enclosing scopes
// to walk from the use site before reaching the scope holding the binding.
// Globals are absent from the map.
type Distances map[UseKey]int

type functionKind int

const (
	noFunction functionKind = iota
	inFunction
	inMethod
	inInitializer
)

type classKind int

const (
	noClass classKind = iota
	inClass
	inSubclass
)

// Resolver holds the scope stack and function/class context used while
// walking the program. It can be reused across REPL prompts: globals
// declared in one prompt remain declared (but untracked, per spec) for the
// next.
type Resolver struct {
	scopes       []map[string]bool
	distances    Distances
	functionKind functionKind
	classKind    classKind
}

// New returns a Resolver ready to resolve top-level statements against an
// empty (global) scope.
func New() *Resolver {
	return &Resolver{distances: Distances{}}
}

// Resolve walks stmts, recording the lexical distance of every local
// variable use into the Resolver's Distances map, or returns the first
// ResolveError encountered.
func (r *Resolver) Resolve(stmts []ast.Stmt) (Distances, *diag.ResolveError) {
	if err := r.stmts(stmts); err != nil {
		return nil, err
	}
	return r.distances, nil
}

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, map[string]bool{}) }
func (r *Resolver) endScope()   { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) top() map[string]bool {
	if len(r.scopes) == 0 {
		return nil
	}
	return r.scopes[len(r.scopes)-1]
}

// declare marks name as present but not yet initialized in the current
// scope. At global scope (no scopes pushed) this is a no-op: globals are
// not tracked and never reported as already declared.
func (r *Resolver) declare(name ast.Named) *diag.ResolveError {
	scope := r.top()
	if scope == nil {
		return nil
	}
	if _, exists := scope[name.Name]; exists {
		return diag.NewResolveError("Variable already declared", name.Name, name.Pos)
	}
	scope[name.Name] = false
	return nil
}

func (r *Resolver) define(name string) {
	if scope := r.top(); scope != nil {
		scope[name] = true
	}
}

// resolveLocal records the distance from pos to the scope holding name, if
// any local scope holds it; otherwise name is left absent (global).
func (r *Resolver) resolveLocal(name string, pos token.Cursor) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.distances[UseKey{Name: name, Pos: pos}] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) stmts(stmts []ast.Stmt) *diag.ResolveError {
	for _, stmt := range stmts {
		if err := r.stmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) stmt(stmt ast.Stmt) *diag.ResolveError {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		return r.expr(s.X)

	case *ast.PrintStmt:
		return r.expr(s.X)

	case *ast.VarStmt:
		if err := r.declare(s.Name); err != nil {
			return err
		}
		if s.Init != nil {
			if err := r.expr(s.Init); err != nil {
				return err
			}
		}
		r.define(s.Name.Name)
		return nil

	case *ast.BlockStmt:
		r.beginScope()
		err := r.stmts(s.Stmts)
		r.endScope()
		return err

	case *ast.IfStmt:
		if err := r.expr(s.Cond); err != nil {
			return err
		}
		if err := r.stmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return r.stmt(s.Else)
		}
		return nil

	case *ast.WhileStmt:
		if err := r.expr(s.Cond); err != nil {
			return err
		}
		return r.stmt(s.Body)

	case *ast.FunctionStmt:
		if err := r.declare(s.Name); err != nil {
			return err
		}
		r.define(s.Name.Name)
		return r.function(s, inFunction)

	case *ast.ReturnStmt:
		if r.functionKind == noFunction {
			return diag.NewResolveError("Top level return", "return", s.Keyword)
		}
		if s.Value != nil {
			if r.functionKind == inInitializer {
				return diag.NewResolveError("Can't return value from init", "return", s.Keyword)
			}
			return r.expr(s.Value)
		}
		return nil

	case *ast.ClassStmt:
		return r.class(s)

	default:
		return nil
	}
}

func (r *Resolver) function(fn *ast.FunctionStmt, kind functionKind) *diag.ResolveError {
	enclosingFunction := r.functionKind
	r.functionKind = kind
	defer func() { r.functionKind = enclosingFunction }()

	r.beginScope()
	defer r.endScope()

	for _, param := range fn.Params {
		if err := r.declare(param); err != nil {
			return err
		}
		r.define(param.Name)
	}
	return r.stmts(fn.Body)
}

func (r *Resolver) class(c *ast.ClassStmt) *diag.ResolveError {
	enclosingClass := r.classKind
	r.classKind = inClass
	defer func() { r.classKind = enclosingClass }()

	if err := r.declare(c.Name); err != nil {
		return err
	}
	r.define(c.Name.Name)

	if c.Superclass != nil {
		if c.Superclass.Name.Name == c.Name.Name {
			return diag.NewResolveError("Can't inherit from self", c.Name.Name, c.Superclass.Name.Pos)
		}
		if err := r.expr(c.Superclass); err != nil {
			return err
		}
		r.classKind = inSubclass
		r.beginScope()
		r.top()["super"] = true
		defer r.endScope()
	}

	r.beginScope()
	r.top()["this"] = true
	defer r.endScope()

	for _, method := range c.Methods {
		kind := inMethod
		if method.Name.Name == "init" {
			kind = inInitializer
		}
		if err := r.function(method, kind); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) expr(expr ast.Expr) *diag.ResolveError {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return nil

	case *ast.VariableExpr:
		if scope := r.top(); scope != nil {
			if defined, declared := scope[e.Name.Name]; declared && !defined {
				return diag.NewResolveError("Can't read local variable in its own initializer", e.Name.Name, e.Name.Pos)
			}
		}
		r.resolveLocal(e.Name.Name, e.Name.Pos)
		return nil

	case *ast.AssignExpr:
		if err := r.expr(e.Value); err != nil {
			return err
		}
		r.resolveLocal(e.Name.Name, e.Name.Pos)
		return nil

	case *ast.UnaryExpr:
		return r.expr(e.Right)

	case *ast.BinaryExpr:
		if err := r.expr(e.Left); err != nil {
			return err
		}
		return r.expr(e.Right)

	case *ast.LogicalExpr:
		if err := r.expr(e.Left); err != nil {
			return err
		}
		return r.expr(e.Right)

	case *ast.CallExpr:
		if err := r.expr(e.Callee); err != nil {
			return err
		}
		for _, arg := range e.Args {
			if err := r.expr(arg); err != nil {
				return err
			}
		}
		return nil

	case *ast.GroupingExpr:
		return r.expr(e.X)

	case *ast.GetExpr:
		return r.expr(e.Object)

	case *ast.SetExpr:
		if err := r.expr(e.Value); err != nil {
			return err
		}
		return r.expr(e.Object)

	case *ast.ThisExpr:
		if r.classKind == noClass {
			return diag.NewResolveError("Used this out of class", "this", e.At)
		}
		r.resolveLocal("this", e.At)
		return nil

	case *ast.SuperExpr:
		switch r.classKind {
		case noClass:
			return diag.NewResolveError("Used super out of class", "super", e.At)
		case inClass:
			return diag.NewResolveError("Used super in class without superclass", "super", e.At)
		}
		r.resolveLocal("super", e.At)
		return nil

	default:
		return nil
	}
}
