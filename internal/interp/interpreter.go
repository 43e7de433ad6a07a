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

package interp

import (
	"fmt"
	"io"

	"github.com/EngFlow/liquidox/internal/ast"
	"github.com/EngFlow/liquidox/internal/diag"
	"github.com/EngFlow/liquidox/internal/resolver"
	"github.com/EngFlow/liquidox/internal/token"
)

// Interpreter walks a resolved AST against a mutable lexical environment.
// It is reused across REPL prompts: Globals and the current environment
// persist from one Run call to the next, and Distances accumulates rather
// than being replaced, mirroring the resolver's own persistence across
// prompts (SPEC_FULL.md §6.6).
type Interpreter struct {
	Globals   *Scope
	env       *Scope
	distances resolver.Distances
	stdout    io.Writer
}

// New returns an Interpreter with a global scope pre-populated with clock(),
// ready to run top-level statements.
func New(stdout io.Writer) *Interpreter {
	globals := NewScope(nil)
	globals.Define("clock", newClock())
	return &Interpreter{Globals: globals, env: globals, distances: resolver.Distances{}, stdout: stdout}
}

// Env returns the interpreter's current environment scope, for the
// `-dump=env` introspection flag.
func (i *Interpreter) Env() *Scope { return i.env }

// Run executes stmts against the interpreter's persistent environment,
// merging newDistances into the running distance map first.
func (i *Interpreter) Run(stmts []ast.Stmt, newDistances resolver.Distances) *diag.RuntimeError {
	for k, v := range newDistances {
		i.distances[k] = v
	}
	_, _, err := i.execBlockStmts(stmts)
	return err
}

func (i *Interpreter) execBlockStmts(stmts []ast.Stmt) (Value, bool, *diag.RuntimeError) {
	for _, stmt := range stmts {
		value, isReturn, err := i.execStmt(stmt)
		if err != nil {
			return nil, false, err
		}
		if isReturn {
			return value, true, nil
		}
	}
	return Nil, false, nil
}

func (i *Interpreter) execStmt(stmt ast.Stmt) (Value, bool, *diag.RuntimeError) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.eval(s.X)
		return Nil, false, err

	case *ast.PrintStmt:
		v, err := i.eval(s.X)
		if err != nil {
			return nil, false, err
		}
		fmt.Fprintln(i.stdout, v.Display())
		return Nil, false, nil

	case *ast.VarStmt:
		value := Value(Nil)
		if s.Init != nil {
			var err *diag.RuntimeError
			value, err = i.eval(s.Init)
			if err != nil {
				return nil, false, err
			}
		}
		i.env.Define(s.Name.Name, value)
		return Nil, false, nil

	case *ast.BlockStmt:
		enclosing := i.env
		i.env = NewScope(enclosing)
		value, isReturn, err := i.execBlockStmts(s.Stmts)
		i.env = enclosing
		return value, isReturn, err

	case *ast.IfStmt:
		cond, err := i.eval(s.Cond)
		if err != nil {
			return nil, false, err
		}
		if Truthy(cond) {
			return i.execStmt(s.Then)
		}
		if s.Else != nil {
			return i.execStmt(s.Else)
		}
		return Nil, false, nil

	case *ast.WhileStmt:
		for {
			cond, err := i.eval(s.Cond)
			if err != nil {
				return nil, false, err
			}
			if !Truthy(cond) {
				return Nil, false, nil
			}
			value, isReturn, err := i.execStmt(s.Body)
			if err != nil {
				return nil, false, err
			}
			if isReturn {
				return value, true, nil
			}
		}

	case *ast.FunctionStmt:
		fn := i.newFunction(s, false)
		i.env.Define(s.Name.Name, fn)
		return Nil, false, nil

	case *ast.ReturnStmt:
		value := Value(Nil)
		if s.Value != nil {
			var err *diag.RuntimeError
			value, err = i.eval(s.Value)
			if err != nil {
				return nil, false, err
			}
		}
		return value, true, nil

	case *ast.ClassStmt:
		return Nil, false, i.execClassStmt(s)

	default:
		return Nil, false, nil
	}
}

func (i *Interpreter) newFunction(fn *ast.FunctionStmt, isInitializer bool) *FunctionValue {
	params := make([]string, len(fn.Params))
	for idx, p := range fn.Params {
		params[idx] = p.Name
	}
	return &FunctionValue{
		Name:          fn.Name.Name,
		Params:        params,
		Body:          fn.Body,
		Closure:       i.env,
		IsInitializer: isInitializer,
	}
}

func (i *Interpreter) execClassStmt(s *ast.ClassStmt) *diag.RuntimeError {
	var superclass *ClassValue
	methodsEnv := i.env

	if s.Superclass != nil {
		superValue, err := i.eval(s.Superclass)
		if err != nil {
			return err
		}
		var ok bool
		superclass, ok = superValue.(*ClassValue)
		if !ok {
			return diag.NewRuntimeError("Superclass must be a class", s.Superclass.Name.Name, s.Superclass.Pos())
		}
		methodsEnv = NewScope(methodsEnv)
		methodsEnv.Define("super", superclass)
	}

	methods := make(map[string]*FunctionValue, len(s.Methods))
	enclosing := i.env
	i.env = methodsEnv
	for _, method := range s.Methods {
		methods[method.Name.Name] = i.newFunction(method, method.Name.Name == "init")
	}
	i.env = enclosing

	class := &ClassValue{Name: s.Name.Name, Superclass: superclass, Methods: methods}
	i.env.Define(s.Name.Name, class)
	return nil
}

// eval evaluates expr against the interpreter's current environment.
func (i *Interpreter) eval(expr ast.Expr) (Value, *diag.RuntimeError) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return literalValue(e.Value), nil

	case *ast.GroupingExpr:
		return i.eval(e.X)

	case *ast.VariableExpr:
		return i.lookup(e.Name)

	case *ast.AssignExpr:
		value, err := i.eval(e.Value)
		if err != nil {
			return nil, err
		}
		if distance, ok := i.distances[resolver.UseKey{Name: e.Name.Name, Pos: e.Name.Pos}]; ok {
			i.env.AssignAt(distance, e.Name.Name, value)
			return value, nil
		}
		if !i.env.AssignGlobal(e.Name.Name, value) {
			return nil, diag.NewRuntimeError("Undefined variable", e.Name.Name, e.Name.Pos)
		}
		return value, nil

	case *ast.UnaryExpr:
		return i.evalUnary(e)

	case *ast.BinaryExpr:
		return i.evalBinary(e)

	case *ast.LogicalExpr:
		return i.evalLogical(e)

	case *ast.CallExpr:
		return i.evalCall(e)

	case *ast.GetExpr:
		return i.evalGet(e)

	case *ast.SetExpr:
		return i.evalSet(e)

	case *ast.ThisExpr:
		distance, ok := i.distances[resolver.UseKey{Name: "this", Pos: e.At}]
		if !ok {
			return nil, diag.NewRuntimeError("Undefined variable", "this", e.At)
		}
		value, _ := i.env.GetAt(distance, "this")
		return value, nil

	case *ast.SuperExpr:
		return i.evalSuper(e)

	default:
		return nil, diag.NewRuntimeError("Invalid operand", "", expr.Pos())
	}
}

func literalValue(lit ast.Literal) Value {
	switch lit.Kind {
	case ast.LiteralBool:
		return BoolValue(lit.Bool)
	case ast.LiteralNumber:
		return NumberValue(lit.Num)
	case ast.LiteralString:
		return StringValue(lit.Str)
	default:
		return Nil
	}
}

func (i *Interpreter) lookup(name ast.Named) (Value, *diag.RuntimeError) {
	if distance, ok := i.distances[resolver.UseKey{Name: name.Name, Pos: name.Pos}]; ok {
		value, _ := i.env.GetAt(distance, name.Name)
		return value, nil
	}
	value, ok := i.env.GetGlobal(name.Name)
	if !ok {
		return nil, diag.NewRuntimeError("Undefined variable", name.Name, name.Pos)
	}
	return value, nil
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, *diag.RuntimeError) {
	right, err := i.eval(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case token.Minus:
		n, ok := right.(NumberValue)
		if !ok {
			return nil, diag.NewRuntimeError("Invalid operand", e.Op.String(), e.OpPos)
		}
		return -n, nil
	case token.Bang:
		return BoolValue(!Truthy(right)), nil
	default:
		return nil, diag.NewRuntimeError("Invalid operand", "", e.OpPos)
	}
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, *diag.RuntimeError) {
	left, err := i.eval(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.EqualEqual:
		return BoolValue(Equal(left, right)), nil
	case token.BangEqual:
		return BoolValue(!Equal(left, right)), nil
	case token.Plus:
		if l, ok := left.(NumberValue); ok {
			if r, ok := right.(NumberValue); ok {
				return l + r, nil
			}
		}
		if l, ok := left.(StringValue); ok {
			if r, ok := right.(StringValue); ok {
				return l + r, nil
			}
		}
		return nil, diag.NewRuntimeError("Invalid operands", "+", e.OpPos)
	}

	l, lok := left.(NumberValue)
	r, rok := right.(NumberValue)
	if !lok || !rok {
		return nil, diag.NewRuntimeError("Invalid operands", e.Op.String(), e.OpPos)
	}
	switch e.Op {
	case token.Minus:
		return l - r, nil
	case token.Star:
		return l * r, nil
	case token.Slash:
		return l / r, nil
	case token.Greater:
		return BoolValue(l > r), nil
	case token.GreaterEqual:
		return BoolValue(l >= r), nil
	case token.Less:
		return BoolValue(l < r), nil
	case token.LessEqual:
		return BoolValue(l <= r), nil
	default:
		return nil, diag.NewRuntimeError("Invalid operands", e.Op.String(), e.OpPos)
	}
}

func (i *Interpreter) evalLogical(e *ast.LogicalExpr) (Value, *diag.RuntimeError) {
	left, err := i.eval(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op == token.Or {
		if Truthy(left) {
			return left, nil
		}
	} else {
		if !Truthy(left) {
			return left, nil
		}
	}
	return i.eval(e.Right)
}

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, *diag.RuntimeError) {
	callee, err := i.eval(e.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(e.Args))
	for idx, arg := range e.Args {
		v, err := i.eval(arg)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}

	callable, ok := callee.(Callable)
	if !ok {
		return nil, diag.NewRuntimeError("Calling non-function/non-class", "", e.CalleePos)
	}
	if callable.Arity() != len(args) {
		return nil, diag.NewRuntimeError(fmt.Sprintf("Arity = %d", callable.Arity()), "", e.CalleePos)
	}
	switch c := callee.(type) {
	case *ClassValue:
		return i.instantiate(c, e.CalleePos, args)
	case *FunctionValue:
		return c.Call(i, e.CalleePos, args)
	case *NativeFunctionValue:
		return c.Call(i, e.CalleePos, args)
	default:
		return nil, diag.NewRuntimeError("Calling non-function/non-class", "", e.CalleePos)
	}
}

func (i *Interpreter) instantiate(class *ClassValue, pos token.Cursor, args []Value) (Value, *diag.RuntimeError) {
	instance := &InstanceValue{Class: class, Fields: map[string]Value{}}
	if init := class.findMethod("init"); init != nil {
		if _, err := init.bind(instance).Call(i, pos, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Call invokes f with args, running its body in a fresh scope chained to
// its closure. Falling off the end yields Nil, unless f is an initializer,
// in which case it always yields the bound "this".
func (f *FunctionValue) Call(i *Interpreter, pos token.Cursor, args []Value) (Value, *diag.RuntimeError) {
	callScope := NewScope(f.Closure)
	for idx, param := range f.Params {
		callScope.Define(param, args[idx])
	}

	enclosing := i.env
	i.env = callScope
	value, isReturn, err := i.execBlockStmts(f.Body)
	i.env = enclosing
	if err != nil {
		return nil, err
	}

	if f.IsInitializer {
		this, _ := f.Closure.GetAt(0, "this")
		return this, nil
	}
	if isReturn {
		return value, nil
	}
	return Nil, nil
}

func (i *Interpreter) evalGet(e *ast.GetExpr) (Value, *diag.RuntimeError) {
	obj, err := i.eval(e.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*InstanceValue)
	if !ok {
		return nil, diag.NewRuntimeError("Only instances have fields", e.Name.Name, e.Name.Pos)
	}
	if field, ok := instance.Fields[e.Name.Name]; ok {
		return field, nil
	}
	if method := instance.Class.findMethod(e.Name.Name); method != nil {
		return method.bind(instance), nil
	}
	return nil, diag.NewRuntimeError("Undefined property", e.Name.Name, e.Name.Pos)
}

func (i *Interpreter) evalSet(e *ast.SetExpr) (Value, *diag.RuntimeError) {
	obj, err := i.eval(e.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*InstanceValue)
	if !ok {
		return nil, diag.NewRuntimeError("Only instances have fields", e.Name.Name, e.Name.Pos)
	}
	value, err := i.eval(e.Value)
	if err != nil {
		return nil, err
	}
	instance.Fields[e.Name.Name] = value
	return value, nil
}

func (i *Interpreter) evalSuper(e *ast.SuperExpr) (Value, *diag.RuntimeError) {
	distance, ok := i.distances[resolver.UseKey{Name: "super", Pos: e.At}]
	if !ok {
		return nil, diag.NewRuntimeError("Undefined variable", "super", e.At)
	}
	superRaw, _ := i.env.GetAt(distance, "super")
	superclass, ok := superRaw.(*ClassValue)
	if !ok {
		return nil, diag.NewRuntimeError("Undefined variable", "super", e.At)
	}
	thisRaw, _ := i.env.GetAt(distance-1, "this")
	instance, ok := thisRaw.(*InstanceValue)
	if !ok {
		return nil, diag.NewRuntimeError("Undefined variable", "this", e.At)
	}
	method := superclass.findMethod(e.Method.Name)
	if method == nil {
		return nil, diag.NewRuntimeError("Undefined property", e.Method.Name, e.Method.Pos)
	}
	return method.bind(instance), nil
}
