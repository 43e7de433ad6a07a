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

// Package introspect renders pipeline intermediates (tokens, AST, resolver
// distances, a runtime environment frame) as generic structpb.Struct values
// and writes them as JSON, backing `liquidox -dump=tokens|ast|distances|env`.
//
// google.golang.org/protobuf has no wire messages to carry in this
// repository (there is no IDL, no RPC); it is repurposed here purely for
// structpb's dynamic JSON-shaped value model, the same "describe an
// arbitrary tree generically" job a real Lox implementation's
// `--tokens`/`--ast` debug dump needs, without hand-writing a one-off JSON
// schema.
//
// Tree-shaped fields (token lists, statement bodies, params, method lists,
// call arguments) are assembled with internal/collections' generic
// sequence helpers rather than hand-rolled for-loops.
package introspect

import (
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/EngFlow/liquidox/internal/ast"
	"github.com/EngFlow/liquidox/internal/collections"
	"github.com/EngFlow/liquidox/internal/interp"
	"github.com/EngFlow/liquidox/internal/resolver"
	"github.com/EngFlow/liquidox/internal/token"
)

// Tokens writes the token stream as a structpb-encoded JSON array to w.
func Tokens(w io.Writer, tokens []token.Token) error {
	items := collections.MapSlice(tokens, func(t token.Token) interface{} {
		return map[string]interface{}{
			"type":   t.Type.String(),
			"lexeme": t.Lexeme,
			"line":   float64(t.Pos.Line),
			"column": float64(t.Pos.Column),
		}
	})
	return write(w, map[string]interface{}{"tokens": items})
}

// Distances writes the resolver's lexical distance map as a structpb-encoded
// JSON array of (name, line, column, distance) entries to w.
func Distances(w io.Writer, d resolver.Distances) error {
	items := make([]interface{}, 0, len(d))
	for k, v := range d {
		items = append(items, map[string]interface{}{
			"name":     k.Name,
			"line":     float64(k.Pos.Line),
			"column":   float64(k.Pos.Column),
			"distance": float64(v),
		})
	}
	return write(w, map[string]interface{}{"distances": items})
}

// Env writes the bindings held directly in scope (not its ancestors) as a
// structpb-encoded JSON object to w.
func Env(w io.Writer, scope *interp.Scope) error {
	snapshot := scope.Snapshot()
	vars := make(map[string]interface{}, len(snapshot))
	for name, display := range snapshot {
		vars[name] = display
	}
	return write(w, map[string]interface{}{"env": vars})
}

// AST writes the parsed statement list as a structpb-encoded JSON array to w.
func AST(w io.Writer, stmts []ast.Stmt) error {
	items := collections.MapSlice(stmts, describeStmt)
	return write(w, map[string]interface{}{"ast": items})
}

func write(w io.Writer, fields map[string]interface{}) error {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("introspect: building struct: %w", err)
	}
	data, err := protojson.MarshalOptions{Indent: "  "}.Marshal(s)
	if err != nil {
		return fmt.Errorf("introspect: marshaling struct: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func pos(c token.Cursor) map[string]interface{} {
	return map[string]interface{}{"line": float64(c.Line), "column": float64(c.Column)}
}

func describeStmt(s ast.Stmt) interface{} {
	switch n := s.(type) {
	case *ast.ExprStmt:
		return map[string]interface{}{"kind": "Expr", "x": describeExpr(n.X)}
	case *ast.VarStmt:
		m := map[string]interface{}{"kind": "Var", "name": n.Name.Name, "pos": pos(n.Name.Pos)}
		if n.Init != nil {
			m["init"] = describeExpr(n.Init)
		}
		return m
	case *ast.PrintStmt:
		return map[string]interface{}{"kind": "Print", "x": describeExpr(n.X)}
	case *ast.BlockStmt:
		return map[string]interface{}{"kind": "Block", "body": collections.MapSlice(n.Stmts, describeStmt)}
	case *ast.IfStmt:
		m := map[string]interface{}{"kind": "If", "cond": describeExpr(n.Cond), "then": describeStmt(n.Then)}
		if n.Else != nil {
			m["else"] = describeStmt(n.Else)
		}
		return m
	case *ast.WhileStmt:
		return map[string]interface{}{"kind": "While", "cond": describeExpr(n.Cond), "body": describeStmt(n.Body)}
	case *ast.FunctionStmt:
		params := collections.MapSlice(n.Params, func(p ast.Named) interface{} { return p.Name })
		body := collections.MapSlice(n.Body, describeStmt)
		return map[string]interface{}{"kind": "Function", "name": n.Name.Name, "params": params, "body": body}
	case *ast.ReturnStmt:
		m := map[string]interface{}{"kind": "Return", "pos": pos(n.Keyword)}
		if n.Value != nil {
			m["value"] = describeExpr(n.Value)
		}
		return m
	case *ast.ClassStmt:
		methods := collections.MapSlice(n.Methods, func(method *ast.FunctionStmt) interface{} { return describeStmt(method) })
		m := map[string]interface{}{"kind": "Class", "name": n.Name.Name, "methods": methods}
		if n.Superclass != nil {
			m["superclass"] = n.Superclass.Name.Name
		}
		return m
	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

func describeExpr(e ast.Expr) interface{} {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return map[string]interface{}{"kind": "Literal", "value": literalDisplay(n.Value)}
	case *ast.VariableExpr:
		return map[string]interface{}{"kind": "Variable", "name": n.Name.Name, "pos": pos(n.Name.Pos)}
	case *ast.AssignExpr:
		return map[string]interface{}{"kind": "Assign", "name": n.Name.Name, "value": describeExpr(n.Value)}
	case *ast.UnaryExpr:
		return map[string]interface{}{"kind": "Unary", "op": n.Op.String(), "right": describeExpr(n.Right)}
	case *ast.BinaryExpr:
		return map[string]interface{}{"kind": "Binary", "op": n.Op.String(), "left": describeExpr(n.Left), "right": describeExpr(n.Right)}
	case *ast.LogicalExpr:
		return map[string]interface{}{"kind": "Logical", "op": n.Op.String(), "left": describeExpr(n.Left), "right": describeExpr(n.Right)}
	case *ast.CallExpr:
		args := collections.MapSlice(n.Args, describeExpr)
		return map[string]interface{}{"kind": "Call", "callee": describeExpr(n.Callee), "args": args}
	case *ast.GroupingExpr:
		return map[string]interface{}{"kind": "Grouping", "x": describeExpr(n.X)}
	case *ast.GetExpr:
		return map[string]interface{}{"kind": "Get", "object": describeExpr(n.Object), "name": n.Name.Name}
	case *ast.SetExpr:
		return map[string]interface{}{"kind": "Set", "object": describeExpr(n.Object), "name": n.Name.Name, "value": describeExpr(n.Value)}
	case *ast.ThisExpr:
		return map[string]interface{}{"kind": "This", "pos": pos(n.At)}
	case *ast.SuperExpr:
		return map[string]interface{}{"kind": "Super", "method": n.Method.Name, "pos": pos(n.At)}
	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

func literalDisplay(lit ast.Literal) interface{} {
	switch lit.Kind {
	case ast.LiteralBool:
		return lit.Bool
	case ast.LiteralNumber:
		return lit.Num
	case ast.LiteralString:
		return lit.Str
	default:
		return nil
	}
}
