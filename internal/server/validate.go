package server

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/studiowebux/taskdeck/internal/types"
)

// ValidationError is one entry of a 422 response, shaped like FastAPI's
type ValidationError struct {
	Type  string `json:"type"`
	Loc   []any  `json:"loc"`
	Msg   string `json:"msg"`
	Input any    `json:"input,omitempty"`
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindBool
)

type fieldRule struct {
	name     string
	kind     fieldKind
	required bool
	nullable bool
}

// taskFields lists the writable task fields in declaration order
var taskFields = []fieldRule{
	{name: "title", kind: kindString, required: true},
	{name: "start", kind: kindString, required: true},
	{name: "end", kind: kindString, required: true},
	{name: "importance", kind: kindInt, required: true},
	{name: "memo", kind: kindString, nullable: true},
	{name: "type", kind: kindString, required: true},
	{name: "done", kind: kindBool},
}

// decodeTaskBody parses a create/update body. Unknown fields are ignored.
func decodeTaskBody(body []byte) (types.TaskInput, []ValidationError) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		offset := int64(0)
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			offset = syntaxErr.Offset
		}
		return types.TaskInput{}, []ValidationError{{
			Type: "json_invalid",
			Loc:  []any{"body", offset},
			Msg:  "JSON decode error",
		}}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return types.TaskInput{}, []ValidationError{{
			Type:  "model_attributes_type",
			Loc:   []any{"body"},
			Msg:   "Input should be a valid dictionary or object to extract fields from",
			Input: raw,
		}}
	}

	var out types.TaskInput
	var errs []ValidationError
	for _, rule := range taskFields {
		value, present := obj[rule.name]
		if !present {
			if rule.required {
				errs = append(errs, ValidationError{
					Type:  "missing",
					Loc:   []any{"body", rule.name},
					Msg:   "Field required",
					Input: obj,
				})
			}
			continue
		}
		if value == nil && rule.nullable {
			continue
		}
		if e := setField(&out, rule, value); e != nil {
			errs = append(errs, *e)
		}
	}
	return out, errs
}

func setField(b *types.TaskInput, rule fieldRule, value any) *ValidationError {
	loc := []any{"body", rule.name}

	switch rule.kind {
	case kindString:
		s, ok := value.(string)
		if !ok {
			return &ValidationError{Type: "string_type", Loc: loc, Msg: "Input should be a valid string", Input: value}
		}
		switch rule.name {
		case "title":
			b.Title = s
		case "start":
			b.Start = s
		case "end":
			b.End = s
		case "memo":
			b.Memo = &s
		case "type":
			b.Type = s
		}

	case kindInt:
		n, ok := value.(float64)
		if !ok {
			return &ValidationError{Type: "int_type", Loc: loc, Msg: "Input should be a valid integer", Input: value}
		}
		if n != math.Trunc(n) {
			return &ValidationError{Type: "int_from_float", Loc: loc, Msg: "Input should be a valid integer, got a number with a fractional part", Input: value}
		}
		b.Importance = int(n)

	case kindBool:
		v, ok := value.(bool)
		if !ok {
			return &ValidationError{Type: "bool_type", Loc: loc, Msg: "Input should be a valid boolean", Input: value}
		}
		b.Done = v
	}
	return nil
}
