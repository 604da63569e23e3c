package api

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Message field names.
const (
	FieldStatus       = "status"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldFullName     = "full_name"
	FieldUserID       = "user_id"
	FieldAccessToken  = "access_token"
	FieldRefreshToken = "refresh_token"
	FieldTable        = "table"
	FieldID           = "id"
	FieldRow          = "row"
	FieldOp           = "op"
	FieldURL          = "url"
)

// NewMessage builds a Struct from a map of plain Go values.
func NewMessage(fields map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return s, nil
}

// String returns a string field of m, or "" if absent or not a string.
func String(m *structpb.Struct, key string) string {
	if m == nil {
		return ""
	}
	v, ok := m.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

// Object returns a nested object field of m as a plain map, or nil.
func Object(m *structpb.Struct, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, ok := m.GetFields()[key]
	if !ok || v.GetStructValue() == nil {
		return nil
	}
	return v.GetStructValue().AsMap()
}

// NewList encodes rows as a ListValue of objects.
func NewList(rows []map[string]any) (*structpb.ListValue, error) {
	values := make([]any, len(rows))
	for i, r := range rows {
		values[i] = r
	}
	l, err := structpb.NewList(values)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return l, nil
}

// Objects decodes a ListValue of objects. Non-object items are skipped.
func Objects(l *structpb.ListValue) []map[string]any {
	out := make([]map[string]any, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		if s := v.GetStructValue(); s != nil {
			out = append(out, s.AsMap())
		}
	}
	return out
}
