package lua

import (
	"fmt"

	glua "github.com/yuin/gopher-lua"
)

// ToGo converts a Lua value to a Go value. Tables with contiguous 1..n
// integer keys become []any, other tables become map[string]any. Functions
// and unknown types convert to nil. Circular tables are broken with nil.
func ToGo(lv glua.LValue) any {
	return toGo(lv, make(map[*glua.LTable]bool))
}

func toGo(lv glua.LValue, visited map[*glua.LTable]bool) any {
	switch v := lv.(type) {
	case glua.LBool:
		return bool(v)
	case glua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case glua.LString:
		return string(v)
	case *glua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	case *glua.LUserData:
		return v.Value
	default:
		return nil
	}
}

// tableToGo converts a table to a slice when it is a contiguous array and a
// map otherwise.
func tableToGo(t *glua.LTable, visited map[*glua.LTable]bool) any {
	length := t.Len()
	if length > 0 {
		count := 0
		contiguous := true
		t.ForEach(func(k, _ glua.LValue) {
			count++
			n, ok := k.(glua.LNumber)
			if !ok || float64(n) != float64(int(n)) || int(n) < 1 || int(n) > length {
				contiguous = false
			}
		})
		if contiguous && count == length {
			arr := make([]any, length)
			for i := 1; i <= length; i++ {
				arr[i-1] = toGo(t.RawGetInt(i), visited)
			}
			return arr
		}
	}

	m := make(map[string]any)
	t.ForEach(func(k, v glua.LValue) {
		var key string
		switch kv := k.(type) {
		case glua.LString:
			key = string(kv)
		case glua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = toGo(v, visited)
	})
	return m
}

// ToLua converts a Go value to a Lua value. Maps and slices convert to
// tables; unsupported types become their string representation.
func ToLua(l *glua.LState, v any) glua.LValue {
	switch val := v.(type) {
	case nil:
		return glua.LNil
	case bool:
		return glua.LBool(val)
	case int:
		return glua.LNumber(val)
	case int32:
		return glua.LNumber(val)
	case int64:
		return glua.LNumber(val)
	case uint:
		return glua.LNumber(val)
	case uint64:
		return glua.LNumber(val)
	case float32:
		return glua.LNumber(val)
	case float64:
		return glua.LNumber(val)
	case string:
		return glua.LString(val)
	case []byte:
		return glua.LString(val)
	case []any:
		t := l.NewTable()
		for _, item := range val {
			t.Append(ToLua(l, item))
		}
		return t
	case map[string]any:
		t := l.NewTable()
		for k, item := range val {
			l.SetField(t, k, ToLua(l, item))
		}
		return t
	case error:
		return glua.LString(val.Error())
	default:
		return glua.LString(fmt.Sprintf("%v", val))
	}
}
