// Package ident приводит идентификаторы каталога к единой строковой форме.
//
// Один и тот же ID приходит в разных представлениях: строка, число, байты ObjectID,
// обёртка с методом Hex, объект {"id": ...} или байты, сериализованные как
// {"0": 101, "1": 33, ...}. Normalize возвращает для всех них одну и ту же строку.
package ident

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// objectObject — то, что отдаёт toString() у сериализованного JS-объекта без своего toString.
const objectObject = "[object Object]"

// maxDepth ограничивает рекурсию по вложенным {"id": {...}}.
const maxDepth = 8

type hexer interface {
	Hex() string
}

// Normalize возвращает каноническую строку идентификатора. Никогда не паникует;
// нераспознанные формы приводятся через fmt.Sprint.
func Normalize(v any) string {
	return normalize(v, 0)
}

// Equal сравнивает два идентификатора после нормализации.
func Equal(a, b any) bool {
	return Normalize(a) == Normalize(b)
}

// NormalizeAll нормализует список, отбрасывая пустые значения и дубликаты с сохранением порядка.
func NormalizeAll(values []any) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		id := Normalize(v)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalize(v any, depth int) string {
	if depth > maxDepth {
		return fmt.Sprint(v)
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ""
	}

	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return canonicalNumber(t.String())
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return formatFloat(float64(t))
	case float64:
		return formatFloat(t)
	case []byte:
		return hex.EncodeToString(t)
	case primitive.Binary:
		return hex.EncodeToString(t.Data)
	case primitive.ObjectID:
		return t.Hex()
	case hexer:
		return strings.ToLower(t.Hex())
	case map[string]any:
		if s, ok := normalizeMap(t, depth); ok {
			return s
		}
		return fmt.Sprint(v)
	case fmt.Stringer:
		if s := t.String(); s != objectObject {
			return strings.TrimSpace(s)
		}
	}

	return normalizeReflect(v, depth)
}

// normalizeReflect разбирает указатели, структуры с полем ID и мапы с другими типами значений.
func normalizeReflect(v any, depth int) string {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return normalize(rv.Elem().Interface(), depth+1)
	case reflect.Struct:
		for _, name := range []string{"ID", "Id"} {
			f := rv.FieldByName(name)
			if f.IsValid() && f.CanInterface() {
				return normalize(f.Interface(), depth+1)
			}
		}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = iter.Value().Interface()
			}
			if s, ok := normalizeMap(m, depth); ok {
				return s
			}
		}
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hex.EncodeToString(b)
		}
	}

	return fmt.Sprint(v)
}

// normalizeMap обрабатывает объектные формы: {"id": x}, {"_id": x}, {"$oid": x},
// {"buffer": {...}}, {"type": "Buffer", "data": [...]} и {"0": b0, "1": b1, ...}.
func normalizeMap(m map[string]any, depth int) (string, bool) {
	for _, key := range []string{"id", "_id", "$oid"} {
		if inner, ok := m[key]; ok && inner != nil {
			return normalize(inner, depth+1), true
		}
	}

	if inner, ok := m["buffer"]; ok {
		if b, ok := toBytes(inner); ok {
			return hex.EncodeToString(b), true
		}
	}

	if typ, _ := m["type"].(string); typ == "Buffer" {
		if b, ok := toBytes(m["data"]); ok {
			return hex.EncodeToString(b), true
		}
	}

	if b, ok := indexedBytes(m); ok {
		return hex.EncodeToString(b), true
	}

	return "", false
}

// toBytes восстанавливает байты из []byte, массива чисел или мапы с индексами.
func toBytes(v any) ([]byte, bool) {
	switch t := v.(type) {
	case []byte:
		return t, true
	case []any:
		b := make([]byte, 0, len(t))
		for _, x := range t {
			c, ok := toByte(x)
			if !ok {
				return nil, false
			}
			b = append(b, c)
		}
		return b, true
	case map[string]any:
		return indexedBytes(t)
	}
	return nil, false
}

// indexedBytes собирает байты из мапы вида {"0": 101, "1": 33}. Ключи обязаны быть
// ровно 0..n-1, значения — целыми в диапазоне байта.
func indexedBytes(m map[string]any) ([]byte, bool) {
	if len(m) == 0 {
		return nil, false
	}

	type entry struct {
		idx int
		val byte
	}

	entries := make([]entry, 0, len(m))
	for k, v := range m {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 || strconv.Itoa(idx) != k {
			return nil, false
		}
		b, ok := toByte(v)
		if !ok {
			return nil, false
		}
		entries = append(entries, entry{idx: idx, val: b})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })

	out := make([]byte, len(entries))
	for i, en := range entries {
		if en.idx != i {
			return nil, false
		}
		out[i] = en.val
	}
	return out, true
}

func toByte(v any) (byte, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case uint8:
		return t, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}

	if n < 0 || n > 255 || n != float64(int(n)) {
		return 0, false
	}
	return byte(n), true
}

func canonicalNumber(s string) string {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return formatFloat(f)
	}
	return strings.TrimSpace(s)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
