package registry

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/novalang/nova/values"
)

// JSONModule is the illustrative `nova.json` registration named in
// SPEC_FULL.md §6.4: it bridges ValueDomain to JSON text using
// tidwall/gjson (decode) and tidwall/sjson (encode), proving the
// registry mechanism end-to-end without building a full standard
// library (that content is explicitly out of scope per spec §1).
func JSONModule(target Target) {
	target.DefineBuiltin("json.parse", values.NewNativeFunction("json.parse", 1, jsonParse))
	target.DefineBuiltin("json.stringify", values.NewNativeFunction("json.stringify", 1, jsonStringify))
}

func jsonParse(host values.Host, args []*values.Value) (*values.Value, error) {
	if len(args) != 1 || !args[0].IsString() {
		return values.Null, nil
	}
	result := gjson.Parse(args[0].Str)
	return gjsonToValue(result), nil
}

func gjsonToValue(r gjson.Result) *values.Value {
	switch r.Type {
	case gjson.Null:
		return values.Null
	case gjson.True:
		return values.NewBool(true)
	case gjson.False:
		return values.NewBool(false)
	case gjson.Number:
		if r.Num == float64(int64(r.Num)) {
			return values.NewLong(int64(r.Num))
		}
		return values.NewDouble(r.Num)
	case gjson.String:
		return values.NewString(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			var elems []*values.Value
			r.ForEach(func(_, v gjson.Result) bool {
				elems = append(elems, gjsonToValue(v))
				return true
			})
			return values.NewList(elems...)
		}
		m := values.NewMap().AsMap()
		r.ForEach(func(k, v gjson.Result) bool {
			m.Put(values.NewString(k.Str), gjsonToValue(v))
			return true
		})
		return &values.Value{Kind: values.KindMap, Ref: m}
	default:
		return values.Null
	}
}

func jsonStringify(host values.Host, args []*values.Value) (*values.Value, error) {
	if len(args) != 1 {
		return values.NewString("null"), nil
	}
	out, err := valueToJSON("", args[0])
	if err != nil {
		return values.Null, err
	}
	return values.NewString(out), nil
}

func valueToJSON(path string, v *values.Value) (string, error) {
	doc := "{}"
	var err error
	switch v.Kind {
	case values.KindList:
		doc = "[]"
		for i, e := range v.AsList().Elements {
			doc, err = setJSONElement(doc, i, e)
			if err != nil {
				return "", err
			}
		}
		return doc, nil
	case values.KindMap:
		v.AsMap().Each(func(k, val *values.Value) {
			doc, err = sjson.Set(doc, k.CanonicalString(), jsonScalar(val))
		})
		return doc, err
	default:
		return sjsonRaw(jsonScalar(v))
	}
}

func setJSONElement(doc string, i int, v *values.Value) (string, error) {
	return sjson.Set(doc, strconv.Itoa(i), jsonScalar(v))
}

func jsonScalar(v *values.Value) interface{} {
	switch v.Kind {
	case values.KindNull, values.KindUnit:
		return nil
	case values.KindBool:
		return v.B
	case values.KindInt:
		return v.I
	case values.KindLong:
		return v.L
	case values.KindFloat:
		return v.F32
	case values.KindDouble:
		return v.F64
	case values.KindString:
		return v.Str
	default:
		return v.CanonicalString()
	}
}

func sjsonRaw(v interface{}) (string, error) {
	doc, err := sjson.Set("{}", "v", v)
	if err != nil {
		return "", err
	}
	return gjson.Get(doc, "v").Raw, nil
}

// TextModule is the illustrative `nova.text` registration: case folding
// backed by golang.org/x/text/cases, the locale-aware library already
// present in the dependency pack via CWBudde-go-dws.
func TextModule(target Target) {
	target.DefineBuiltin("text.upper", values.NewNativeFunction("text.upper", 1, textUpper))
	target.DefineBuiltin("text.lower", values.NewNativeFunction("text.lower", 1, textLower))
	target.DefineBuiltin("text.title", values.NewNativeFunction("text.title", 1, textTitle))
}

func textUpper(host values.Host, args []*values.Value) (*values.Value, error) {
	return textCase(args, cases.Upper(language.Und))
}

func textLower(host values.Host, args []*values.Value) (*values.Value, error) {
	return textCase(args, cases.Lower(language.Und))
}

func textTitle(host values.Host, args []*values.Value) (*values.Value, error) {
	return textCase(args, cases.Title(language.Und))
}

func textCase(args []*values.Value, caser cases.Caser) (*values.Value, error) {
	if len(args) != 1 || !args[0].IsString() {
		return values.NewString(""), nil
	}
	return values.NewString(caser.String(args[0].Str)), nil
}
