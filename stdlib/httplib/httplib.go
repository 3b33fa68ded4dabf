// Package httplib implements the `http` global table (get/post/patch)
// on top of net/http, grounded on original_source/src/teeny/glob.py's
// Http table (itself built on Python's requests). No repo in the
// retrieved pack offers a client more idiomatic than the standard
// library for a contract this thin (get/post/patch returning
// {status, headers, content, json?}), so net/http is the documented
// stdlib exception (see DESIGN.md).
package httplib

import (
	"bytes"
	"io"
	"net/http"
	"net/url"

	"github.com/IANYEYZ/teeny/runtime/value"
	"github.com/IANYEYZ/teeny/stdlib/jsonlib"
)

var client = &http.Client{}

// New builds the http table.
func New() *value.Value {
	t := value.NewTable()
	d := t.Table.Define
	d(value.String("get"), value.NewBuiltin("get", false, get))
	d(value.String("post"), value.NewBuiltin("post", false, post))
	d(value.String("patch"), value.NewBuiltin("patch", false, patch))
	return t
}

func get(args []*value.Value, env *value.Env) *value.Value {
	if len(args) == 0 || args[0].Tag != value.TagString {
		return value.Error("HTTPError", "get requires a url")
	}
	u := args[0].Str
	if len(args) > 1 && args[1].Tag == value.TagTable {
		q := url.Values{}
		for _, k := range args[1].Table.Keys() {
			v, _ := args[1].Table.Get(k)
			q.Set(value.ToString(k), value.ToString(v))
		}
		if encoded := q.Encode(); encoded != "" {
			u += "?" + encoded
		}
	}
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return value.Error("HTTPError", err.Error())
	}
	applyHeaders(req, headersArg(args, 2))
	return do(req)
}

func post(args []*value.Value, env *value.Env) *value.Value {
	if len(args) == 0 || args[0].Tag != value.TagString {
		return value.Error("HTTPError", "post requires a url")
	}
	var body io.Reader
	if len(args) > 1 {
		encoded := jsonlib.Encode(args[1])
		if encoded.IsError() {
			return encoded
		}
		body = bytes.NewBufferString(encoded.Str)
	}
	req, err := http.NewRequest(http.MethodPost, args[0].Str, body)
	if err != nil {
		return value.Error("HTTPError", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	applyHeaders(req, headersArg(args, 2))
	return do(req)
}

func patch(args []*value.Value, env *value.Env) *value.Value {
	if len(args) == 0 || args[0].Tag != value.TagString {
		return value.Error("HTTPError", "patch requires a url")
	}
	var body io.Reader
	if len(args) > 1 {
		encoded := jsonlib.Encode(args[1])
		if encoded.IsError() {
			return encoded
		}
		body = bytes.NewBufferString(encoded.Str)
	}
	req, err := http.NewRequest(http.MethodPatch, args[0].Str, body)
	if err != nil {
		return value.Error("HTTPError", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	applyHeaders(req, headersArg(args, 2))
	return do(req)
}

func headersArg(args []*value.Value, i int) *value.Value {
	if i < len(args) && args[i].Tag == value.TagTable {
		return args[i]
	}
	return nil
}

func applyHeaders(req *http.Request, headers *value.Value) {
	if headers == nil {
		return
	}
	for _, k := range headers.Table.Keys() {
		v, _ := headers.Table.Get(k)
		req.Header.Set(value.ToString(k), value.ToString(v))
	}
}

func do(req *http.Request) *value.Value {
	resp, err := client.Do(req)
	if err != nil {
		return value.Error("HTTPError", err.Error())
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return value.Error("HTTPError", err.Error())
	}

	headers := value.NewTable()
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers.Table.Define(value.String(k), value.String(v[0]))
		}
	}

	out := value.NewTable()
	out.Table.Define(value.String("status"), value.Number(float64(resp.StatusCode)))
	out.Table.Define(value.String("headers"), headers)
	out.Table.Define(value.String("content"), value.String(string(body)))
	if decoded := jsonlib.Decode(string(body)); !decoded.IsError() {
		out.Table.Define(value.String("json"), decoded)
	}
	return out
}
