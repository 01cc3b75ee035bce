// Package generichttp defines interfaces for generic devices
// and plumbing to wrap them in an HTTP interface.
package generichttp

import (
	"encoding/json"
	"fmt"
	"go/types"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi"
)

// MethodPath is an HTTP method and URL path pair, the key of a RouteTable.
type MethodPath struct {
	Method string
	Path   string
}

// RouteTable maps method/path pairs to handlers.
type RouteTable map[MethodPath]http.HandlerFunc

// Endpoints returns the routes in the table as "METHOD /path" strings, sorted.
func (rt RouteTable) Endpoints() []string {
	routes := make([]string, 0, len(rt))
	for mp := range rt {
		routes = append(routes, mp.Method+" "+mp.Path)
	}
	sort.Strings(routes)
	return routes
}

// Bind attaches every route in the table to a chi router.
func (rt RouteTable) Bind(r chi.Router) {
	for mp, handler := range rt {
		r.Method(mp.Method, mp.Path, handler)
	}
}

// HTTPer is a type which has a route table and can be bound to a router.
type HTTPer interface {
	RT() RouteTable
}

// SubMuxSanitize prepares a config URL for mounting, "omc/pol" => "/omc/pol".
func SubMuxSanitize(s string) string {
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	s = strings.TrimSuffix(s, "/*")
	return strings.TrimSuffix(s, "/")
}

// FloatT is a struct with a single f64 field for JSON requests and responses.
type FloatT struct {
	F64 float64 `json:"f64"`
}

// IntT is a struct with a single int field.
type IntT struct {
	Int int `json:"int"`
}

// StrT is a struct with a single str field.
type StrT struct {
	Str string `json:"str"`
}

// BoolT is a struct with a single bool field.
type BoolT struct {
	Bool bool `json:"bool"`
}

// HumanPayload is a struct that can hold any one of the primitive types used
// over the HTTP interface.  The T field indicates which member is live.
type HumanPayload struct {
	T      types.BasicKind
	Bool   bool
	Int    int
	Float  float64
	String string
}

// EncodeAndRespond writes the payload to w as the matching single-field JSON
// object.
func (hp HumanPayload) EncodeAndRespond(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var (
		obj interface{}
		err error
	)
	switch hp.T {
	case types.Bool:
		obj = BoolT{Bool: hp.Bool}
	case types.Int:
		obj = IntT{Int: hp.Int}
	case types.Float64:
		obj = FloatT{F64: hp.Float}
	case types.String:
		obj = StrT{Str: hp.String}
	default:
		err = fmt.Errorf("unsupported payload kind %v", hp.T)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(obj)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
