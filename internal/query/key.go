// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import "net/url"

// Key identifies one cached response: a resource name plus the canonical
// encoding of its filter parameters. Equal filters give equal keys.
type Key struct {
	Resource string
	Params   string
}

// NewKey builds a key from a resource and its query values. url.Values.Encode
// sorts by name, so field order in the filter does not matter.
func NewKey(resource string, params url.Values) Key {
	return Key{Resource: resource, Params: params.Encode()}
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Resource
	}
	return k.Resource + "?" + k.Params
}
