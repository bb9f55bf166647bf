// Package datastore provides the small persistent key-value store branchtint
// keeps its overlay bookkeeping in. It abstracts away the physical storage
// (a badger database under the XDG state directory) behind a JSON-valued
// Get/Put/Delete API.
package datastore
