// Package registry simulates a reading app opening for the first time
// against a library registry: it fetches the library catalog list and then
// every library's authentication document.
package registry
