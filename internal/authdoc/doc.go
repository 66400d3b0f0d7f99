// Package authdoc interprets a circulation manager's authentication document
// and logs a virtual user in.
//
// An authentication document is a JSON object that names the catalog, shelf
// and user profile URLs of a library and lists the authentication strategies
// the library accepts. Parse turns it into a Document; Login drives the whole
// handshake starting from the catalog root feed.
//
// Design decision: Strategies are modelled as the Authentication interface
// with one implementation per type (currently Basic). The Document keys
// strategies by AuthType so Login can pick a supported one without type
// switches, and new strategies only add a type and a case in Parse.
package authdoc
