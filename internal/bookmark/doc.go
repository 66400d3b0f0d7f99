// Package bookmark models reading-position locators and the JSON-LD
// annotation envelope used to store bookmarks on a circulation manager.
//
// Every element is an immutable value whose wire form is produced by a pure
// function. The wire shapes are fixed by the server's annotation API and must
// not change.
package bookmark
