// Package opds parses the Atom/OPDS documents served by a circulation manager.
//
// Only the parts of a feed that drive navigation are kept: identifiers and
// links, at both feed and entry level. Documents are parsed once and never
// mutated afterwards.
//
// Design decision: We decode with encoding/xml rather than a feed library
// because:
//  1. OPDS acquisition links carry relations that generic feed libraries
//     flatten or drop (borrow, revoke, annotation service)
//  2. Only links and identifiers are needed, which is a few struct tags
//  3. golang.org/x/net/html/charset covers non UTF-8 encodings
package opds
