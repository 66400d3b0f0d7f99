// Package workflow implements the catalog scenarios that need more than a
// single request: the borrow-and-bookmark workflow and the exhaustive
// search.
//
// # Borrow and bookmark
//
// BorrowBookmark moves through these states:
//
//	Searching -> FoundBook -> LoanCreated -> Bookmarking -> Revoked | RevokeSkipped -> Done
//
// Any step may end in Failed. Once the loan exists the cleanup step always
// runs, so a failed bookmark write is still followed by a revoke attempt when
// the borrow response carried a revoke link. Cleanup errors are joined with
// the earlier error and never replace it.
//
// Design decision: Each search attempt starts over from the first result
// page with a new term. Attempts share nothing, so a slow or empty result set
// for one term cannot stall the others.
//
// # Usage
//
//	searchURL, err := workflow.FindSearchLink(ctx, s, catalogURL)
//	...
//	result, err := workflow.NewBorrowBookmark(searchURL, corpus).Execute(ctx, s, doc)
package workflow
