package workflow

import "errors"

var (
	// ErrWorkflowExhausted is returned when no borrowable book was found
	// within the search attempt cap.
	ErrWorkflowExhausted = errors.New("unable to find a borrowable book")
	// ErrMissingAnnotationLink is returned when the loans feed has no
	// annotation service link, so bookmarks cannot be written.
	ErrMissingAnnotationLink = errors.New("loans feed has no annotation service link")
	// ErrMissingShelfLink is returned when the authentication document has no
	// shelf link.
	ErrMissingShelfLink = errors.New("authentication document has no shelf link")
	// ErrNoSearchLink is returned when the catalog root has no search link.
	ErrNoSearchLink = errors.New("catalog root has no search link")
)
