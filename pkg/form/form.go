// Package form validates share-link submissions and drives the widget panels
// through a lookup.
package form

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/denysvitali/share-viewer/internal/models"
	"github.com/denysvitali/share-viewer/pkg/lookup"
)

const (
	// MsgLinkRequired is reported when the link field is empty.
	MsgLinkRequired = "please enter a share link"
	// MsgUnrecognisedLink is reported when no key can be derived from the link.
	MsgUnrecognisedLink = "unrecognised share link format"
	// MsgLookupFailed is shown when a failure carries no message at all.
	MsgLookupFailed = "an error occurred while parsing the share link"
)

var shareKeyPattern = regexp.MustCompile(`(?i)s/([A-Za-z0-9_-]+)`)

// ValidationError is returned for input rejected before any lookup.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Lookuper fetches a listing for a share key.
type Lookuper interface {
	Lookup(ctx context.Context, key, password string) ([]models.ListingEntry, error)
}

// View receives panel updates from the controller.
type View interface {
	ShowLoading()
	HideLoading()
	ShowError(message string)
	ShowResult(entries []models.ListingEntry)
}

// ExtractKey derives the lookup key from a pasted link or a raw key.
// A link containing s/<key> yields the key; anything else is used verbatim.
func ExtractKey(input string) (string, error) {
	input = strings.TrimSpace(input)
	key := input
	if m := shareKeyPattern.FindStringSubmatch(input); m != nil {
		key = m[1]
	}
	// The pattern cannot capture an empty group, so this only fires for empty input.
	if key == "" {
		return "", &ValidationError{Message: MsgUnrecognisedLink}
	}
	return key, nil
}

// Controller runs submissions against a Lookuper and reports to a View.
type Controller struct {
	lookuper Lookuper
	logger   *logrus.Logger
}

// NewController creates a form controller.
func NewController(l Lookuper, logger *logrus.Logger) *Controller {
	return &Controller{lookuper: l, logger: logger}
}

// Submit handles one submit or refresh. The returned error is the failure
// already shown on the view: a *ValidationError or a *lookup.Error.
func (c *Controller) Submit(ctx context.Context, view View, shareURL, password string) error {
	shareURL = strings.TrimSpace(shareURL)
	password = strings.TrimSpace(password)

	view.ShowLoading()
	defer view.HideLoading()

	key, err := c.validate(shareURL)
	if err != nil {
		view.ShowError(errorMessage(err))
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"key":          key,
		"has_password": password != "",
	}).Info("Submitting share lookup")

	entries, err := c.lookuper.Lookup(ctx, key, password)
	if err != nil {
		var lerr *lookup.Error
		if !errors.As(err, &lerr) {
			err = &lookup.Error{Message: err.Error(), Err: err}
		}
		view.ShowError(errorMessage(err))
		return err
	}

	view.ShowResult(entries)
	return nil
}

func (c *Controller) validate(shareURL string) (string, error) {
	if shareURL == "" {
		return "", &ValidationError{Message: MsgLinkRequired}
	}
	return ExtractKey(shareURL)
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgLookupFailed
}
