package form

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denysvitali/share-viewer/internal/models"
	"github.com/denysvitali/share-viewer/pkg/lookup"
	"github.com/denysvitali/share-viewer/pkg/tree"
)

type fakeLookuper struct {
	entries []models.ListingEntry
	err     error

	calls    int
	key      string
	password string
}

func (f *fakeLookuper) Lookup(_ context.Context, key, password string) ([]models.ListingEntry, error) {
	f.calls++
	f.key = key
	f.password = password
	return f.entries, f.err
}

// recordingView records the order of panel updates.
type recordingView struct {
	*PanelView
	events []string
}

func (v *recordingView) ShowLoading() {
	v.events = append(v.events, "loading")
	v.PanelView.ShowLoading()
}

func (v *recordingView) HideLoading() {
	v.events = append(v.events, "hide-loading")
	v.PanelView.HideLoading()
}

func (v *recordingView) ShowError(message string) {
	v.events = append(v.events, "error")
	v.PanelView.ShowError(message)
}

func (v *recordingView) ShowResult(entries []models.ListingEntry) {
	v.events = append(v.events, "result")
	v.PanelView.ShowResult(entries)
}

func newController(l Lookuper) *Controller {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewController(l, logger)
}

func TestExtractKey(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"https://example.com/s/AbC123-_?pwd=x", "AbC123-_"},
		{"rawkey42", "rawkey42"},
		{"  rawkey42  ", "rawkey42"},
		{"https://www.123pan.com/S/xyz-9", "xyz-9"},
		{"share s/k1 and s/k2", "k1"},
		{"https://example.com/d/abc", "https://example.com/d/abc"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ExtractKey(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractKey_Empty(t *testing.T) {
	_, err := ExtractKey("   ")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MsgUnrecognisedLink, verr.Message)
}

func TestSubmit_EmptyLink(t *testing.T) {
	l := &fakeLookuper{}
	view := &recordingView{PanelView: NewPanelView(nil)}

	err := newController(l).Submit(context.Background(), view, "   ", "pwd")

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MsgLinkRequired, verr.Error())
	assert.Equal(t, 0, l.calls)

	p := view.Panels()
	assert.False(t, p.Loading)
	assert.True(t, p.Error)
	assert.Equal(t, MsgLinkRequired, p.ErrorText)
	assert.False(t, p.Result)
	assert.Equal(t, []string{"loading", "error", "hide-loading"}, view.events)
}

func TestSubmit_Success(t *testing.T) {
	l := &fakeLookuper{entries: []models.ListingEntry{
		models.NewFolder("docs", models.NewFile("a.pdf", "1 MB", "https://cdn.example.com/a")),
	}}
	view := &recordingView{PanelView: NewPanelView(nil)}

	err := newController(l).Submit(context.Background(), view, " https://example.com/s/AbC123-_?pwd=x ", " secret ")
	require.NoError(t, err)

	assert.Equal(t, "AbC123-_", l.key)
	assert.Equal(t, "secret", l.password)

	p := view.Panels()
	assert.False(t, p.Loading)
	assert.False(t, p.Error)
	assert.True(t, p.Result)
	assert.Equal(t, []string{"loading", "result", "hide-loading"}, view.events)

	tr := view.Display().Tree()
	require.Len(t, tr.Roots, 1)
	assert.Equal(t, "docs", tr.Roots[0].Name)
}

func TestSubmit_RawKey(t *testing.T) {
	l := &fakeLookuper{entries: []models.ListingEntry{}}
	err := newController(l).Submit(context.Background(), NewPanelView(nil), "rawkey42", "")
	require.NoError(t, err)
	assert.Equal(t, "rawkey42", l.key)
	assert.Equal(t, "", l.password)
}

func TestSubmit_EmptyListing(t *testing.T) {
	l := &fakeLookuper{entries: []models.ListingEntry{}}
	view := NewPanelView(nil)

	require.NoError(t, newController(l).Submit(context.Background(), view, "key", ""))

	p := view.Panels()
	assert.True(t, p.Result)
	assert.False(t, p.Error)
	assert.True(t, view.Display().Empty())
}

func TestSubmit_LookupError(t *testing.T) {
	l := &fakeLookuper{err: &lookup.Error{Code: 403, Message: "wrong password"}}
	view := &recordingView{PanelView: NewPanelView(nil)}

	err := newController(l).Submit(context.Background(), view, "key", "bad")

	var lerr *lookup.Error
	require.True(t, errors.As(err, &lerr))
	p := view.Panels()
	assert.True(t, p.Error)
	assert.Equal(t, "wrong password", p.ErrorText)
	assert.False(t, p.Result)
	assert.False(t, p.Loading)
	assert.Equal(t, []string{"loading", "error", "hide-loading"}, view.events)
}

func TestSubmit_PlainErrorBecomesLookupError(t *testing.T) {
	l := &fakeLookuper{err: errors.New("connection refused")}
	view := NewPanelView(nil)

	err := newController(l).Submit(context.Background(), view, "key", "")

	var lerr *lookup.Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "connection refused", view.Panels().ErrorText)
}

func TestSubmit_EmptyErrorMessage(t *testing.T) {
	l := &fakeLookuper{err: &lookup.Error{}}
	view := NewPanelView(nil)

	_ = newController(l).Submit(context.Background(), view, "key", "")
	assert.Equal(t, MsgLookupFailed, view.Panels().ErrorText)
}

func TestSubmit_ClearsPreviousState(t *testing.T) {
	display := tree.NewDisplay()
	view := NewPanelView(display)

	failing := newController(&fakeLookuper{err: &lookup.Error{Code: 500, Message: "boom"}})
	_ = failing.Submit(context.Background(), view, "key", "")
	require.True(t, view.Panels().Error)

	ok := newController(&fakeLookuper{entries: []models.ListingEntry{models.NewFile("a", "", "u")}})
	require.NoError(t, ok.Submit(context.Background(), view, "key", ""))

	p := view.Panels()
	assert.False(t, p.Error)
	assert.Empty(t, p.ErrorText)
	assert.True(t, p.Result)
	assert.Same(t, display, view.Display())
}

func TestSubmit_AgainstLookupService(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pwd") != "right" {
			_, _ = io.WriteString(w, `{"code":403,"message":"wrong password"}`)
			return
		}
		_, _ = io.WriteString(w, `{"code":200,"data":[]}`)
	}))
	defer ts.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := NewController(lookup.New(lookup.Config{Endpoint: ts.URL}, logger), logger)

	view := NewPanelView(nil)
	require.NoError(t, c.Submit(context.Background(), view, "https://example.com/s/abc", "right"))
	assert.True(t, view.Panels().Result)
	assert.False(t, view.Panels().Error)
	assert.True(t, view.Display().Empty())

	view = NewPanelView(nil)
	require.Error(t, c.Submit(context.Background(), view, "https://example.com/s/abc", "wrong"))
	assert.Equal(t, "wrong password", view.Panels().ErrorText)
	assert.False(t, view.Panels().Result)
}

func TestPanelsResponse(t *testing.T) {
	p := Panels{Error: true, ErrorText: "x"}
	r := p.Response()
	assert.True(t, r.Error)
	assert.Equal(t, "x", r.ErrorText)
	assert.False(t, r.Result)
}
