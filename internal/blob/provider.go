package blob

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nao1215/acctexport/internal/model"
)

// Scheme is the URL scheme of blob handles.
const Scheme = "blob"

// Blob errors.
var (
	// ErrBlobNotFound is returned when a handle is unknown or was already opened.
	ErrBlobNotFound = errors.New("blob not found or already consumed")

	// ErrForeignSession is returned when a handle was issued by another session.
	ErrForeignSession = errors.New("blob handle belongs to another session")

	// ErrInvalidHandle is returned when a handle cannot be parsed.
	ErrInvalidHandle = errors.New("invalid blob handle")
)

// Handle is a locator for a stored blob, formatted as
// "blob://<session>/<id>/<file name>".
type Handle string

// String returns the locator.
func (h Handle) String() string {
	return string(h)
}

// Blob is an opened artifact payload.
type Blob struct {
	Data     []byte
	MIMEType string
	FileName string
}

// Provider stores artifacts for a single session.
// It is safe for concurrent use.
type Provider struct {
	session string

	mu    sync.Mutex
	blobs map[string]*Blob
}

// NewProvider creates a provider with a fresh session id.
func NewProvider() *Provider {
	return &Provider{
		session: uuid.NewString(),
		blobs:   make(map[string]*Blob),
	}
}

// Session returns the session id of the provider.
func (p *Provider) Session() string {
	return p.session
}

// Put stores a copy of the artifact and returns its handle.
func (p *Provider) Put(a *model.Artifact) (Handle, error) {
	if a == nil {
		return "", errors.New("nil artifact")
	}

	data := make([]byte, len(a.Data))
	copy(data, a.Data)

	id := uuid.NewString()

	p.mu.Lock()
	p.blobs[id] = &Blob{
		Data:     data,
		MIMEType: a.MIMEType,
		FileName: a.FileName,
	}
	p.mu.Unlock()

	u := url.URL{
		Scheme: Scheme,
		Host:   p.session,
		Path:   "/" + id + "/" + a.FileName,
	}
	return Handle(u.String()), nil
}

// Open returns the blob behind h and forgets it.
// A second Open of the same handle returns ErrBlobNotFound.
func (p *Provider) Open(h Handle) (*Blob, error) {
	session, id, err := parseHandle(h)
	if err != nil {
		return nil, err
	}
	if session != p.session {
		return nil, ErrForeignSession
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.blobs[id]
	if !ok {
		return nil, ErrBlobNotFound
	}
	delete(p.blobs, id)
	return b, nil
}

// Pending returns the number of blobs that have not been opened yet.
func (p *Provider) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.blobs)
}

// Clear drops every blob that has not been opened yet.
func (p *Provider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blobs = make(map[string]*Blob)
}

// parseHandle extracts the session and blob id from a handle.
func parseHandle(h Handle) (string, string, error) {
	u, err := url.Parse(string(h))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidHandle, err)
	}
	if u.Scheme != Scheme || u.Host == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidHandle, h)
	}

	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) == 0 || parts[0] == "" {
		return "", "", fmt.Errorf("%w: missing blob id", ErrInvalidHandle)
	}
	return u.Host, parts[0], nil
}
