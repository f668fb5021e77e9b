package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Subject is the directory's view of a caller.
type Subject struct {
	ID       string
	Email    string
	FullName string
	IsActive bool
}

type Credentials struct {
	Email    string
	Password string
	// FullName is only read when a subject is created.
	FullName string
}

// Directory stands in for the external identity store. The verifier only
// needs the stable subject identifier it returns.
type Directory interface {
	// LookupOrCreate resolves the subject for credentials, creating it on first sight.
	LookupOrCreate(ctx context.Context, creds Credentials) (*Subject, error)
	// Lookup resolves a subject already asserted by a valid token.
	Lookup(ctx context.Context, email string) (*Subject, error)
}

// NewDirectory returns the implementation named by kind.
func NewDirectory(kind string) (Directory, error) {
	switch kind {
	case "", "passthrough":
		return PassthroughDirectory{}, nil
	case "memory":
		return NewMemoryDirectory(bcrypt.DefaultCost), nil
	}
	return nil, fmt.Errorf("auth: unknown directory %q", kind)
}

func subjectID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(email))).String()
}

// PassthroughDirectory trusts the caller: credentials are assumed to be
// checked upstream and nothing is stored.
type PassthroughDirectory struct{}

func (PassthroughDirectory) LookupOrCreate(_ context.Context, creds Credentials) (*Subject, error) {
	if creds.Email == "" {
		return nil, ErrInvalidCredentials
	}
	return &Subject{
		ID:       subjectID(creds.Email),
		Email:    creds.Email,
		FullName: creds.FullName,
		IsActive: true,
	}, nil
}

func (PassthroughDirectory) Lookup(_ context.Context, email string) (*Subject, error) {
	if email == "" {
		return nil, ErrSubjectNotFound
	}
	return &Subject{ID: subjectID(email), Email: email, IsActive: true}, nil
}

type memoryRecord struct {
	subject Subject
	hash    []byte
}

// MemoryDirectory keeps bcrypt hashed credentials for the life of the process.
type MemoryDirectory struct {
	mu      sync.RWMutex
	cost    int
	records map[string]memoryRecord
}

func NewMemoryDirectory(cost int) *MemoryDirectory {
	return &MemoryDirectory{
		cost:    cost,
		records: make(map[string]memoryRecord),
	}
}

func (d *MemoryDirectory) LookupOrCreate(_ context.Context, creds Credentials) (*Subject, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}
	key := strings.ToLower(creds.Email)

	d.mu.RLock()
	rec, exists := d.records[key]
	d.mu.RUnlock()

	if exists {
		if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(creds.Password)); err != nil {
			return nil, ErrInvalidCredentials
		}
		s := rec.subject
		return &s, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), d.cost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// another request may have created it while we were hashing
	if rec, exists := d.records[key]; exists {
		if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(creds.Password)); err != nil {
			return nil, ErrInvalidCredentials
		}
		s := rec.subject
		return &s, nil
	}

	rec = memoryRecord{
		subject: Subject{
			ID:       subjectID(creds.Email),
			Email:    creds.Email,
			FullName: creds.FullName,
			IsActive: true,
		},
		hash: hash,
	}
	d.records[key] = rec

	s := rec.subject
	return &s, nil
}

func (d *MemoryDirectory) Lookup(_ context.Context, email string) (*Subject, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.records[strings.ToLower(email)]
	if !ok {
		return nil, ErrSubjectNotFound
	}
	s := rec.subject
	return &s, nil
}
