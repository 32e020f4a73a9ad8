// Package session owns everything derived from one master secret: the root
// key, the config key and the in-memory service registry.
//
// All of it is replaced atomically when the secret changes. Long-running
// batch derivations carry the generation token they started under; when the
// token has gone stale by the time a batch completes, its results are
// discarded rather than merged.
package session

import (
	"context"
	"sort"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/passmint/passmint/codec"
	"github.com/passmint/passmint/crypt"
	"github.com/passmint/passmint/passgen"
	"github.com/passmint/passmint/services"
)

var (
	// ErrLocked means no master secret has been supplied yet.
	ErrLocked = errors.New("session is locked, no master secret set")

	// ErrStale means the master secret changed while a batch derivation
	// was in flight; its results were discarded.
	ErrStale = errors.New("master secret changed during derivation")
)

// deriveWorkers bounds the per-service PBKDF2 work running at once.
const deriveWorkers = 4

// Session is the single owner of key material and the service list between
// unlock and process exit. Methods are safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	generation uuid.UUID
	root       *crypt.RootKey
	configKey  []byte
	registry   *services.Registry
}

// New returns a locked session with an empty registry.
func New() *Session {
	return &Session{registry: services.NewRegistry()}
}

// Unlock replaces the master secret. The root and config keys are rederived
// and the generation token bumped, so derivations still running against the
// old secret discard themselves on completion. The registry is untouched:
// retrying a wrong secret against the same encrypted config is the normal
// recovery path.
func (s *Session) Unlock(masterText string) error {
	root := crypt.NewRootKey(masterText)
	configKey, err := root.ConfigKey()
	if err != nil {
		return err
	}

	gen, err := uuid.NewV4()
	if err != nil {
		return errors.Wrap(err, "failed to generate session token")
	}

	s.mu.Lock()
	s.root = root
	s.configKey = configKey
	s.generation = gen
	s.mu.Unlock()

	return nil
}

// Unlocked reports whether a master secret has been set.
func (s *Session) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root != nil
}

func (s *Session) snapshot() (*crypt.RootKey, uuid.UUID, []services.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root, s.generation, s.registry.All()
}

func (s *Session) current(gen uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// Password derives the key for the named service and synthesizes its
// password.
func (s *Session) Password(name string) (string, error) {
	s.mu.Lock()
	root := s.root
	svc, ok := s.registry.Get(name)
	s.mu.Unlock()

	if root == nil {
		return "", ErrLocked
	}
	if !ok {
		return "", services.ErrNotFound
	}

	return derive(root, svc)
}

func derive(root *crypt.RootKey, svc services.Service) (string, error) {
	keyBytes, err := root.ServiceKey(svc.Name, svc.Iterations)
	if err != nil {
		return "", err
	}

	return passgen.Synthesize(keyBytes, svc.Pattern)
}

// Result is one completed derivation from DeriveAll.
type Result struct {
	Service  services.Service
	Password string
	Err      error
}

// DeriveAll derives every service's password on a small worker pool and
// returns the results sorted by service name. Per-service keys are
// independent, so completion order is whatever it is; progress (if non-nil)
// is called with a monotonically increasing done count regardless.
//
// Cancelling ctx abandons the batch. Changing the master secret mid-batch
// returns ErrStale and drops every result.
func (s *Session) DeriveAll(ctx context.Context, progress func(done, total int)) ([]Result, error) {
	root, gen, list := s.snapshot()
	if root == nil {
		return nil, ErrLocked
	}

	total := len(list)
	if total == 0 {
		return nil, nil
	}

	jobs := make(chan services.Service)
	// Buffered to total so workers never block on a collector that has
	// already bailed out.
	out := make(chan Result, total)

	var wg sync.WaitGroup
	for w := 0; w < deriveWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for svc := range jobs {
				password, err := derive(root, svc)
				out <- Result{Service: svc, Password: password, Err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, svc := range list {
			select {
			case jobs <- svc:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]Result, 0, total)
	done := 0
	for r := range out {
		if !s.current(gen) {
			return nil, ErrStale
		}

		results = append(results, r)
		done++
		if progress != nil {
			progress(done, total)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.current(gen) {
		return nil, ErrStale
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Service.Name < results[j].Service.Name
	})

	return results, nil
}

// Import decrypts blob text (as read from a file or transport, normalization
// included) and replaces the registry wholesale. On any failure the old
// registry stays exactly as it was; the error is either a decryption failure
// or a malformed payload, which the caller presents as one and the same.
// Returns the number of services loaded.
func (s *Session) Import(blobText string) (int, error) {
	s.mu.Lock()
	key := s.configKey
	s.mu.Unlock()

	if key == nil {
		return 0, ErrLocked
	}

	plaintext, err := crypt.Decrypt(key, codec.NormalizeBlobText(blobText))
	if err != nil {
		return 0, err
	}

	registry, err := services.Load(plaintext)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.registry = registry
	n := registry.Len()
	s.mu.Unlock()

	return n, nil
}

// Export encrypts the current registry into blob text for the caller to hand
// to whatever stores or downloads it.
func (s *Session) Export() (string, error) {
	s.mu.Lock()
	key := s.configKey
	payload, err := s.registry.Save()
	s.mu.Unlock()

	if key == nil {
		return "", ErrLocked
	}
	if err != nil {
		return "", err
	}

	return crypt.Encrypt(key, payload)
}

// Add appends a new service to the registry.
func (s *Session) Add(name string) (services.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Add(name)
}

// Remove deletes a service; absent names are a no-op.
func (s *Session) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Remove(name)
}

// Bump increments a service's iterations counter, rotating its password.
func (s *Session) Bump(name string) (services.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Bump(name)
}

// SetPattern records a pattern key for a service.
func (s *Session) SetPattern(name, pattern string) (services.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.SetPattern(name, pattern)
}

// List returns the services sorted by name.
func (s *Session) List() []services.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.All()
}
