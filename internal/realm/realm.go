// Package realm generates the list of world-server endpoints advertised to
// an authenticated client. This gateway defends a single world endpoint, so
// every generated realm points at the same address with a different
// identity.
package realm

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/idewave/tine/internal/protocol"
)

const (
	nameLength  = 10
	nameAlpha   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	maxRejects  = 100 // bound on rejection-sampling retries per realm
	defaultIcon = 1
	defaultLock = 0
	defaultFlag = 1
	defaultTZ   = 1
)

// Source produces the realm list advertised to a client. Handlers depend on
// this interface rather than *Directory so tests can substitute a mock.
type Source interface {
	List(ctx context.Context) ([]protocol.Realm, error)
}

// Directory is the in-memory, stateless-across-connections realm generator.
type Directory struct {
	worldPort int
	min, max  int
}

// New creates a Directory advertising realms at 127.0.0.1:<worldPort>, each
// call producing between min and max (inclusive) entries.
func New(worldPort, min, max int) *Directory {
	return &Directory{worldPort: worldPort, min: min, max: max}
}

// List generates a fresh, uniquely-named realm list. Each call is
// independent: the Directory carries no state across connections, only a
// name-uniqueness set scoped to the single call.
func (d *Directory) List(_ context.Context) ([]protocol.Realm, error) {
	count, err := randIntRange(d.min, d.max)
	if err != nil {
		return nil, fmt.Errorf("realm: choosing realm count: %w", err)
	}

	seen := make(map[string]struct{}, count)
	realms := make([]protocol.Realm, 0, count)

	for i := 0; i < count; i++ {
		name, err := uniqueName(seen)
		if err != nil {
			return nil, err
		}

		serverID, err := randIntRange(0, 100)
		if err != nil {
			return nil, fmt.Errorf("realm: choosing server id: %w", err)
		}

		realms = append(realms, protocol.Realm{
			Icon:           defaultIcon,
			Lock:           defaultLock,
			Flags:          defaultFlag,
			Name:           name,
			Address:        fmt.Sprintf("127.0.0.1:%d", d.worldPort),
			Population:     0,
			CharacterCount: 0,
			Timezone:       defaultTZ,
			ServerID:       uint8(serverID), //nolint:gosec // bounded to [0,100]
		})
	}

	return realms, nil
}

// uniqueName rejection-samples a random alphanumeric name against seen,
// inserting it once found.
func uniqueName(seen map[string]struct{}) (string, error) {
	for attempt := 0; attempt < maxRejects; attempt++ {
		name, err := randomName()
		if err != nil {
			return "", err
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		return name, nil
	}
	return "", fmt.Errorf("realm: could not generate a unique name after %d attempts", maxRejects)
}

func randomName() (string, error) {
	b := make([]byte, nameLength)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(nameAlpha))))
		if err != nil {
			return "", fmt.Errorf("realm: generating random name: %w", err)
		}
		b[i] = nameAlpha[idx.Int64()]
	}
	return string(b), nil
}

func randIntRange(min, max int) (int, error) {
	if max <= min {
		return min, nil
	}
	span := int64(max - min + 1)
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return 0, err
	}
	return min + int(n.Int64()), nil
}
