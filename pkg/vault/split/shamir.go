package split

import (
	"fmt"

	"github.com/hashicorp/vault/shamir"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// Fragment is one piece of a split key, addressed to a recipient.
type Fragment struct {
	Index     int
	Recipient string
	Payload   []byte
}

// SplitKey fragments a file key according to a validated descriptor,
// assigning one fragment per recipient in order. Recipients are recycled
// when total_shares exceeds the recipient count, so every fragment has an
// addressee.
func SplitKey(key []byte, d *Descriptor) ([]Fragment, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	parts, err := shamir.Split(key, d.TotalShares, d.Threshold)
	if err != nil {
		return nil, fmt.Errorf("splitting key: %w", err)
	}

	fragments := make([]Fragment, len(parts))
	for i, part := range parts {
		fragments[i] = Fragment{
			Index:     i + 1,
			Recipient: d.Recipients[i%len(d.Recipients)],
			Payload:   part,
		}
	}
	return fragments, nil
}

// CombineKey reconstructs a key from at least threshold fragments.
// The shamir combine cannot detect an insufficient subset by itself; it
// would produce garbage, so the caller passes the share's threshold and
// short subsets are refused up front.
func CombineKey(fragments []Fragment, threshold int) ([]byte, error) {
	if len(fragments) < threshold {
		return nil, fmt.Errorf("%w: need %d fragments, got %d", models.ErrInvalidDescriptor, threshold, len(fragments))
	}
	parts := make([][]byte, len(fragments))
	for i, f := range fragments {
		parts[i] = f.Payload
	}
	key, err := shamir.Combine(parts)
	if err != nil {
		return nil, fmt.Errorf("combining key: %w", err)
	}
	return key, nil
}
