package split

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

func validDescriptor() *Descriptor {
	return &Descriptor{
		FileID:      "file-1",
		TotalShares: 5,
		Threshold:   3,
		Recipients:  []string{"a@example.com", "b@example.com"},
		Password:    "s3cret-pass",
	}
}

func TestDescriptorValidate(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	zero := int64(0)
	one := int64(1)

	tests := []struct {
		name    string
		mutate  func(*Descriptor)
		wantErr string
	}{
		{"valid", func(d *Descriptor) {}, ""},
		{"minimum viable split", func(d *Descriptor) { d.TotalShares = 2; d.Threshold = 2 }, ""},
		{"maximum shares", func(d *Descriptor) { d.TotalShares = 10 }, ""},
		{"too few shares", func(d *Descriptor) { d.TotalShares = 1; d.Threshold = 1 }, "total_shares must be at least 2"},
		{"too many shares", func(d *Descriptor) { d.TotalShares = 11 }, "total_shares must be at most 10"},
		{"threshold of one", func(d *Descriptor) { d.Threshold = 1 }, "threshold must be at least 2"},
		{"threshold above shares", func(d *Descriptor) { d.TotalShares = 5; d.Threshold = 6 }, "threshold cannot exceed total_shares"},
		{"no recipients", func(d *Descriptor) { d.Recipients = nil }, "at least one recipient"},
		{"malformed recipient", func(d *Descriptor) { d.Recipients = []string{"not-an-email"} }, "invalid recipient"},
		{"short password", func(d *Descriptor) { d.Password = "abc" }, "at least 6"},
		{"expiry in the past", func(d *Descriptor) { d.ExpiresAt = &past }, "must be in the future"},
		{"expiry in the future", func(d *Descriptor) { d.ExpiresAt = &future }, ""},
		{"zero download ceiling", func(d *Descriptor) { d.MaxDownloads = &zero }, "at least 1"},
		{"download ceiling of one", func(d *Descriptor) { d.MaxDownloads = &one }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDescriptor()
			tt.mutate(d)
			err := d.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

// A descriptor breaking several rules at once must always surface the
// share-count complaint first.
func TestValidateReportsFirstViolation(t *testing.T) {
	d := &Descriptor{
		TotalShares: 1,
		Threshold:   1,
		Recipients:  nil,
		Password:    "x",
	}
	err := d.Validate()
	if err == nil || !strings.Contains(err.Error(), "total_shares") {
		t.Errorf("Validate() = %v, want the total_shares violation", err)
	}
}

func TestSplitAndCombineRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)

	d := validDescriptor()
	fragments, err := SplitKey(key, d)
	if err != nil {
		t.Fatalf("SplitKey: %v", err)
	}
	if len(fragments) != 5 {
		t.Fatalf("got %d fragments, want 5", len(fragments))
	}

	// Recipients recycle in order when shares exceed recipients.
	if fragments[0].Recipient != "a@example.com" || fragments[2].Recipient != "a@example.com" {
		t.Errorf("unexpected recipient assignment: %q, %q", fragments[0].Recipient, fragments[2].Recipient)
	}

	got, err := CombineKey(fragments[:3], d.Threshold)
	if err != nil {
		t.Fatalf("CombineKey: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Error("threshold subset did not reconstruct the key")
	}

	// Any threshold-sized subset works, not just a prefix.
	got, err = CombineKey([]Fragment{fragments[4], fragments[1], fragments[3]}, d.Threshold)
	if err != nil {
		t.Fatalf("CombineKey (scattered subset): %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Error("scattered subset did not reconstruct the key")
	}
}

func TestCombineRefusesShortSubset(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)

	d := validDescriptor()
	fragments, err := SplitKey(key, d)
	if err != nil {
		t.Fatalf("SplitKey: %v", err)
	}

	if _, err := CombineKey(fragments[:2], d.Threshold); err == nil {
		t.Error("CombineKey accepted fewer fragments than the threshold")
	}
}

func TestSplitRejectsInvalidDescriptor(t *testing.T) {
	d := validDescriptor()
	d.Threshold = 1

	_, err := SplitKey(make([]byte, 32), d)
	if err == nil {
		t.Fatal("SplitKey accepted an invalid descriptor")
	}
	if !strings.Contains(err.Error(), models.ErrInvalidDescriptor.Error()) {
		t.Errorf("error %q should wrap the descriptor sentinel", err)
	}
}
