package commitment

import (
	"bytes"
	"crypto/sha256"
	"testing"
)

func TestCommit_MatchesSHA256(t *testing.T) {
	p := []byte("reveal-me")
	want := sha256.Sum256(p)
	got := Commit(p)
	if !bytes.Equal(got, want[:]) {
		t.Fatalf("Commit mismatch: got %x want %x", got, want)
	}
	if len(got) != Size {
		t.Fatalf("expected %d-byte hash, got %d", Size, len(got))
	}
}

func TestCommit_Deterministic(t *testing.T) {
	p := []byte("same input")
	if !bytes.Equal(Commit(p), Commit(p)) {
		t.Fatal("Commit is not deterministic")
	}
}

func TestVerify_CorrectPreimage(t *testing.T) {
	p := []byte("P")
	if !Verify(Commit(p), p) {
		t.Fatal("expected Verify to accept the original pre-image")
	}
}

func TestVerify_WrongPreimage(t *testing.T) {
	if Verify(Commit([]byte("P")), []byte("Q")) {
		t.Fatal("expected Verify to reject a different pre-image")
	}
}

func TestVerify_TruncatedHash(t *testing.T) {
	p := []byte("P")
	h := Commit(p)
	if Verify(h[:16], p) {
		t.Fatal("expected Verify to reject a truncated hash")
	}
}

func TestVerify_EmptyPreimage(t *testing.T) {
	if !Verify(Commit(nil), nil) {
		t.Fatal("empty pre-image should open its own commitment")
	}
	if Verify(Commit([]byte("x")), nil) {
		t.Fatal("empty pre-image should not open a non-empty commitment")
	}
}
