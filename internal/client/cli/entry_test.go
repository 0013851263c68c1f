package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sealvault/sealvault/internal/client/api"
	"github.com/sealvault/sealvault/internal/commitment"
	"github.com/sealvault/sealvault/internal/cryptox"
)

var testVaultKey = []byte("0123456789abcdef0123456789abcdef")

func newUnlockedApp(f *fakeAPI) *App {
	a := newTestApp(f)
	a.vaultKey = testVaultKey
	return a
}

func TestAdd_EncryptsAndCommits(t *testing.T) {
	f := &fakeAPI{}
	a := newUnlockedApp(f)
	a.reader = bufio.NewReader(bytes.NewReader([]byte("hunter2\n\n")))

	origST := getSimpleText
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return "note1", nil }
	defer func() { getSimpleText = origST }()

	if err := a.Add(context.Background()); err != nil {
		t.Fatalf("Add err: %v", err)
	}
	if f.addedName != "note1" {
		t.Fatalf("name mismatch: %q", f.addedName)
	}

	// the uploaded ciphertext must not leak the plaintext
	if bytes.Contains(f.addedCiphertext, []byte("hunter2")) {
		t.Fatal("plaintext visible in ciphertext")
	}

	plaintext, err := cryptox.Open(testVaultKey, f.addedCiphertext)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	if string(plaintext) != "hunter2" {
		t.Fatalf("decrypted body mismatch: %q", plaintext)
	}

	// the hash must verify against the deterministic deletion pre-image
	preimage := cryptox.DeletionPreimage(testVaultKey, "note1")
	if !commitment.Verify(f.addedHash, preimage) {
		t.Fatal("deletion hash does not commit to the pre-image")
	}
}

func TestShow_DecryptsNamedEntry(t *testing.T) {
	ciphertext, err := cryptox.Seal(testVaultKey, []byte("the body"))
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}

	f := &fakeAPI{entries: []api.Entry{{Name: "note1", Ciphertext: ciphertext}}}
	a := newUnlockedApp(f)

	origST := getSimpleText
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return "note1", nil }
	defer func() { getSimpleText = origST }()

	if err := a.Show(context.Background()); err != nil {
		t.Fatalf("Show err: %v", err)
	}
}

func TestDelete_SendsDerivedPreimage(t *testing.T) {
	f := &fakeAPI{}
	a := newUnlockedApp(f)

	origST := getSimpleText
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return "note1", nil }
	defer func() { getSimpleText = origST }()

	if err := a.Delete(context.Background()); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if f.deleted != "note1" {
		t.Fatalf("deleted name mismatch: %q", f.deleted)
	}

	want := cryptox.DeletionPreimage(testVaultKey, "note1")
	if !bytes.Equal(f.preimage, want) {
		t.Fatal("pre-image does not match the derivation for the name")
	}
}

func TestList(t *testing.T) {
	f := &fakeAPI{names: []string{"a", "b"}}
	a := newUnlockedApp(f)

	if err := a.List(context.Background()); err != nil {
		t.Fatalf("List err: %v", err)
	}
}
