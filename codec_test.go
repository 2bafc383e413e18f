package credcrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"sync"
	"testing"
)

func newTestCodec(t testing.TB, secret string) *Codec {
	t.Helper()
	c, err := NewCodec(DeriveKey(secret))
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	return c
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newTestCodec(t, "test-secret")

	sizes := []int{0, 1, 15, 16, 17, 31, 32, 100, 4096, 1 << 16}
	for _, size := range sizes {
		plaintext := make([]byte, size)
		if _, err := rand.Read(plaintext); err != nil {
			t.Fatal(err)
		}

		blob, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%d bytes) error = %v", size, err)
		}

		// IV plus the padded plaintext, which always gains 1..16 bytes.
		wantLen := IVSize + (size/BlockSize+1)*BlockSize
		if len(blob) != wantLen {
			t.Errorf("size %d: blob length = %d, want %d", size, len(blob), wantLen)
		}

		got, err := c.Decrypt(blob)
		if err != nil {
			t.Fatalf("Decrypt(%d bytes) error = %v", size, err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Errorf("size %d: round trip mismatch", size)
		}
	}
}

func TestCodec_FreshIVPerCall(t *testing.T) {
	c := newTestCodec(t, "test-secret")
	plaintext := []byte("same input")

	a, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same input should differ")
	}
	if bytes.Equal(a[:IVSize], b[:IVSize]) {
		t.Error("IVs should differ")
	}
}

func TestCodec_HelloWorld(t *testing.T) {
	c := newTestCodec(t, "test-secret")

	blob, err := c.Encrypt([]byte("hello world"))
	if err != nil {
		t.Fatal(err)
	}
	if len(blob) != 32 {
		t.Fatalf("blob length = %d, want 32", len(blob))
	}

	got, err := c.Decrypt(blob)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("Decrypt() = %q, want %q", got, "hello world")
	}
}

func TestCodec_WrongKey(t *testing.T) {
	right := DeriveKey("test-secret")
	plaintext := []byte("hello world, long enough to span several cipher blocks")

	rightEngine, err := NewAESCBCEngine(right[:])
	if err != nil {
		t.Fatal(err)
	}
	enc := newCodecWithEngine(rightEngine, nil)
	dec := newTestCodec(t, "wrong-secret")

	// Deterministic IVs keep the outcome stable. A wrong key almost always
	// breaks the padding; when it does not, the output is still garbage.
	failures := 0
	for i := 0; i < 8; i++ {
		enc.random = bytes.NewReader(bytes.Repeat([]byte{byte(i + 1)}, IVSize))
		blob, err := enc.Encrypt(plaintext)
		if err != nil {
			t.Fatal(err)
		}

		got, err := dec.Decrypt(blob)
		if err != nil {
			if !IsCipherFailure(err) {
				t.Errorf("wrong key error = %v, want cipher failure", err)
			}
			failures++
			continue
		}
		if bytes.Equal(got, plaintext) {
			t.Fatal("wrong key must never return the plaintext")
		}
	}
	if failures == 0 {
		t.Error("expected the wrong key to fail at least once")
	}
}

func TestCodec_MalformedInput(t *testing.T) {
	c := newTestCodec(t, "test-secret")

	for _, n := range []int{0, 1, 15} {
		_, err := c.Decrypt(make([]byte, n))
		if !IsMalformedBlob(err) {
			t.Errorf("Decrypt(%d bytes) error = %v, want malformed blob", n, err)
		}
		if IsCipherFailure(err) {
			t.Errorf("Decrypt(%d bytes) should not be a cipher failure", n)
		}
	}
	if _, err := c.Decrypt(nil); !IsMalformedBlob(err) {
		t.Errorf("Decrypt(nil) error = %v, want malformed blob", err)
	}

	// Exactly one IV and no ciphertext.
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decrypt(iv); !IsCipherFailure(err) {
		t.Errorf("Decrypt(16 bytes) error = %v, want cipher failure", err)
	}

	// Ciphertext that is not a block multiple.
	blob, err := c.Encrypt([]byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decrypt(blob[:len(blob)-1]); !IsCipherFailure(err) {
		t.Errorf("truncated blob error = %v, want cipher failure", err)
	}
}

func TestCodec_CorruptedPadding(t *testing.T) {
	c := newTestCodec(t, "test-secret")
	blob, err := c.Encrypt([]byte("hello world"))
	if err != nil {
		t.Fatal(err)
	}

	// Flipping a bit in the IV flips the same bit of the single plaintext
	// block, which lands in the padding.
	corrupted := append([]byte(nil), blob...)
	corrupted[IVSize-1] ^= 0x01
	_, err = c.Decrypt(corrupted)
	if !IsCipherFailure(err) {
		t.Fatalf("Decrypt() error = %v, want cipher failure", err)
	}
	var ee *EncryptionError
	if !errors.As(err, &ee) || ee.Operation != OpDecrypt {
		t.Errorf("expected a decrypt EncryptionError, got %T", err)
	}
	if !errors.Is(err, errInvalidPadding) {
		t.Errorf("cause should be kept, got %v", err)
	}
}

// The blob must match what any AES-256-CBC/PKCS#7 implementation produces
// for the same key and IV.
func TestCodec_BitExactLayout(t *testing.T) {
	key := DeriveKey("test-secret")
	iv := bytes.Repeat([]byte{0x42}, IVSize)
	plaintext := []byte("interoperable payload")

	engine, err := NewAESCBCEngine(key[:])
	if err != nil {
		t.Fatal(err)
	}
	c := newCodecWithEngine(engine, bytes.NewReader(iv))

	blob, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatal(err)
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		t.Fatal(err)
	}
	padded := append([]byte(plaintext), bytes.Repeat([]byte{11}, 11)...)
	want := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(want, padded)
	want = append(append([]byte(nil), iv...), want...)

	if !bytes.Equal(blob, want) {
		t.Errorf("blob = %x\nwant  %x", blob, want)
	}
}

func TestCodec_IVReadFailure(t *testing.T) {
	key := DeriveKey("test-secret")
	engine, err := NewAESCBCEngine(key[:])
	if err != nil {
		t.Fatal(err)
	}
	c := newCodecWithEngine(engine, bytes.NewReader(make([]byte, 4)))

	_, err = c.Encrypt([]byte("x"))
	if !IsCipherFailure(err) {
		t.Errorf("Encrypt() error = %v, want cipher failure", err)
	}
	var ee *EncryptionError
	if !errors.As(err, &ee) || ee.Operation != OpEncrypt {
		t.Errorf("expected an encrypt EncryptionError, got %#v", err)
	}
}

func TestCodec_Describe(t *testing.T) {
	info := newTestCodec(t, "test-secret").Describe()
	want := Info{Algorithm: "aes-256-cbc", KeyLength: 32, IVLength: 16}
	if info != want {
		t.Errorf("Describe() = %+v, want %+v", info, want)
	}
}

func TestNewCodecFromProvider(t *testing.T) {
	c, key, err := NewCodecFromProvider(NewSecretKeyProvider("test-secret"))
	if err != nil {
		t.Fatalf("NewCodecFromProvider() error = %v", err)
	}
	if key != DeriveKey("test-secret") {
		t.Error("returned key should be the resolved key")
	}

	blob, err := c.Encrypt([]byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newTestCodec(t, "test-secret").Decrypt(blob); err != nil {
		t.Errorf("codecs with the same key should interoperate: %v", err)
	}

	if _, _, err := NewCodecFromProvider(nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("nil provider error = %v", err)
	}
	if _, _, err := NewCodecFromProvider(NewArgon2idKeyProvider(nil, nil, Argon2idParams{})); err == nil {
		t.Error("expected provider error to propagate")
	}
}

func TestLooksEncrypted(t *testing.T) {
	if LooksEncrypted(make([]byte, 16)) {
		t.Error("16 bytes cannot be a blob")
	}
	if !LooksEncrypted(make([]byte, 17)) {
		t.Error("17 bytes passes the length heuristic")
	}
}

func TestCodec_Concurrent(t *testing.T) {
	c := newTestCodec(t, "test-secret")

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plaintext := bytes.Repeat([]byte{byte(i)}, i*7)
			blob, err := c.Encrypt(plaintext)
			if err != nil {
				errs <- err
				return
			}
			got, err := c.Decrypt(blob)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got, plaintext) {
				errs <- errors.New("round trip mismatch")
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
