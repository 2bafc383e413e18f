// Package credcrypt encrypts credential files (certificates, private keys,
// keystores, JSON secrets) into IV-prefixed blobs and decrypts objects
// fetched from a remote store when their metadata says they were stored
// encrypted.
//
// # Overview
//
// The package has four parts:
//   - Key material: DeriveKey and the KeyProvider implementations turn one
//     configured secret into the process-wide 32-byte Key.
//   - Codec: encrypts and decrypts fully buffered byte slices.
//   - Gatekeeper: IsAllowed / CheckUpload restrict uploads to
//     .cer, .key, .p12, .json and .jks files.
//   - Gateway: reads objects from an ObjectStore and decrypts the ones whose
//     metadata carries encrypted=true.
//
// # Basic Usage
//
//	key := credcrypt.DeriveKey(os.Getenv(credcrypt.SecretEnvVar))
//	codec, err := credcrypt.NewCodec(key)
//	if err != nil {
//	    panic(err)
//	}
//
//	blob, _ := codec.Encrypt([]byte("-----BEGIN CERTIFICATE-----..."))
//	plain, err := codec.Decrypt(blob)
//
// # Blob Format
//
// Encrypted blobs are laid out as:
//   - IV (16 bytes): random per encryption call
//   - Ciphertext (variable): AES-256-CBC with PKCS#7 padding, always a
//     non-zero multiple of 16 bytes
//
// There is no magic, version, length prefix or authentication tag. The
// format is fixed for compatibility with blobs that already exist.
//
// # Key Derivation
//
// DeriveKey accepts:
//   - 64 hex characters: decoded and used as the key
//   - any other non-empty string: SHA-256 of its bytes
//   - empty: a random key, with a logged warning. Blobs encrypted with a
//     random key cannot be decrypted once the process exits.
//
// Argon2idKeyProvider is available for deployments that prefer a stretched
// passphrase; it produces a different key from the same secret and is not
// interchangeable with DeriveKey.
//
// # Security Considerations
//
// Protected Against:
//   - Reading encrypted credentials at rest without the key
//
// Not Protected Against:
//   - Tampering: CBC without a MAC does not detect modified blobs. A wrong
//     key or corrupted blob usually fails the padding check (ErrCipherFailure)
//     but may occasionally decrypt to garbage without an error.
//   - Memory dumps while buffers are decrypted in memory
//   - Metadata leakage (object sizes, names in metadata)
package credcrypt
